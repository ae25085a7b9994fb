// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command syncreplsrv is a minimal standalone process that wires the
// syncrepl package's external interfaces together the way a real
// deployment would: load synchronous_standby_names/synchronous_commit
// from a TOML file, log through zerolog, and publish activity/statistics
// through Prometheus on an HTTP endpoint. It accepts sender updates on
// stdin for demonstration purposes only; a real transport would call
// ControlBlock.SenderAt(idx).Update from its own WAL-receiving goroutine.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"code.hybscloud.com/syncrepl"
	"code.hybscloud.com/syncrepl/configfile"
	"code.hybscloud.com/syncrepl/logging"
	"code.hybscloud.com/syncrepl/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML file with synchronous_standby_names/synchronous_commit")
	maxSenders := flag.Int("max-senders", 16, "maximum number of concurrently connected standbys")
	listenAddr := flag.String("metrics-addr", ":9100", "address to serve Prometheus metrics on")
	flag.Parse()

	log := logging.New(os.Stderr)

	emptyNames, _ := syncrepl.ValidateNames("")
	settings := &configfile.Settings{Names: emptyNames, CommitMode: syncrepl.NoWait}
	if *configPath != "" {
		loaded, err := configfile.Load(*configPath)
		if err != nil {
			log.Logf(syncrepl.LevelFatal, "loading config: %v", err)
			os.Exit(1)
		}
		settings = loaded
	}

	cb := syncrepl.NewControlBlock(*maxSenders)
	cb.Reconcile(settings.Names, log)

	sink := metrics.NewSink(prometheus.DefaultRegisterer)
	cb.SetStats(sink)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(*listenAddr, nil); err != nil {
			log.Logf(syncrepl.LevelWarning, "metrics listener stopped: %v", err)
		}
	}()

	log.Logf(syncrepl.LevelLog, "syncreplsrv listening for sender updates on stdin, metrics on %s", *listenAddr)
	serveSenderUpdates(cb, settings, log, sink)
}

// serveSenderUpdates reads whitespace-separated
// "standby_name write_lsn flush_lsn" lines from stdin, one per sender
// update, and drives ControlBlock/Session exactly as a real WAL
// transport and a real committing session would.
func serveSenderUpdates(cb *syncrepl.ControlBlock, settings *configfile.Settings, log *logging.Logger, sink *metrics.Sink) {
	assigned := map[string]int{}
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 {
			continue
		}
		name, writeRaw, flushRaw := fields[0], fields[1], fields[2]

		idx, ok := assigned[name]
		if !ok {
			acquired, ok := cb.AcquireSender()
			if !ok {
				log.Logf(syncrepl.LevelWarning, "sender table full, dropping update for %s", name)
				continue
			}
			idx = acquired
			assigned[name] = idx
			cb.SetSenderPriority(idx, settings.Names.PriorityOf(name))
		}

		write, err := parseLSN(writeRaw)
		if err != nil {
			log.Logf(syncrepl.LevelWarning, "bad write LSN for %s: %v", name, err)
			continue
		}
		flush, err := parseLSN(flushRaw)
		if err != nil {
			log.Logf(syncrepl.LevelWarning, "bad flush LSN for %s: %v", name, err)
			continue
		}

		cb.SenderAt(idx).Update(int32(idx+1), syncrepl.SenderStreaming, write, flush, true)
		cb.ReleaseWaiters(idx, log)
	}

	// Demonstrate the Session side of the same wiring: a committing
	// session waiting under the loaded commit mode, reporting into the
	// same Sink.
	sess := syncrepl.NewSession(cb, settings.CommitMode, nil, log)
	sess.SetStats(sink)
	var commitLSN syncrepl.LSN
	if settings.CommitMode != syncrepl.NoWait {
		commitLSN = cb.ReleasedLSN(settings.CommitMode)
	}
	if err := sess.WaitForLSN(context.Background(), commitLSN, false); err != nil {
		log.Logf(syncrepl.LevelWarning, "wait abandoned: %v", err)
	}
}

func parseLSN(raw string) (syncrepl.LSN, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(raw, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse LSN %q: %w", raw, err)
	}
	return syncrepl.LSN(v), nil
}
