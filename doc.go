// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package syncrepl implements a primary-side synchronous-replication
// commit gate.
//
// A session commits a transaction and wants to know that its commit LSN
// has been shipped to (and, depending on mode, made durable by) a
// qualifying standby before it tells the client the commit succeeded. This
// package holds that session's goroutine until a sender reports that the
// standby has caught up, without either side needing to know about the
// other: the standby ships WAL and reports positions; the primary alone
// decides what to wait for and when to let go.
//
// # Quick Start
//
//	cb := syncrepl.NewControlBlock(16) // up to 16 concurrent senders
//	names, _ := syncrepl.ValidateNames("standby1,standby2")
//	cb.Reconcile(names, logger)
//
//	// one sender goroutine per standby connection
//	idx, _ := cb.AcquireSender()
//	cb.SetSenderPriority(idx, names.PriorityOf("standby1"))
//	cb.SenderAt(idx).Update(pid, syncrepl.SenderStreaming, writeLSN, flushLSN, false)
//	cb.ReleaseWaiters(idx, logger)
//
//	// one goroutine per committing session
//	mode := syncrepl.AssignCommitMode(syncrepl.CommitRemoteFlush)
//	sess := syncrepl.NewSession(cb, mode, roleHooks, logger)
//	sess.SetStats(metrics.NewSink(prometheus.DefaultRegisterer)) // optional
//	err := sess.WaitForLSN(ctx, commitLSN, false)
//
// # Wait Queue
//
// Each of the two wait modes (Write, Flush) has its own ordered queue of
// WaitSlots, sorted by ascending wait LSN. A session enqueues its slot
// under ControlBlock's lock and sleeps on a per-session Latch; a sender
// that observes its standby's position advance walks the queue from the
// head and wakes every slot whose LSN has now been reached.
//
// # Concurrency
//
// All shared state lives behind ControlBlock.lock (a sync.RWMutex) except
// for each SenderDescriptor's volatile transport-reported fields, which are
// behind a per-sender spinlock so that WaitForLSN's no-sync-standby scan
// doesn't contend on the main lock. WaitSlot.state is an atomix.Int32
// so a woken session can peek at it without taking any lock at all, then
// re-confirm under a shared lock before trusting what it saw — the
// acquire/release pairing that makes the sender's writes visible before
// its latch fires.
//
// # Dependencies
//
// This package uses code.hybscloud.com/atomix for atomics with explicit
// memory ordering and code.hybscloud.com/spin for the per-sender spinlock's
// and the sender slot pool's backoff. Logging, metrics and config-file
// loading live in the logging, metrics and configfile subpackages, backed
// by zerolog, Prometheus client_golang and BurntSushi/toml respectively;
// Session.SetStats and ControlBlock.SetStats wire a metrics.Sink in
// nil-safely, the same way NewSession already threads a Logger.
// cmd/syncreplsrv wires all three together into a runnable process.
package syncrepl
