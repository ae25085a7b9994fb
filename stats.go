// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncrepl

// StatsSink lets a Session and ControlBlock report activity and
// statistics without this package depending on any particular backend
// (spec.md §4.2, "reports waiting status to a statistics sink"; §6,
// "activity/statistics reporting"). metrics.Sink is the default
// implementation, backed by Prometheus collectors.
type StatsSink interface {
	// BeginWait marks the start of a blocking WaitForLSN call. The
	// returned func must be called exactly once, when the wait ends.
	BeginWait() (end func())
	// ReportReleasedLSN publishes the current released_lsn watermark for
	// queueIndex (Write=0, Flush=1).
	ReportReleasedLSN(queueIndex int, value uint64)
	// ReportAbandoned records a wait abandoned before replication was
	// confirmed, tagged with the reason it ended (spec.md §4.2 steps 7d,
	// 7f).
	ReportAbandoned(reason string)
}

// NopStats is the zero-cost StatsSink every Session and ControlBlock
// starts with, so callers that never wire a real sink never need to
// nil-check before reporting.
var NopStats StatsSink = nopStats{}

type nopStats struct{}

func (nopStats) BeginWait() (end func())      { return nopEnd }
func (nopStats) ReportReleasedLSN(int, uint64) {}
func (nopStats) ReportAbandoned(string)        {}

func nopEnd() {}
