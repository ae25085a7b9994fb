// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncrepl

import "code.hybscloud.com/atomix"

// SenderState is the subset of a sender's lifecycle this package observes
// (spec.md §4.6): Startup -> Catchup -> Streaming -> Stopping -> Exiting.
// Backup is included for completeness of the FSM named in spec.md §3, even
// though it never gates a release.
type SenderState int32

const (
	SenderStartup SenderState = iota
	SenderBackup
	SenderCatchup
	SenderStreaming
	SenderStopping
	SenderExiting
)

func (s SenderState) String() string {
	switch s {
	case SenderStartup:
		return "startup"
	case SenderBackup:
		return "backup"
	case SenderCatchup:
		return "catchup"
	case SenderStreaming:
		return "streaming"
	case SenderStopping:
		return "stopping"
	case SenderExiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// SenderDescriptor is one row of the fixed-size sender table (spec.md §3).
//
// pid, state, write, flush and caughtUpWithinRange are guarded by mu, a
// spinlock, because the no-sync-standby fast path in Session.WaitForLSN
// reads every sender's liveness without wanting to contend on
// ControlBlock.lock. priority is guarded by ControlBlock.lock instead,
// except that the owning sender itself may read its own priority without
// the lock (mirroring the original C code's MyWalSnd->sync_standby_priority
// self-reads) since it is the only writer.
type SenderDescriptor struct {
	mu spinlock

	pid                 int32
	state               SenderState
	write               LSN
	flush               LSN
	caughtUpWithinRange bool

	priority atomix.Uint32 // sync_standby_priority; 0 = not a candidate

	// announceNextTakeover is set when this sender loses an election and
	// cleared (with a takeover log line) the next time it wins one.
	// Touched only by this sender's own ReleaseWaiters calls, which are
	// serialized by the caller owning one sender per goroutine.
	announceNextTakeover bool
}

// senderSnapshot is a torn-read-free copy of a SenderDescriptor's volatile fields.
type senderSnapshot struct {
	pid                 int32
	state               SenderState
	write               LSN
	flush               LSN
	caughtUpWithinRange bool
}

// Update is called by the sender's own transport goroutine whenever pid,
// state, write, flush or caughtUpWithinRange changes.
func (d *SenderDescriptor) Update(pid int32, state SenderState, write, flush LSN, caughtUpWithinRange bool) {
	d.mu.Lock()
	d.pid = pid
	d.state = state
	d.write = write
	d.flush = flush
	d.caughtUpWithinRange = caughtUpWithinRange
	d.mu.Unlock()
}

// Clear zeroes pid on sender exit (spec.md §3, SenderDescriptor lifecycle).
func (d *SenderDescriptor) Clear() {
	d.mu.Lock()
	d.pid = 0
	d.state = SenderExiting
	d.mu.Unlock()
}

// snapshot copies the volatile fields under the spinlock.
func (d *SenderDescriptor) snapshot() senderSnapshot {
	d.mu.Lock()
	s := senderSnapshot{
		pid:                 d.pid,
		state:               d.state,
		write:               d.write,
		flush:               d.flush,
		caughtUpWithinRange: d.caughtUpWithinRange,
	}
	d.mu.Unlock()
	return s
}

// SetPriority assigns this sender's sync_standby_priority. Callers must
// hold the owning ControlBlock's lock exclusive (I5's priority guard).
func (d *SenderDescriptor) SetPriority(priority uint32) {
	d.priority.StoreRelease(priority)
}

// Priority returns the sender's sync_standby_priority. Safe for the owning
// sender to call without any lock; any other caller must hold at least a
// shared ControlBlock.lock.
func (d *SenderDescriptor) Priority() uint32 {
	return d.priority.LoadAcquire()
}
