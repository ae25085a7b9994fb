// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncrepl

import "code.hybscloud.com/atomix"

// WaitState is a WaitSlot's lifecycle state (spec.md §3, §4.6).
type WaitState int32

const (
	NotWaiting WaitState = iota
	Waiting
	WaitComplete
)

func (s WaitState) String() string {
	switch s {
	case NotWaiting:
		return "not-waiting"
	case Waiting:
		return "waiting"
	case WaitComplete:
		return "wait-complete"
	default:
		return "unknown"
	}
}

// WaitSlot is one per potentially-waiting session, for the session's entire
// lifetime (spec.md §3). It is never copied after first use: the queue
// holds pointers to it, and its Latch is the only thing the releaser and
// the session goroutine ever need to agree on out-of-band.
type WaitSlot struct {
	waitLSN LSN          // guarded by ControlBlock.lock
	state   atomix.Int32 // WaitState; lock-free peek, see spec.md §4.2 step 7b
	latch   *Latch

	// links are the wait queue's intrusive doubly-linked list pointers.
	// Mutated only while holding ControlBlock.lock exclusive (I1).
	prev, next *WaitSlot
	queued     bool
}

// NewWaitSlot creates a detached, NotWaiting slot ready for one session's
// repeated wait_for_lsn/cleanup cycles.
func NewWaitSlot() *WaitSlot {
	s := &WaitSlot{latch: NewLatch()}
	s.state.StoreRelaxed(int32(NotWaiting))
	return s
}

// State returns the slot's current lifecycle state.
func (s *WaitSlot) State() WaitState {
	return WaitState(s.state.LoadAcquire())
}

// peekState reads state without any lock, per spec.md §4.2 step 7b. The
// caller must re-read under at least a shared ControlBlock.lock before
// trusting a Waiting result, to acquire the releaser's happens-before edge
// on weakly-ordered hardware.
func (s *WaitSlot) peekState() WaitState {
	return WaitState(s.state.LoadRelaxed())
}

// IsLinked reports whether the slot currently occupies a wait queue.
// Guarded by ControlBlock.lock.
func (s *WaitSlot) IsLinked() bool {
	return s.queued
}
