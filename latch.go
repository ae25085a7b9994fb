// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncrepl

import "context"

// Latch is a single-writer/single-waiter wake primitive: one goroutine owns
// it and calls Reset/Wait in a loop, any number of other goroutines call Set.
//
// spec.md §9 permits substituting a per-session task-awakening primitive for
// a process-shared latch in languages with green tasks; a capacity-1 channel
// is that substitute here. Set is idempotent while armed (a second Set
// before the owner resets is a no-op, matching "every sleep is paired with
// at least one wakeup" semantics), so no wakeup can be lost between a
// sender's state update and the owner's next Wait.
type Latch struct {
	c chan struct{}
}

// NewLatch creates an unset Latch.
func NewLatch() *Latch {
	return &Latch{c: make(chan struct{}, 1)}
}

// Set wakes the owner, or leaves the latch armed if nobody is waiting yet.
func (l *Latch) Set() {
	select {
	case l.c <- struct{}{}:
	default:
	}
}

// Reset clears any pending wakeup. Owner-only.
func (l *Latch) Reset() {
	select {
	case <-l.c:
	default:
	}
}

// Wait blocks until Set is called, ctx is done, or dead fires (used to
// thread in supervisor-death notification alongside the latch itself, per
// spec.md §4.2 step 7g: "waking on latch-set OR supervisor-death"). Owner-only.
func (l *Latch) Wait(ctx context.Context, dead <-chan struct{}) {
	select {
	case <-l.c:
	case <-dead:
	case <-ctx.Done():
	}
}
