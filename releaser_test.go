// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncrepl_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/syncrepl"
)

// recordingLogger captures every Logf call for assertions.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Logf(level syncrepl.Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level.String())
}

func (l *recordingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

// TestReleaseWaiters_Gate verifies the non-candidate, wrong-state and
// invalid-flush gates all suppress an election (spec.md §4.3's "Gate").
func TestReleaseWaiters_Gate(t *testing.T) {
	cb := syncrepl.NewControlBlock(4)
	idx, ok := cb.AcquireSender()
	if !ok {
		t.Fatal("AcquireSender failed")
	}

	// priority 0: not a candidate.
	cb.SenderAt(idx).Update(1, syncrepl.SenderStreaming, 0x10, 0x10, true)
	cb.ReleaseWaiters(idx, nil)
	if got := cb.ReleasedLSN(syncrepl.Write); got != 0 {
		t.Fatalf("released_lsn advanced despite priority 0: %v", got)
	}

	// priority set, but wrong state.
	cb.SetSenderPriority(idx, 1)
	cb.SenderAt(idx).Update(1, syncrepl.SenderCatchup, 0x10, 0x10, true)
	cb.ReleaseWaiters(idx, nil)
	if got := cb.ReleasedLSN(syncrepl.Write); got != 0 {
		t.Fatalf("released_lsn advanced despite wrong state: %v", got)
	}

	// right state, invalid flush.
	cb.SenderAt(idx).Update(1, syncrepl.SenderStreaming, 0x10, 0, true)
	cb.ReleaseWaiters(idx, nil)
	if got := cb.ReleasedLSN(syncrepl.Write); got != 0 {
		t.Fatalf("released_lsn advanced despite invalid flush: %v", got)
	}
}

// TestReleaseWaiters_P3_Monotonic checks released_lsn never decreases even
// when a later report is stale.
func TestReleaseWaiters_P3_Monotonic(t *testing.T) {
	cb := syncrepl.NewControlBlock(4)
	idx, _ := cb.AcquireSender()
	cb.SetSenderPriority(idx, 1)

	cb.SenderAt(idx).Update(1, syncrepl.SenderStreaming, 0x200, 0x200, true)
	cb.ReleaseWaiters(idx, nil)
	if got := cb.ReleasedLSN(syncrepl.Write); got != 0x200 {
		t.Fatalf("released_lsn = %v, want 0x200", got)
	}

	// A stale report with a lower position must not roll the watermark back.
	cb.SenderAt(idx).Update(1, syncrepl.SenderStreaming, 0x100, 0x100, true)
	cb.ReleaseWaiters(idx, nil)
	if got := cb.ReleasedLSN(syncrepl.Write); got != 0x200 {
		t.Fatalf("released_lsn regressed to %v after a stale report", got)
	}
}

// TestReleaseWaiters_S4_PriorityLoserNoOp reproduces spec.md §8's S4: the
// lower-priority sender calls release_waiters and does nothing but arm its
// own takeover announcement; once the higher-priority sender is gone, its
// next call is elected and logs the takeover.
func TestReleaseWaiters_S4_PriorityLoserNoOp(t *testing.T) {
	cb := syncrepl.NewControlBlock(4)
	idxA, _ := cb.AcquireSender()
	idxB, _ := cb.AcquireSender()
	cb.SetSenderPriority(idxA, 1)
	cb.SetSenderPriority(idxB, 2)

	cb.SenderAt(idxA).Update(100, syncrepl.SenderStreaming, 0x10, 0x10, true)
	cb.SenderAt(idxB).Update(200, syncrepl.SenderStreaming, 0x20, 0x20, true)

	log := &recordingLogger{}
	cb.ReleaseWaiters(idxB, log)

	if got := cb.ReleasedLSN(syncrepl.Write); got != 0 {
		t.Fatalf("B advanced released_lsn despite losing the election: %v", got)
	}
	if log.count() != 0 {
		t.Fatalf("B logged a takeover despite losing the election")
	}

	// A exits.
	if err := cb.ReleaseSender(idxA); err != nil {
		t.Fatalf("ReleaseSender: %v", err)
	}

	cb.SenderAt(idxB).Update(200, syncrepl.SenderStreaming, 0x30, 0x30, true)
	cb.ReleaseWaiters(idxB, log)

	if got := cb.ReleasedLSN(syncrepl.Write); got != 0x30 {
		t.Fatalf("B did not advance released_lsn after being elected: got %v", got)
	}
	if log.count() != 1 {
		t.Fatalf("B logged %d takeover lines, want 1", log.count())
	}
}

// TestReleaseWaiters_P5_Uniqueness runs many concurrent candidate senders
// through ReleaseWaiters and checks that exactly the elected one's flush
// position ends up as released_lsn[Write], never a value contributed by a
// loser (which would mean two senders both thought they won).
func TestReleaseWaiters_P5_Uniqueness(t *testing.T) {
	const n = 8
	cb := syncrepl.NewControlBlock(n)
	indices := make([]int, n)
	for i := 0; i < n; i++ {
		idx, ok := cb.AcquireSender()
		if !ok {
			t.Fatalf("AcquireSender(%d) failed", i)
		}
		indices[i] = idx
		cb.SetSenderPriority(idx, uint32(i+1))
		cb.SenderAt(idx).Update(int32(i+1), syncrepl.SenderStreaming, lsnFor(i), lsnFor(i), true)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			cb.ReleaseWaiters(idx, nil)
		}(indices[i])
	}
	wg.Wait()

	// Priority 1 (indices[0]) is always elected, so released_lsn must equal
	// exactly its flush position, never any other sender's.
	want := uint64(lsnFor(0))
	if got := uint64(cb.ReleasedLSN(syncrepl.Write)); got != want {
		t.Fatalf("released_lsn = %#x, want elected sender's own position %#x", got, want)
	}
}

// lsnFor gives each test sender a distinct, deterministic flush position.
func lsnFor(i int) syncrepl.LSN {
	return syncrepl.LSN(0x1000 + i*0x10)
}
