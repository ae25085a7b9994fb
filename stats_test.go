// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncrepl_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/syncrepl"
)

// recordingStats is a StatsSink test double counting every call.
type recordingStats struct {
	mu        sync.Mutex
	begins    int
	ends      int
	released  []uint64
	abandoned []string
}

func (s *recordingStats) BeginWait() (end func()) {
	s.mu.Lock()
	s.begins++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.ends++
		s.mu.Unlock()
	}
}

func (s *recordingStats) ReportReleasedLSN(_ int, value uint64) {
	s.mu.Lock()
	s.released = append(s.released, value)
	s.mu.Unlock()
}

func (s *recordingStats) ReportAbandoned(reason string) {
	s.mu.Lock()
	s.abandoned = append(s.abandoned, reason)
	s.mu.Unlock()
}

func (s *recordingStats) snapshot() (begins, ends int, released []uint64, abandoned []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begins, s.ends, append([]uint64(nil), s.released...), append([]string(nil), s.abandoned...)
}

// TestSession_SetStats_ReportsWaitAndAbandon verifies WaitForLSN's
// StatsSink hooks (spec.md §4.2, "reports waiting status to a statistics
// sink"): BeginWait/end bracket a real wait, and abandonment reports the
// reason.
func TestSession_SetStats_ReportsWaitAndAbandon(t *testing.T) {
	cb := syncrepl.NewControlBlock(4)
	names, err := syncrepl.ValidateNames("standby1")
	if err != nil {
		t.Fatalf("ValidateNames: %v", err)
	}
	cb.Reconcile(names, nil)

	stats := &recordingStats{}
	roles := &fakeRoles{supervisor: true}
	s := syncrepl.NewSession(cb, syncrepl.Write, roles, nil)
	s.SetStats(stats)

	done := make(chan error, 1)
	go func() { done <- s.WaitForLSN(context.Background(), 0x900, false) }()

	time.Sleep(20 * time.Millisecond)
	roles.mu.Lock()
	roles.terminate = true
	roles.mu.Unlock()
	s.Wake()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("WaitForLSN: want AbandonedError, got nil")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForLSN did not observe termination-pending")
	}

	begins, ends, _, abandoned := stats.snapshot()
	if begins != 1 || ends != 1 {
		t.Fatalf("BeginWait/end calls = (%d, %d), want (1, 1)", begins, ends)
	}
	if len(abandoned) != 1 || abandoned[0] != "termination pending" {
		t.Fatalf("ReportAbandoned calls = %v, want [\"termination pending\"]", abandoned)
	}
}

// TestControlBlock_SetStats_ReportsReleasedLSN verifies ReleaseWaiters
// publishes the released_lsn watermark through the wired StatsSink.
func TestControlBlock_SetStats_ReportsReleasedLSN(t *testing.T) {
	cb := syncrepl.NewControlBlock(4)
	stats := &recordingStats{}
	cb.SetStats(stats)

	idx, ok := cb.AcquireSender()
	if !ok {
		t.Fatal("AcquireSender failed")
	}
	cb.SetSenderPriority(idx, 1)

	cb.SenderAt(idx).Update(1, syncrepl.SenderStreaming, 0x10, 0x10, true)
	cb.ReleaseWaiters(idx, nil)

	cb.SenderAt(idx).Update(1, syncrepl.SenderStreaming, 0x20, 0x20, true)
	cb.ReleaseWaiters(idx, nil)

	_, _, released, _ := stats.snapshot()
	if len(released) != 4 {
		t.Fatalf("ReportReleasedLSN calls = %v, want 4 (write+flush advances twice)", released)
	}
	if released[len(released)-1] != 0x20 {
		t.Fatalf("last ReportReleasedLSN value = %#x, want 0x20", released[len(released)-1])
	}
}
