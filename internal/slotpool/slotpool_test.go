// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotpool_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/syncrepl/internal/slotpool"
)

func TestAcquireReleaseRoundTrip(t *testing.T) {
	p := slotpool.New(4)
	if p.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", p.Cap())
	}

	seen := map[int]bool{}
	for i := 0; i < 4; i++ {
		idx, ok := p.Acquire()
		if !ok {
			t.Fatalf("Acquire(%d): unexpectedly empty", i)
		}
		if seen[idx] {
			t.Fatalf("Acquire returned duplicate index %d", idx)
		}
		seen[idx] = true
	}

	if _, ok := p.Acquire(); ok {
		t.Fatal("Acquire on exhausted pool should fail")
	}

	if err := p.Release(2); err != nil {
		t.Fatalf("Release: %v", err)
	}
	idx, ok := p.Acquire()
	if !ok || idx != 2 {
		t.Fatalf("Acquire after Release: got (%d, %v), want (2, true)", idx, ok)
	}
}

func TestConcurrentReleaseSingleConsumer(t *testing.T) {
	const n = 64
	p := slotpool.New(n)

	acquired := make([]int, 0, n)
	for {
		idx, ok := p.Acquire()
		if !ok {
			break
		}
		acquired = append(acquired, idx)
	}
	if len(acquired) != n {
		t.Fatalf("drained %d indices, want %d", len(acquired), n)
	}

	var wg sync.WaitGroup
	for _, idx := range acquired {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := p.Release(idx); err != nil {
				t.Errorf("Release(%d): %v", idx, err)
			}
		}(idx)
	}
	wg.Wait()

	count := 0
	for {
		if _, ok := p.Acquire(); !ok {
			break
		}
		count++
	}
	if count != n {
		t.Fatalf("recovered %d indices after concurrent release, want %d", count, n)
	}
}
