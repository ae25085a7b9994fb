// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncrepl

// ReleaseWaiters is the sender-side releaser (spec.md §4.3), called by a
// sender's transport goroutine after it records new standby-acknowledged
// write/flush positions. senderIdx identifies the calling sender's row in
// the ControlBlock's sender table.
func (cb *ControlBlock) ReleaseWaiters(senderIdx int, log Logger) {
	if log == nil {
		log = NopLogger
	}
	me := &cb.senders[senderIdx]

	// Gate, read without the lock: not a candidate, wrong state, or no
	// valid flush position yet.
	mySnap := me.snapshot()
	myPriority := me.Priority()
	if myPriority == 0 {
		return
	}
	if mySnap.state != SenderStreaming && mySnap.state != SenderStopping {
		return
	}
	if !mySnap.flush.IsValid() {
		return
	}

	cb.lock.Lock()

	electedIdx, ok := cb.electReleaser()
	if !ok || electedIdx != senderIdx {
		cb.lock.Unlock()
		if ok {
			me.announceNextTakeover = true
		}
		return
	}

	positions := [NumModes]LSN{mySnap.write, mySnap.flush}
	for mode := 0; mode < NumModes; mode++ {
		if positions[mode] > cb.releasedLSN[mode] {
			cb.releasedLSN[mode] = positions[mode]
			cb.queues[mode].scanAndWake(false, cb.releasedLSN[mode])
			cb.stats.ReportReleasedLSN(mode, uint64(cb.releasedLSN[mode]))
		}
	}

	announce := me.announceNextTakeover
	me.announceNextTakeover = false
	cb.lock.Unlock()

	if announce {
		log.Logf(LevelLog, "standby at sender slot %d is now the synchronous standby with priority %d", senderIdx, myPriority)
	}
}

// electReleaser scans the sender table for the eligible sender with the
// smallest positive priority, ties broken by lowest array index (spec.md
// §4.3 steps 1-2). Caller must hold cb.lock.
func (cb *ControlBlock) electReleaser() (idx int, ok bool) {
	bestPriority := uint32(0)
	bestIdx := -1

	for i := range cb.senders {
		snap := cb.senders[i].snapshot()
		if snap.pid == 0 {
			continue
		}
		if snap.state != SenderStreaming && snap.state != SenderStopping {
			continue
		}
		priority := cb.senders[i].Priority()
		if priority == 0 {
			continue
		}
		if !snap.flush.IsValid() {
			continue
		}
		if bestIdx == -1 || priority < bestPriority {
			bestPriority = priority
			bestIdx = i
		}
	}

	if bestIdx == -1 {
		return 0, false
	}
	return bestIdx, true
}
