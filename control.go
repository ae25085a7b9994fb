// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncrepl

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/syncrepl/internal/slotpool"
)

// ControlBlock is the process-wide coordination state (spec.md §3): the two
// wait queues, their released-LSN high-water marks, the sender table, and
// the sync_standbys_defined flag. One ControlBlock serves every session and
// sender goroutine in a process.
type ControlBlock struct {
	lock sync.RWMutex

	queues      [NumModes]waitQueue
	releasedLSN [NumModes]LSN

	senders []SenderDescriptor
	slots   *slotpool.FreeList
	stats   StatsSink

	syncStandbysDefined atomix.Bool
}

// NewControlBlock creates a ControlBlock with room for up to maxSenders
// concurrently-connected senders.
func NewControlBlock(maxSenders int) *ControlBlock {
	return &ControlBlock{
		senders: make([]SenderDescriptor, maxSenders),
		slots:   slotpool.New(maxSenders),
		stats:   NopStats,
	}
}

// SetStats wires a StatsSink into this ControlBlock so ReleaseWaiters
// publishes the released_lsn watermark on every advance (spec.md §6,
// "activity/statistics reporting"). Nil-safe: passing nil restores
// NopStats. Not safe to call concurrently with ReleaseWaiters.
func (cb *ControlBlock) SetStats(stats StatsSink) {
	if stats == nil {
		stats = NopStats
	}
	cb.stats = stats
}

// Senders exposes the sender-table slot allocator, used by the transport's
// accept loop (AcquireSender) and each sender's exit path (ReleaseSender).
func (cb *ControlBlock) Senders() *slotpool.FreeList {
	return cb.slots
}

// AcquireSender hands out a free sender-table row. ok is false if every row
// is already in use.
func (cb *ControlBlock) AcquireSender() (idx int, ok bool) {
	return cb.slots.Acquire()
}

// ReleaseSender clears the row (pid zeroed, state Exiting; its priority and
// positions are left as they were) and returns it to the free list. Call this
// from the sender's own exit path, after it has stopped touching its
// descriptor.
func (cb *ControlBlock) ReleaseSender(idx int) error {
	cb.senders[idx].Clear()
	return cb.slots.Release(idx)
}

// SenderAt returns the descriptor for sender-table row idx.
func (cb *ControlBlock) SenderAt(idx int) *SenderDescriptor {
	return &cb.senders[idx]
}

// SetSenderPriority assigns senderIdx's sync_standby_priority (spec.md
// §4.5, get_standby_priority()). Call this whenever a sender's transport
// learns its own identifier, and again whenever the name list is reloaded.
// Takes ControlBlock.lock exclusive, satisfying SenderDescriptor.SetPriority's
// locking requirement.
func (cb *ControlBlock) SetSenderPriority(senderIdx int, priority uint32) {
	cb.lock.Lock()
	cb.senders[senderIdx].SetPriority(priority)
	cb.lock.Unlock()
}

// ReleasedLSN returns the current high-water mark for mode, under a shared lock.
func (cb *ControlBlock) ReleasedLSN(mode WaitMode) LSN {
	cb.lock.RLock()
	defer cb.lock.RUnlock()
	return cb.releasedLSN[mode.queueIndex()]
}

// SyncStandbysDefined reports whether the configured standby name list is
// currently non-empty. Safe to call without the lock (spec.md §4.4: "It's
// safe to check the current value without the lock, because it's only ever
// updated by one process[/goroutine]").
func (cb *ControlBlock) SyncStandbysDefined() bool {
	return cb.syncStandbysDefined.LoadAcquire()
}
