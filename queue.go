// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncrepl

// waitQueue is a per-mode, intrusive doubly-linked list of *WaitSlot sorted
// by ascending wait_lsn (I2). All operations require ControlBlock.lock held
// exclusive; see spec.md §4.1.
type waitQueue struct {
	head, tail *WaitSlot
}

// insert splices slot into the queue, preserving ascending-LSN order.
// Walks backward from the tail — arrivals are usually monotonically
// increasing, so the common case is an O(1) append — stopping at the first
// node with a strictly smaller wait_lsn and inserting after it. Nodes with
// equal wait_lsn are walked past, so duplicates queue in arrival order
// (spec.md §9, "Duplicate wait_lsns").
func (q *waitQueue) insert(slot *WaitSlot) {
	prev := q.tail
	for prev != nil && !(prev.waitLSN < slot.waitLSN) {
		prev = prev.prev
	}

	if prev == nil {
		slot.prev = nil
		slot.next = q.head
		if q.head != nil {
			q.head.prev = slot
		} else {
			q.tail = slot
		}
		q.head = slot
	} else {
		slot.prev = prev
		slot.next = prev.next
		if prev.next != nil {
			prev.next.prev = slot
		} else {
			q.tail = slot
		}
		prev.next = slot
	}

	slot.queued = true
}

// remove unlinks slot. Idempotent: a detached slot is left untouched (P8).
func (q *waitQueue) remove(slot *WaitSlot) {
	if !slot.queued {
		return
	}

	if slot.prev != nil {
		slot.prev.next = slot.next
	} else {
		q.head = slot.next
	}
	if slot.next != nil {
		slot.next.prev = slot.prev
	} else {
		q.tail = slot.prev
	}

	slot.prev = nil
	slot.next = nil
	slot.queued = false
}

// scanAndWake walks from the head, waking (unlinking, marking
// WaitComplete, signaling the latch) every slot whose wait_lsn has been
// reached. With all == true every slot is woken regardless of highWater
// (used by the Configuration Watcher's drain). Returns the count woken.
//
// Ordering within each slot is unlink -> state store -> latch set, so a
// session that wakes because its latch fired is guaranteed to observe
// WaitComplete (P2).
func (q *waitQueue) scanAndWake(all bool, highWater LSN) int {
	count := 0
	node := q.head
	for node != nil {
		if !all && node.waitLSN > highWater {
			break
		}
		next := node.next

		q.remove(node)
		node.state.StoreRelease(int32(WaitComplete))
		node.latch.Set()
		count++

		node = next
	}
	return count
}

// isOrdered walks the queue verifying I2. Only ever called from debug-build
// assertions (assertOrdered in debug.go); kept separate so it has no cost
// at all, not even a branch, in a non-debug build.
func (q *waitQueue) isOrdered() bool {
	var last LSN
	node := q.head
	for node != nil {
		if node.waitLSN < last {
			return false
		}
		last = node.waitLSN
		node = node.next
	}
	return true
}
