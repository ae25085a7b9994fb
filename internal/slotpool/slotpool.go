// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package slotpool hands out and recycles indices into a fixed-size table.
//
// It exists so that accepting a new sender connection never has to search
// the sender table for a free row: the table's acceptor goroutine is the
// single consumer of a free list, while every sender's exit path is a
// producer returning its index. That is a multi-producer/single-consumer
// access pattern, the same one code.hybscloud.com/lfq's MPSCIndirect queue
// serves — but a free list of table-row indices isn't a FIFO queue of
// arbitrary uintptr payloads, and doesn't need one: a recycled row has no
// required hand-back order, every index already names a fixed array cell
// to link through, and there's no separate payload to pack alongside a
// cycle number. So this pool is a Treiber stack threaded through the rows
// themselves — each free row's own cell holds the next free row — popped
// and pushed with one tagged 64-bit CAS, instead of the 128-bit
// cycle+value word and power-of-2-sized ring buffer an indirect FIFO
// queue needs to stay order-correct.
package slotpool

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
)

// ErrExhausted is returned by Release if idx falls outside the pool's range.
// Acquire on an empty pool reports (0, false) instead of an error.
var ErrExhausted = iox.ErrWouldBlock

// nilLink marks the bottom of the free chain. Rows are linked by
// (index+1) so that 0 is free to mean "no next row" without reserving a
// real row index for it.
const nilLink = 0

// FreeList is a fixed-capacity, lock-free pool of [0,n) indices, realized
// as a Treiber stack over an array of next-links rather than a ring
// buffer: top packs a monotonically increasing ABA-guard tag together
// with the head row's (index+1), and links[i] holds the (index+1) of the
// row beneath row i in the stack. Capacity never needs to round up to a
// power of 2 and the backing storage is exactly n entries, not 2n, since
// nothing here cycles through slot positions the way a ring buffer does.
//
// Acquire is single-consumer only (one acceptor goroutine). Release is
// multi-producer safe (any number of sender goroutines returning their
// row on exit).
type FreeList struct {
	_        [64]byte
	top      atomix.Uint64 // hi=ABA tag, lo=head row's (index+1); 0 lo = empty
	_        [64]byte
	links    []atomix.Uint32
	capacity int
}

// New creates a FreeList prepopulated with every index in [0, n), chained
// 0 -> 1 -> ... -> n-1 -> nilLink.
func New(n int) *FreeList {
	if n < 1 {
		panic("slotpool: n must be >= 1")
	}

	p := &FreeList{
		links:    make([]atomix.Uint32, n),
		capacity: n,
	}
	for i := 0; i < n-1; i++ {
		p.links[i].StoreRelaxed(uint32(i + 2)) // row i's next is row i+1
	}
	p.links[n-1].StoreRelaxed(nilLink)
	p.top.StoreRelaxed(packTop(0, 1)) // head of the chain is row 0

	return p
}

// Release returns idx to the pool (multi-producer safe).
func (p *FreeList) Release(idx int) error {
	if idx < 0 || idx >= p.capacity {
		return ErrExhausted
	}

	sw := spin.Wait{}
	rowPlus1 := uint32(idx) + 1
	for {
		old := p.top.LoadAcquire()
		tag, headPlus1 := unpackTop(old)

		p.links[idx].StoreRelease(headPlus1)

		newTop := packTop(tag+1, rowPlus1)
		if p.top.CompareAndSwapAcqRel(old, newTop) {
			return nil
		}
		sw.Once()
	}
}

// Acquire hands out a previously-free index (single consumer only).
// Returns (0, false) if the pool is currently empty.
func (p *FreeList) Acquire() (int, bool) {
	sw := spin.Wait{}
	for {
		old := p.top.LoadAcquire()
		tag, headPlus1 := unpackTop(old)
		if headPlus1 == nilLink {
			return 0, false
		}

		nextPlus1 := p.links[headPlus1-1].LoadAcquire()
		newTop := packTop(tag+1, nextPlus1)
		if p.top.CompareAndSwapAcqRel(old, newTop) {
			return int(headPlus1 - 1), true
		}
		sw.Once()
	}
}

// Cap returns the number of indices the pool was created with.
func (p *FreeList) Cap() int {
	return p.capacity
}

// packTop and unpackTop fold the ABA guard tag and the head row's
// (index+1) into the single word a 64-bit CAS can move atomically: a row
// reference only ever needs to span this pool's own capacity, never an
// arbitrary uintptr payload, so a 128-bit packed atomic isn't needed here.
func packTop(tag uint32, headPlus1 uint32) uint64 {
	return uint64(tag)<<32 | uint64(headPlus1)
}

func unpackTop(word uint64) (tag uint32, headPlus1 uint32) {
	return uint32(word >> 32), uint32(word)
}
