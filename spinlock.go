// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncrepl

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// spinlock is a CAS-based test-and-set lock, backed off with spin.Wait the
// same way code.hybscloud.com/lfq's CAS-based queue variants (mpmc_compact.go,
// mpsc_compact.go) back off a failed slot CAS. It protects a single
// SenderDescriptor's volatile, transport-written fields (spec.md §5) against
// readers in other goroutines that are not holding ControlBlock.lock — most
// notably the no-sync-standby fast-path scan in Session.WaitForLSN, which
// must not block on the main lock just to peek at sender liveness.
type spinlock struct {
	state atomix.Int32 // 0 = unlocked, 1 = locked
}

func (s *spinlock) Lock() {
	sw := spin.Wait{}
	for !s.state.CompareAndSwapAcqRel(0, 1) {
		sw.Once()
	}
}

func (s *spinlock) Unlock() {
	s.state.StoreRelease(0)
}
