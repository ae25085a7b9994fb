// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build syncrepl_debug

package syncrepl

// assertOrdered panics if I2 (ascending wait_lsn) doesn't hold. Compiled in
// only under the syncrepl_debug build tag, per spec.md §4.1, the same way
// code.hybscloud.com/lfq gates its race-detector-only helpers behind a
// build tag.
func assertOrdered(q *waitQueue) {
	if !q.isOrdered() {
		panic("syncrepl: wait queue is not ordered by ascending wait_lsn")
	}
}

// debugBuild is true when assertions compiled under syncrepl_debug are active.
const debugBuild = true
