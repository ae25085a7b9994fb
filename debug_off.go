// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !syncrepl_debug

package syncrepl

// assertOrdered is a no-op outside debug builds.
func assertOrdered(*waitQueue) {}

// debugBuild is false outside the syncrepl_debug build tag.
const debugBuild = false
