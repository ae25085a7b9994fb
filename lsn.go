// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncrepl

import "fmt"

// LSN is a monotonic write-ahead-log position. Comparison is unsigned.
type LSN uint64

// Invalid is the reserved "not yet valid" / "none" LSN sentinel.
const Invalid LSN = 0

// IsValid reports whether lsn is something other than the reserved sentinel.
func (lsn LSN) IsValid() bool {
	return lsn != Invalid
}

func (lsn LSN) String() string {
	return fmt.Sprintf("%X/%X", uint64(lsn)>>32, uint64(lsn)&0xFFFFFFFF)
}

// WaitMode selects which acknowledged standby position releases a waiter.
type WaitMode int

const (
	// NoWait is the fast-path sentinel: no queue, WaitForLSN returns immediately.
	NoWait WaitMode = iota
	// Write waits for the standby's reported write (received) position.
	Write
	// Flush waits for the standby's reported flush (durable) position.
	Flush
)

// NumModes is the number of modes with an actual wait queue (Write, Flush).
const NumModes = 2

// queueIndex maps a real wait mode onto its queues[]/released_lsn[] slot.
// Callers must never call this with NoWait.
func (m WaitMode) queueIndex() int {
	switch m {
	case Write:
		return 0
	case Flush:
		return 1
	default:
		panic("syncrepl: NoWait has no wait queue")
	}
}

func (m WaitMode) String() string {
	switch m {
	case NoWait:
		return "no-wait"
	case Write:
		return "write"
	case Flush:
		return "flush"
	default:
		return "unknown"
	}
}

// SynchronousCommitLevel mirrors PostgreSQL's synchronous_commit GUC.
type SynchronousCommitLevel int

const (
	CommitOff SynchronousCommitLevel = iota
	CommitLocal
	CommitRemoteWrite
	CommitRemoteFlush
	CommitRemoteApply
)

// AssignCommitMode maps a synchronous_commit setting onto the internal
// WaitMode, per spec.md §4.5: RemoteWrite -> Write, RemoteFlush -> Flush,
// anything else -> NoWait.
func AssignCommitMode(level SynchronousCommitLevel) WaitMode {
	switch level {
	case CommitRemoteWrite:
		return Write
	case CommitRemoteFlush:
		return Flush
	default:
		return NoWait
	}
}
