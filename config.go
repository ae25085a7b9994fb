// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncrepl

import "strings"

// NameList is the parsed, validated form of synchronous_standby_names
// (spec.md §4.5, §6). Its zero value is an empty list (no candidates).
type NameList struct {
	names []string
}

// ValidateNames syntactically parses a comma-separated identifier list,
// trimming surrounding whitespace around each entry. It does not assign
// priorities — spec.md §4.5 notes callers cannot yet know sender identity
// at validation time. An empty or whitespace-only raw string is valid and
// yields an empty NameList (no sync standbys configured).
func ValidateNames(raw string) (*NameList, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &NameList{}, nil
	}

	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			return nil, &ConfigSyntaxError{Detail: "empty identifier between commas"}
		}
		names = append(names, name)
	}

	return &NameList{names: names}, nil
}

// Defined reports whether the list has at least one configured name
// (spec.md §6: "Empty ⇒ no candidates").
func (n *NameList) Defined() bool {
	return n != nil && len(n.names) > 0
}

// PriorityOf returns name's priority: its 1-based position in the list, or
// 0 if name is not listed (spec.md §4.5). Ties in priority never occur
// under this scheme since every listed name has a distinct position;
// SenderDescriptor's array-index tiebreak in the election (spec.md §4.3)
// only matters for the degenerate constant-priority scheme noted there.
func (n *NameList) PriorityOf(name string) uint32 {
	if n == nil {
		return 0
	}
	for i, candidate := range n.names {
		if candidate == name {
			return uint32(i + 1)
		}
	}
	return 0
}

// Names returns the validated identifiers in configured order.
func (n *NameList) Names() []string {
	if n == nil {
		return nil
	}
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}

// Reconcile implements the Configuration Watcher (spec.md §4.4): it
// reconciles ControlBlock.syncStandbysDefined with whether names is
// currently non-empty, draining every waiter first if disabling, so no
// waiter is ever stranded by a configuration change that turns off sync
// replication.
func (cb *ControlBlock) Reconcile(names *NameList, logger Logger) {
	desired := names.Defined()
	if desired == cb.SyncStandbysDefined() {
		return
	}

	cb.lock.Lock()
	if !desired {
		for mode := 0; mode < NumModes; mode++ {
			woken := cb.queues[mode].scanAndWake(true, 0)
			if woken > 0 && logger != nil {
				logger.Logf(LevelLog, "drained %d waiter(s) from %s queue: synchronous_standby_names is now empty", woken, WaitMode(mode+1))
			}
		}
	}
	// The flag flips only after the drain completes, per spec.md §4.4: a
	// session that reaches step 5 of WaitForLSN concurrently with this call
	// must not be able to observe "disabled" and skip enqueuing while an
	// earlier waiter is still mid-drain, nor must a session be able to
	// enqueue into a queue this call has already drained.
	cb.syncStandbysDefined.StoreRelease(desired)
	cb.lock.Unlock()
}
