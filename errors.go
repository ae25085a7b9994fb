// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncrepl

import (
	"errors"
	"fmt"
)

// ErrReplicationAbandoned is the sentinel every *AbandonedError wraps.
// Callers should use errors.Is(err, ErrReplicationAbandoned), not a type
// assertion, so logging/wrapping layers can attach context freely.
var ErrReplicationAbandoned = errors.New("syncrepl: wait for synchronous replication abandoned")

// ErrConfigSyntax is returned by ValidateNames for a malformed name list.
var ErrConfigSyntax = errors.New("syncrepl: invalid synchronous_standby_names syntax")

// AbandonedError reports that WaitForLSN gave up before its LSN was
// confirmed replicated (spec.md §7, LocalCommittedButTerminated /
// SupervisorDead). The local commit already happened and is not undone;
// this only tells the caller that durability to the standby is unconfirmed.
type AbandonedError struct {
	// Reason is a short human-readable cause: "termination pending" or
	// "supervisor not alive".
	Reason string
	// Fatal is true when the caller's role is not a coordinator, meaning
	// the connection should be terminated rather than merely warned
	// (spec.md §7: "In coordinator roles, demoted to a WARNING ... in
	// ordinary roles, a FATAL that terminates the connection").
	Fatal bool
}

func (e *AbandonedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrReplicationAbandoned, e.Reason)
}

func (e *AbandonedError) Unwrap() error {
	return ErrReplicationAbandoned
}

// ConfigSyntaxError carries the detail behind ErrConfigSyntax.
type ConfigSyntaxError struct {
	Detail string
}

func (e *ConfigSyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfigSyntax, e.Detail)
}

func (e *ConfigSyntaxError) Unwrap() error {
	return ErrConfigSyntax
}
