// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncrepl

import "context"

// backgroundCtx is substituted whenever a caller passes a nil Context, so
// Latch.Wait never dereferences a nil interface.
var backgroundCtx = context.Background()

// RoleHooks lets a Session consult its owning process's role and liveness
// without this package depending on any particular transport (spec.md §6,
// "Process-role predicates consumed").
type RoleHooks interface {
	// IsCoordinator reports whether the calling process is a cluster
	// coordinator (spec.md §4.2 step 3's dispatcher-only fast path).
	IsCoordinator() bool
	// IsSupervisorAlive reports whether the process that would restart this
	// session on crash is still running.
	IsSupervisorAlive() bool
	// TerminationPending reports whether this session has been asked to
	// shut down.
	TerminationPending() bool
	// CancelPending reports and clears a pending query-cancellation
	// request. Returns false if none is pending.
	CancelPending() bool
}

// Session is one client connection's commit-gate state: its WaitSlot plus
// the hooks WaitForLSN needs to observe termination, cancellation and
// supervisor liveness (spec.md §3, §4.2). Callers construct one Session per
// connection and reuse it across every commit that connection makes.
type Session struct {
	slot  *WaitSlot
	cb    *ControlBlock
	mode  WaitMode
	roles RoleHooks
	log   Logger
	stats StatsSink

	// outputDisabled mirrors the original's "whereToSendOutput = None":
	// once set, this session no longer forwards query results to its
	// client, because the backing transaction already committed locally
	// and the client connection may be in an inconsistent state.
	outputDisabled bool
}

// NewSession creates a Session bound to one ControlBlock. mode is the
// session's synchronous_commit-derived wait mode; pass NoWait if the
// session never needs to gate on replication. roles may be nil, in which
// case the coordinator fast path, termination checks and supervisor checks
// are all skipped (suitable only for tests). log may be nil to discard
// logging.
func NewSession(cb *ControlBlock, mode WaitMode, roles RoleHooks, log Logger) *Session {
	if log == nil {
		log = NopLogger
	}
	return &Session{
		slot:  NewWaitSlot(),
		cb:    cb,
		mode:  mode,
		roles: roles,
		log:   log,
		stats: NopStats,
	}
}

// SetStats wires a StatsSink into this Session so WaitForLSN reports its
// waiting status and abandonment reason (spec.md §4.2's "reports waiting
// status to a statistics sink"). Nil-safe: passing nil restores NopStats.
// Not safe to call concurrently with WaitForLSN on the same Session.
func (s *Session) SetStats(stats StatsSink) {
	if stats == nil {
		stats = NopStats
	}
	s.stats = stats
}

// SetMode changes the session's wait mode, as happens when
// synchronous_commit is reloaded mid-session. Callers must not call this
// concurrently with WaitForLSN on the same Session.
func (s *Session) SetMode(mode WaitMode) {
	s.mode = mode
}

// Wake interrupts a blocked WaitForLSN call so it re-evaluates termination,
// cancellation and supervisor liveness immediately, instead of waiting for
// the next release. The original C implementation gets this for free
// because its signal handlers call SetLatch() directly; callers that raise
// TerminationPending, CancelPending or flip IsSupervisorAlive externally
// must call Wake the same way, or the sleeping session won't notice until
// the next scan_and_wake touches its queue.
func (s *Session) Wake() {
	s.slot.latch.Set()
}

// WaitForLSN blocks the calling goroutine until commitLSN has been
// reported as replicated to the qualifying standby in the session's mode,
// or until a termination condition forces abandonment (spec.md §4.2).
//
// inAsyncSignalHandler must be true when this is invoked from a context
// equivalent to a signal handler, where the wake primitive cannot safely
// be touched; WaitForLSN then returns immediately (spec.md §4.2 step 1).
func (s *Session) WaitForLSN(ctx context.Context, commitLSN LSN, inAsyncSignalHandler bool) error {
	// Step 1: reentrancy guard.
	if inAsyncSignalHandler {
		return nil
	}
	if ctx == nil {
		ctx = backgroundCtx
	}

	// Step 2: fast async path.
	if s.mode == NoWait {
		return nil
	}

	// Step 3: no-sync-standby fast path, coordinator only.
	if s.roles != nil && s.roles.IsCoordinator() {
		if !s.anyCaughtUpSender() {
			return nil
		}
	}

	cb := s.cb
	idx := s.mode.queueIndex()

	// Step 4: acquire lock exclusive; the slot must be detached and idle.
	cb.lock.Lock()
	if s.slot.IsLinked() || s.slot.peekState() != NotWaiting {
		cb.lock.Unlock()
		panic("syncrepl: WaitForLSN called with a slot already in use")
	}

	// Step 5: late-acknowledgment fast path. The sync_standbys_defined check
	// applies only to non-coordinator roles: a coordinator already took its
	// own fast path in step 3 by scanning live senders directly, so its
	// presence here would be redundant and, worse, would bypass an
	// in-progress wait incorrectly if the flag lagged a concurrent reconcile.
	notCoordinator := s.roles == nil || !s.roles.IsCoordinator()
	if (notCoordinator && !cb.syncStandbysDefined.LoadAcquire()) || commitLSN <= cb.releasedLSN[idx] {
		cb.lock.Unlock()
		return nil
	}

	// Step 6: enqueue.
	s.slot.waitLSN = commitLSN
	s.slot.state.StoreRelease(int32(Waiting))
	cb.queues[idx].insert(s.slot)
	assertOrdered(&cb.queues[idx])
	cb.lock.Unlock()

	end := s.stats.BeginWait()
	err := s.sleepLoop(ctx, idx)
	end()

	// Step 8: post-condition.
	cb.lock.Lock()
	if s.slot.IsLinked() {
		panic("syncrepl: slot still linked after wait loop exit")
	}
	s.slot.state.StoreRelease(int32(NotWaiting))
	s.slot.waitLSN = Invalid
	cb.lock.Unlock()

	return err
}

// sleepLoop implements spec.md §4.2 step 7. A caller's ctx cancellation is
// treated exactly like a detected cancel_pending (spec.md §9, "Ignoring
// query cancellation"): logged once and ignored, never aborting the wait,
// since the transaction has already committed locally. Only
// TerminationPending and a dead supervisor end the wait early.
func (s *Session) sleepLoop(ctx context.Context, idx int) error {
	cb := s.cb
	ctxNoted := false
	for {
		// 7a.
		s.slot.latch.Reset()

		// 7b, 7c: unlocked peek, then an acquiring re-read under shared
		// lock per §9's weak-memory note.
		if s.slot.peekState() == Waiting {
			cb.lock.RLock()
			state := s.slot.State()
			cb.lock.RUnlock()
			if state != WaitComplete {
				// 7d: termination pending.
				if s.roles != nil && s.roles.TerminationPending() {
					return s.abandon("termination pending")
				}
				// 7e: query cancellation pending.
				if s.roles != nil && s.roles.CancelPending() {
					s.log.Logf(LevelWarning, "canceling statement due to user request is ignored: "+
						"the transaction has already committed locally, but might not have been replicated")
				}
				// 7f: supervisor alive.
				if s.roles != nil && !s.roles.IsSupervisorAlive() {
					return s.abandon("supervisor not alive")
				}
				// 7g: sleep on the latch.
				s.slot.latch.Wait(ctx, nil)
				if !ctxNoted && ctx.Err() != nil {
					ctxNoted = true
					s.log.Logf(LevelWarning, "canceling statement due to context cancellation is ignored: "+
						"the transaction has already committed locally, but might not have been replicated")
					// Stop selecting on this ctx: it is already done, and
					// re-selecting it every iteration would spin the loop.
					ctx = backgroundCtx
				}
				continue
			}
		}
		return nil
	}
}

// abandon performs the cancel-and-disable sequence shared by steps 7d and
// 7f, then returns the AbandonedError the caller should surface.
func (s *Session) abandon(reason string) error {
	fatal := s.roles == nil || !s.roles.IsCoordinator()
	level := LevelWarning
	if fatal {
		level = LevelFatal
	}
	s.log.Logf(level, "canceling the wait for synchronous replication and terminating connection due to %s. "+
		"The transaction has already committed locally, but might not have been replicated to the standby.", reason)
	s.stats.ReportAbandoned(reason)
	s.outputDisabled = true
	s.cancelWait()
	return &AbandonedError{Reason: reason, Fatal: fatal}
}

// cancelWait implements spec.md §4.2's cancel_wait(): if the slot is still
// linked, unlink it and reset it to idle. Idempotent (P8).
func (s *Session) cancelWait() {
	cb := s.cb
	cb.lock.Lock()
	if s.slot.IsLinked() {
		cb.queues[s.mode.queueIndex()].remove(s.slot)
	}
	s.slot.state.StoreRelease(int32(NotWaiting))
	cb.lock.Unlock()
}

// CleanupAtExit performs the same unconditional dequeue cancelWait does,
// for use on abnormal session termination (spec.md §4.2, P8).
func (s *Session) CleanupAtExit() {
	s.cancelWait()
}

// anyCaughtUpSender implements spec.md §4.2 step 3: true if some sender is
// live and either streaming, or in catchup and within the caught-up range.
func (s *Session) anyCaughtUpSender() bool {
	for i := range s.cb.senders {
		snap := s.cb.senders[i].snapshot()
		if snap.pid == 0 {
			continue
		}
		if snap.state == SenderStreaming || (snap.state == SenderCatchup && snap.caughtUpWithinRange) {
			return true
		}
	}
	return false
}
