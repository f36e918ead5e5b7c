package internal

import (
	"context"
	"log"
)

// EffectKind distinguishes memo-backing effects from plain ones; the flush
// loop always drains memo-kind effects before plain ones.
type EffectKind int

const (
	// KindPlain is an ordinary side-effecting observer.
	KindPlain EffectKind = iota
	// KindMemo marks the hidden effect backing a Memo.
	KindMemo
)

// Body is the shape of a reactive effect: it runs, tracks whatever signals
// it reads, and may return a cleanup callable to run before its next run
// (or at teardown). ctx carries the self-cancel hook described in §4.3.
type Body func(ctx *RunContext) func()

// RunContext is passed to a running effect body.
type RunContext struct {
	effect *Effect
}

// Cancel schedules this effect for teardown once its body returns. Calling
// it mid-body is deferred: the effect is still on top of the observer
// stack, so teardown happens right after the body returns, not during it.
func (c *RunContext) Cancel() {
	c.effect.cancelPending = true
}

// Effect owns a user body, the dependency edges discovered during its most
// recent run, and an optional user-supplied cleanup.
type Effect struct {
	store *Store
	kind  EffectKind
	name  string

	body Body

	unlinkers   []func()
	userCleanup func()

	active        bool
	cancelPending bool
	stopAbort     func()
}

// CreateEffect runs the creation protocol from spec §4.3: if abort is
// already done, return a no-op cancel handle without running; otherwise
// allocate the effect, wire the abort token (if any), run it once, and
// return its cancel handle.
func (s *Store) CreateEffect(kind EffectKind, name string, body Body, abort context.Context) (cancel func()) {
	if abort != nil && abort.Err() != nil {
		return func() {}
	}

	e := &Effect{
		store:  s,
		kind:   kind,
		name:   name,
		body:   body,
		active: true,
	}
	s.register(e)

	if abort != nil {
		stop := context.AfterFunc(abort, e.Cancel)
		e.stopAbort = func() { stop() }
	}

	e.update()

	return e.Cancel
}

// update is the core re-execution routine (spec §4.3): drop old edges and
// run prior cleanup, check for a cyclic re-entry, run the body while
// tracking, and resolve any cancellation requested from within the body.
func (e *Effect) update() {
	e.cleanup()

	if e.store.onStack[e] {
		panic(&CyclicDependencyError{Name: e.name})
	}

	e.store.pushObserver(e)

	var cleanup func()
	func() {
		defer func() {
			if r := recover(); r != nil {
				e.store.popObserver()
				e.cleanup()
				panic(r)
			}
		}()
		cleanup = e.body(&RunContext{effect: e})
	}()

	e.store.popObserver()
	e.userCleanup = cleanup

	if e.cancelPending {
		e.cancelPending = false
		e.teardown()
	}
}

// cleanup removes every edge installed during the last run and invokes any
// stored user cleanup, logging (never propagating) a failure in it.
func (e *Effect) cleanup() {
	for _, unlink := range e.unlinkers {
		unlink()
	}
	e.unlinkers = e.unlinkers[:0]

	if e.userCleanup == nil {
		return
	}
	uc := e.userCleanup
	e.userCleanup = nil

	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Error during effect cleanup: %v", r)
			}
		}()
		uc()
	}()
}

// addUnlinker records one unlink callback per distinct signal read during
// this run, so the next run's cleanup() removes exactly those edges.
func (e *Effect) addUnlinker(unlink func()) {
	e.unlinkers = append(e.unlinkers, unlink)
}

// teardown is the shared end state for every cancellation path: cleanup,
// detach from the abort token, drop out of the store's registry, and mark
// inactive so no further notification can reach it.
func (e *Effect) teardown() {
	e.active = false
	if e.stopAbort != nil {
		e.stopAbort()
	}
	e.store.unregister(e)
	e.cleanup()
}

// Cancel is the idempotent external cancel handle: the handle returned by
// CreateEffect, the abort token firing, and Store.Unlink all call this.
func (e *Effect) Cancel() {
	if !e.active {
		return
	}
	e.teardown()
}
