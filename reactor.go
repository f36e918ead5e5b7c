// Package reactor is a framework-agnostic, fine-grained reactive core:
// signals (mutable cells), memos (derived read-only cells), and effects
// (side-effecting observers) kept mutually consistent by an implicit
// dependency-tracking scheduler. Reads discover dependency edges
// automatically; writes schedule exactly the observers that transitively
// read the changed signal, and a two-phase flush recomputes memos before
// re-running effects so nothing ever observes a torn intermediate state.
package reactor

import (
	"context"

	"github.com/ardent-oss/reactor/internal"
	"github.com/ardent-oss/reactor/structeq"
)

// Store is an isolated reactive universe. Effects created through one Store
// never respond to signals belonging to another.
type Store struct {
	rt *internal.Store
}

// NewStore creates a fresh, independent Store.
func NewStore() *Store {
	return &Store{rt: internal.NewStore()}
}

// Batch defers re-running plain effects until the outermost Batch call on
// this store returns; memos inside the batch stay up to date the whole
// time. Nested batches collapse: only the outermost exit flushes.
func (s *Store) Batch(fn func()) {
	s.rt.Batch(fn)
}

// Unlink tears down every live effect created through this store.
func (s *Store) Unlink() {
	s.rt.Unlink()
}

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// Signal is a mutable, type-safe reactive cell.
type Signal[T any] struct {
	node *internal.Signal
}

type signalConfig[T any] struct {
	equals func(a, b T) bool
}

// SignalOption configures a Signal at creation time.
type SignalOption[T any] func(*signalConfig[T])

// WithEquals overrides the default structural-equality change predicate.
func WithEquals[T any](equals func(a, b T) bool) SignalOption[T] {
	return func(c *signalConfig[T]) { c.equals = equals }
}

// NewSignal creates a signal owned by store. Go cannot give a method of
// *Store its own type parameter, so this is a free function taking the
// store explicitly rather than a Store.Signal[T] method.
func NewSignal[T any](store *Store, initial T, opts ...SignalOption[T]) *Signal[T] {
	cfg := signalConfig[T]{equals: func(a, b T) bool { return structeq.Deep(a, b) }}
	for _, opt := range opts {
		opt(&cfg)
	}

	node := store.rt.NewSignal(initial, func(a, b any) bool {
		return cfg.equals(as[T](a), as[T](b))
	})

	return &Signal[T]{node: node}
}

// Read returns the current value, tracking the dependency if called from
// within a running effect or memo body.
func (s *Signal[T]) Read() T {
	return as[T](s.node.Read())
}

// Write stores next directly. A no-op (per the equality predicate) never
// schedules any observer.
func (s *Signal[T]) Write(next T) {
	s.node.Write(next)
}

// Update resolves next = fn(current) and writes it, matching spec's
// "update(prev -> next)" form. Fetching prev is a plain value read, not a
// tracked one: an effect that only updates a signal from its own previous
// value must not install a dependency edge on the very signal it's writing.
func (s *Signal[T]) Update(fn func(prev T) T) {
	s.node.Write(fn(as[T](s.node.Peek())))
}

// Accessors returns the (read, write) pair for positional destructuring,
// e.g. `count, setCount := reactor.NewSignal(store, 0).Accessors()`.
func (s *Signal[T]) Accessors() (func() T, func(T)) {
	return s.Read, s.Write
}

// ReadOnly returns a reader-only view, letting the writer stay private to
// whoever created the signal while still publishing a tracked reader.
func (s *Signal[T]) ReadOnly() func() T {
	return s.Read
}

type memoConfig[T any] struct {
	equals func(a, b T) bool
	abort  context.Context
	name   string
}

// MemoOption configures a Memo at creation time.
type MemoOption[T any] func(*memoConfig[T])

// WithMemoEquals overrides the default structural-equality change predicate.
func WithMemoEquals[T any](equals func(a, b T) bool) MemoOption[T] {
	return func(c *memoConfig[T]) { c.equals = equals }
}

// WithMemoAbort records abort in the memo's configuration. Memo does not pass
// it on: the memo's hidden effect is created without an abort token and is
// not cancelled when abort is done.
func WithMemoAbort[T any](abort context.Context) MemoOption[T] {
	return func(c *memoConfig[T]) { c.abort = abort }
}

// WithMemoName attaches a debug label surfaced in cyclic-dependency errors.
func WithMemoName[T any](name string) MemoOption[T] {
	return func(c *memoConfig[T]) { c.name = name }
}

// Memo creates a derived, read-only cell computed from other signals. Its
// writer is an internal memo-kind effect: recomputation is driven by the
// flush's memo phase, which always runs before plain effects in the same
// flush, so an effect reading a memo never sees a stale intermediate value.
func Memo[T any](store *Store, compute func() T, opts ...MemoOption[T]) func() T {
	cfg := memoConfig[T]{equals: func(a, b T) bool { return structeq.Deep(a, b) }}
	for _, opt := range opts {
		opt(&cfg)
	}

	node := store.rt.NewMemo(func() any { return compute() }, func(a, b any) bool {
		return cfg.equals(as[T](a), as[T](b))
	}, cfg.name)

	sig := &Signal[T]{node: node}
	return sig.Read
}

// Context is passed to a running effect body; Cancel schedules the effect
// for teardown once the body returns.
type Context = internal.RunContext

type effectConfig struct {
	abort context.Context
	name  string
}

// EffectOption configures an Effect at creation time.
type EffectOption func(*effectConfig)

// WithAbort cancels the effect once abort is done, alongside the handle
// returned from Effect and any in-body ctx.Cancel() call — all three paths
// converge on the same teardown.
func WithAbort(abort context.Context) EffectOption {
	return func(c *effectConfig) { c.abort = abort }
}

// WithName attaches a debug label surfaced in cyclic-dependency errors.
func WithName(name string) EffectOption {
	return func(c *effectConfig) { c.name = name }
}

// Effect creates a reactive effect: body runs immediately, and again
// whenever any signal or memo it read last time changes. body may return a
// cleanup callable, run before the next re-run and at teardown. Effect
// returns an idempotent cancel handle.
func Effect(store *Store, body func(ctx *Context) func(), opts ...EffectOption) (cancel func()) {
	cfg := effectConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return store.rt.CreateEffect(internal.KindPlain, cfg.name, body, cfg.abort)
}

// Untracked runs read without creating any dependency edges, even if read
// itself performs signal reads.
func Untracked[T any](store *Store, read func() T) T {
	return as[T](store.rt.Untracked(func() any { return read() }))
}

// CyclicDependencyError is panicked by the scheduler when an effect would
// re-enter itself, directly or through a chain of writes triggered by its
// own run.
type CyclicDependencyError = internal.CyclicDependencyError
