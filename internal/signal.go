package internal

// Signal is a mutable single-value cell with automatic dependency tracking.
// Its value is stored as `any`; the exported reactor package supplies the
// generics on top.
type Signal struct {
	store *Store

	value  any
	equals func(a, b any) bool

	observers effectSet
}

// NewSignal creates a signal owned by store, using equals to decide whether
// a write is a no-op.
func (s *Store) NewSignal(initial any, equals func(a, b any) bool) *Signal {
	return &Signal{
		store:  s,
		value:  initial,
		equals: equals,
	}
}

// Read returns the current value, linking the currently-executing effect
// (if any, and if tracking) as an observer. The link is idempotent and
// installs exactly one unlinker into the effect.
func (s *Signal) Read() any {
	if obs := s.store.currentObserver(); obs != nil {
		if s.observers.add(obs) {
			obs.addUnlinker(func() { s.observers.remove(obs) })
		}
	}
	return s.value
}

// Peek returns the current value without installing a dependency edge,
// regardless of the store's tracking state. Used internally to resolve an
// updater's "previous value" argument (spec §4.1): that is a plain value
// fetch, not a reactive read, so an effect that only updates a signal from
// its own previous value must not end up observing itself.
func (s *Signal) Peek() any {
	return s.value
}

// Write resolves to next's value. If equals reports no change, this is a
// silent no-op: the stored value is untouched and no observer is scheduled.
// Otherwise every current observer is scheduled and the store is flushed.
func (s *Signal) Write(next any) {
	if s.equals(s.value, next) {
		return
	}

	s.value = next

	s.store.scheduleAll(s.observers.snapshot())
}
