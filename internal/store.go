package internal

// Store is an isolated reactive universe: the current-observer stack, the
// pending-effect set, batch depth, and the tracking flag all live here and
// nowhere else, so two Stores never observe each other's effects (§5, §9
// "Weak edges" design note). It carries no internal locking: the core
// assumes at most one logical flow of execution drives a given Store at a
// time (spec §5).
type Store struct {
	// stack is the LIFO of currently-executing effects; its top is the
	// "current observer" a Signal.Read links against.
	stack []*Effect
	// onStack mirrors stack for O(1) cyclic-dependency membership checks.
	onStack map[*Effect]bool

	// pending is the dedup, insertion-ordered queue of effects awaiting
	// re-run during a flush.
	pending effectSet

	// batchDepth is the nesting depth of Batch calls; flushing of the
	// plain-effect phase is deferred while it is > 0.
	batchDepth int
	// flushing guards the whole of flush against re-entrancy: a write
	// performed from inside a running effect must merge into the single
	// active drain loop rather than starting a second, nested one.
	flushing bool
	// updating is true only while the memo phase of a flush is running. It
	// only marks that phase; nothing reads it, and re-entrancy is guarded by
	// flushing.
	updating bool
	// tracking is false only inside Untracked; reads made while false
	// install no dependency edge.
	tracking bool

	// effects is the flat registry of every live effect created through
	// this store, used by Unlink to do a bulk teardown.
	effects map[*Effect]bool
}

// NewStore creates a fresh, independent reactive universe.
func NewStore() *Store {
	return &Store{
		onStack:  make(map[*Effect]bool),
		tracking: true,
		effects:  make(map[*Effect]bool),
	}
}

// currentObserver returns the effect whose body is presently executing, or
// nil if none is (or tracking is suppressed).
func (s *Store) currentObserver() *Effect {
	if !s.tracking || len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

func (s *Store) pushObserver(e *Effect) {
	s.stack = append(s.stack, e)
	s.onStack[e] = true
}

func (s *Store) popObserver() {
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.onStack, top)
}

// scheduleAll enqueues every observer into the pending set and then
// invokes flush exactly once. Called on every signal write whose value
// actually changed, whether or not a batch is currently open — flush
// itself decides, by phase, what runs now versus later (§4.2).
func (s *Store) scheduleAll(observers []*Effect) {
	for _, e := range observers {
		s.pending.add(e)
	}
	s.flush()
}

// flush drains the pending set in two phases, memo-kind effects first
// (possibly looping, since a memo write can enqueue further memos), then
// plain effects — one at a time, popped from the live set — but only once
// no batch is open. See spec §4.2.
//
// The whole function is guarded by flushing, not just the memo phase. A
// write performed from inside a running plain effect re-enters flush
// (through scheduleAll) while this same call is still draining pending; that
// re-entrant call must be a no-op rather than a second concurrent drain, or
// an effect rescheduled by another effect's run would both be handed to the
// inner call's own pass AND still sit in the outer call's now-stale
// snapshot, running twice for one write. Popping the live set front-to-back
// (rather than taking one snapshot and ranging over it) means a reschedule
// that lands on an effect already pending is the dedup no-op effectSet.add
// already guarantees, and a reschedule of anything else is simply picked up
// by a later turn of this same loop.
func (s *Store) flush() {
	if s.flushing {
		return
	}
	s.flushing = true
	defer func() { s.flushing = false }()

	for {
		s.updating = true
		for {
			memos := s.pending.takeKind(KindMemo)
			if len(memos) == 0 {
				break
			}
			for _, m := range memos {
				m.update()
			}
		}
		s.updating = false

		if s.batchDepth > 0 {
			return
		}

		e, ok := s.pending.takeFront()
		if !ok {
			return
		}
		e.update()
	}
}

// Batch defers the plain-effect phase of every flush triggered inside fn
// until the outermost Batch call returns. Memo recomputation is never
// deferred: a memo read inside the batch still sees up-to-date values.
func (s *Store) Batch(fn func()) {
	s.batchDepth++
	defer func() {
		s.batchDepth--
		if s.batchDepth == 0 {
			s.flush()
		}
	}()
	fn()
}

// Untracked runs read with dependency tracking suppressed, then restores
// the previous tracking state — even if read panics.
func (s *Store) Untracked(read func() any) any {
	prev := s.tracking
	s.tracking = false
	defer func() { s.tracking = prev }()
	return read()
}

// register adds e to the bulk-teardown registry.
func (s *Store) register(e *Effect) {
	s.effects[e] = true
}

func (s *Store) unregister(e *Effect) {
	delete(s.effects, e)
}

// Unlink tears down every live effect created through this store. Safe to
// call more than once; safe after teardown, signals become plain storage
// with no observers left to notify.
func (s *Store) Unlink() {
	for e := range s.effects {
		e.Cancel()
	}
}
