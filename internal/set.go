package internal

import "slices"

// effectSet is an insertion-ordered, identity-deduplicated collection of
// effects. It backs both a Signal's observer set and the Store's pending
// set: both need "no duplicate edges" semantics plus a stable iteration
// order (first-pended order, per the flush contract).
type effectSet struct {
	items []*Effect
}

// add appends e if it is not already present. Reports whether it was added.
func (s *effectSet) add(e *Effect) bool {
	if slices.Contains(s.items, e) {
		return false
	}
	s.items = append(s.items, e)
	return true
}

func (s *effectSet) remove(e *Effect) bool {
	i := slices.Index(s.items, e)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

func (s *effectSet) contains(e *Effect) bool {
	return slices.Contains(s.items, e)
}

func (s *effectSet) len() int {
	return len(s.items)
}

// snapshot returns a clone safe to range over while the original mutates.
func (s *effectSet) snapshot() []*Effect {
	return slices.Clone(s.items)
}

// takeKind removes and returns every item of the given kind, preserving the
// relative order of both the removed and the remaining items.
func (s *effectSet) takeKind(kind EffectKind) []*Effect {
	var taken, kept []*Effect
	for _, e := range s.items {
		if e.kind == kind {
			taken = append(taken, e)
		} else {
			kept = append(kept, e)
		}
	}
	s.items = kept
	return taken
}

// takeFront removes and returns the first pending item, in insertion order,
// or reports false if the set is empty. Used to drain the plain-effect phase
// of a flush one item at a time off the live set, rather than off a
// snapshot, so an effect rescheduled mid-drain merges into the same pass
// instead of running again from a stale copy.
func (s *effectSet) takeFront() (*Effect, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	e := s.items[0]
	s.items = s.items[1:]
	return e, true
}
