package internal

// uninitialized is the sentinel value a memo's hidden signal starts with,
// so its very first Write always goes through regardless of the supplied
// equality predicate.
type uninitialized struct{}

// NewMemo composes a hidden signal with a memo-kind effect whose body
// writes compute()'s result into it (spec §4.4). Because the writer is an
// effect, the signal's equality short-circuit naturally drops a
// recomputation that yields the same value — no downstream notification.
func (s *Store) NewMemo(compute func() any, equals func(a, b any) bool, name string) *Signal {
	sentinel := uninitialized{}

	sig := s.NewSignal(sentinel, func(a, b any) bool {
		if _, stillUninit := a.(uninitialized); stillUninit {
			return false
		}
		return equals(a, b)
	})

	s.CreateEffect(KindMemo, name, func(ctx *RunContext) func() {
		sig.Write(compute())
		return nil
	}, nil)

	return sig
}
