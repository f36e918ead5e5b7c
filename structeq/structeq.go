// Package structeq implements the structural-equality helper the reactor
// core uses as the default signal/memo change predicate. It is deliberately
// small: a same-identity fast path, a same-type check, then per-type rules
// for ordered sequences, keyed maps, set-shaped maps, regexes, "value-of"
// types, and generic structs, all guarded by a cycle-safe comparison cache.
package structeq

import (
	"reflect"
	"regexp"
	"strconv"
	"time"
)

// Comparator compares two leaf (non-container, non-struct) values. Strict
// and Loose are the two built-ins; callers may supply their own.
type Comparator func(a, b any) bool

// Options configures a comparison.
type Options struct {
	// Comparator compares leaf values once container/struct recursion
	// bottoms out. Defaults to Strict.
	Comparator Comparator
	// MaxDepth bounds recursion to that many levels of descent; 0 means
	// unbounded. A pair reached at that depth is compared with Comparator
	// instead of being recursed into — not an error, a silent fallback.
	MaxDepth int
}

// EqualValue lets a type opt out of field-by-field comparison in favour of
// comparing a derived value instead — structeq's analogue of "objects with
// a non-default value-of accessor".
type EqualValue interface {
	EqualValue() any
}

// Strict is the exact-identity leaf comparator, with NaN treated as equal
// to NaN (unlike Go's own `==`, which never considers NaN equal to
// anything, including itself).
func Strict(a, b any) bool {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return strictFloatEqual(af, bf)
		}
		return false
	}
	return a == b
}

// Loose is a coercion-aware leaf comparator: numeric kinds compare by
// value across width/signedness, and a string is compared against a
// numeric value by parsing it. NaN is still equal to NaN.
func Loose(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return strictFloatEqual(af, bf)
		}
		if bs, bok := b.(string); bok {
			if bf, ok := parseFloat(bs); ok {
				return strictFloatEqual(af, bf)
			}
		}
		return false
	}
	if as, ok := a.(string); ok {
		if _, bok := asFloat(b); bok {
			return Loose(b, as)
		}
	}
	if ab, ok := a.(bool); ok {
		return Loose(boolToFloat(ab), b)
	}
	if bb, ok := b.(bool); ok {
		return Loose(a, boolToFloat(bb))
	}
	return Strict(a, b)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func strictFloatEqual(a, b float64) bool {
	if a != a && b != b { // both NaN
		return true
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Shallow compares one level with Strict as the leaf comparator: container
// elements and struct fields are compared with Strict rather than recursed
// into.
func Shallow(a, b any) bool {
	return ShallowWith(a, b, Options{})
}

// ShallowWith is Shallow with custom options; MaxDepth is clamped to 1.
func ShallowWith(a, b any, opts Options) bool {
	opts.MaxDepth = 1
	return compareTop(a, b, opts)
}

// Deep recursively compares a and b with Strict as the leaf comparator and
// no depth limit.
func Deep(a, b any) bool {
	return DeepWith(a, b, Options{})
}

// DeepWith is Deep with custom options.
func DeepWith(a, b any, opts Options) bool {
	return compareTop(a, b, opts)
}

func compareTop(a, b any, opts Options) bool {
	if opts.Comparator == nil {
		opts.Comparator = Strict
	}
	st := &state{cmp: opts.Comparator, maxDepth: opts.MaxDepth, inProgress: map[pairKey]bool{}}
	return st.equal(a, b, 0)
}

// pairKey identifies an in-progress (left, right) comparison by the
// pointer-like identity of both operands, for the cycle-safety cache.
type pairKey struct{ left, right uintptr }

type state struct {
	cmp        Comparator
	maxDepth   int
	inProgress map[pairKey]bool
}

func (st *state) equal(a, b any, depth int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)

	// Same-identity fast path for anything pointer-like.
	if pa, ok := pointerIdentity(va); ok {
		if pb, ok := pointerIdentity(vb); ok && pa == pb {
			return true
		}
	}

	if va.Type() != vb.Type() {
		return false
	}

	if st.maxDepth > 0 && depth >= st.maxDepth {
		return st.cmp(a, b)
	}

	if ev, ok := a.(EqualValue); ok {
		return st.equal(ev.EqualValue(), b.(EqualValue).EqualValue(), depth+1)
	}

	if ta, ok := a.(time.Time); ok {
		return ta.Equal(b.(time.Time))
	}

	if ra, ok := a.(*regexp.Regexp); ok {
		return ra.String() == b.(*regexp.Regexp).String()
	}

	if cyclic, done, result := st.checkCycle(va, vb); cyclic {
		if done {
			return result
		}
		defer st.clearCycle(va, vb)
	}

	switch va.Kind() {
	case reflect.Array, reflect.Slice:
		return st.equalSequence(va, vb, depth)
	case reflect.Map:
		if isSetShaped(va.Type()) {
			return st.equalSet(va, vb)
		}
		return st.equalMap(va, vb, depth)
	case reflect.Ptr:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return st.equal(va.Elem().Interface(), vb.Elem().Interface(), depth+1)
	case reflect.Struct:
		return st.equalStruct(va, vb, depth)
	default:
		return st.cmp(a, b)
	}
}

// pointerIdentity returns an identity key for kinds where "same identity"
// is meaningful (spec's same-identity fast path), and whether v has one.
func pointerIdentity(v reflect.Value) (uintptr, bool) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if v.IsNil() {
			return 0, false
		}
		return v.Pointer(), true
	default:
		return 0, false
	}
}

// checkCycle reports whether (va, vb) has a pointer-identity pair worth
// guarding, whether the cache already has a verdict (done), and that
// verdict. An in-progress pair short-circuits to not-equal — conservative
// and deterministic, per spec.
func (st *state) checkCycle(va, vb reflect.Value) (cyclic, done, result bool) {
	pa, aok := pointerIdentity(va)
	pb, bok := pointerIdentity(vb)
	if !aok || !bok {
		return false, false, false
	}
	key := pairKey{pa, pb}
	if st.inProgress[key] {
		return true, true, false
	}
	st.inProgress[key] = true
	return true, false, false
}

func (st *state) clearCycle(va, vb reflect.Value) {
	pa, _ := pointerIdentity(va)
	pb, _ := pointerIdentity(vb)
	delete(st.inProgress, pairKey{pa, pb})
}

func (st *state) equalSequence(va, vb reflect.Value, depth int) bool {
	if va.Len() != vb.Len() {
		return false
	}
	for i := 0; i < va.Len(); i++ {
		if !st.equal(va.Index(i).Interface(), vb.Index(i).Interface(), depth+1) {
			return false
		}
	}
	return true
}

// isSetShaped recognises Go's idiomatic map-as-set encoding: a map whose
// value type carries no information (struct{} or bool), used throughout
// the ecosystem as a membership-only collection.
func isSetShaped(t reflect.Type) bool {
	elem := t.Elem()
	return elem.Kind() == reflect.Struct && elem.NumField() == 0 || elem.Kind() == reflect.Bool
}

// equalSet compares two set-shaped maps by key membership only — no
// recursive comparison of the (uninformative) values, a deliberate choice
// mirrored by the equivalent rule for real sets in other hosts.
func (st *state) equalSet(va, vb reflect.Value) bool {
	if va.Len() != vb.Len() {
		return false
	}
	iter := va.MapRange()
	for iter.Next() {
		if !vb.MapIndex(iter.Key()).IsValid() {
			return false
		}
	}
	return true
}

func (st *state) equalMap(va, vb reflect.Value, depth int) bool {
	if va.Len() != vb.Len() {
		return false
	}
	iter := va.MapRange()
	for iter.Next() {
		bv := vb.MapIndex(iter.Key())
		if !bv.IsValid() {
			return false
		}
		if !st.equal(iter.Value().Interface(), bv.Interface(), depth+1) {
			return false
		}
	}
	return true
}

func (st *state) equalStruct(va, vb reflect.Value, depth int) bool {
	t := va.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if !st.equal(va.Field(i).Interface(), vb.Field(i).Interface(), depth+1) {
			return false
		}
	}
	return true
}
