package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemo(t *testing.T) {
	t.Run("computes lazily-eager and caches until a dependency changes", func(t *testing.T) {
		store := NewStore()
		a := NewSignal(store, 1)
		b := NewSignal(store, 2)
		computations := 0

		sum := Memo(store, func() int {
			computations++
			return a.Read() + b.Read()
		})

		assert.Equal(t, 1, computations, "the memo's backing effect runs once at creation")
		assert.Equal(t, 3, sum())

		a.Write(10)
		assert.Equal(t, 2, computations)
		assert.Equal(t, 12, sum())
	})

	t.Run("a batched double-write recomputes the memo once per write", func(t *testing.T) {
		store := NewStore()
		a := NewSignal(store, 1)
		b := NewSignal(store, 2)
		computations := 0

		sum := Memo(store, func() int {
			computations++
			return a.Read() + b.Read()
		})
		computations = 0

		store.Batch(func() {
			a.Write(10)
			b.Write(20)
		})

		assert.Equal(t, 2, computations, "memo recomputation is not deferred by a batch")
		assert.Equal(t, 30, sum())
	})

	t.Run("an effect reading a memo always sees the post-flush value", func(t *testing.T) {
		store := NewStore()
		a := NewSignal(store, 1)

		doubled := Memo(store, func() int { return a.Read() * 2 })

		var observed []int
		Effect(store, func(ctx *Context) func() {
			observed = append(observed, doubled())
			return nil
		})

		a.Write(5)

		assert.Equal(t, []int{2, 10}, observed)
	})

	t.Run("recomputing to the same value does not notify downstream effects", func(t *testing.T) {
		store := NewStore()
		sign := NewSignal(store, 3)

		isPositive := Memo(store, func() bool { return sign.Read() > 0 })

		runs := 0
		Effect(store, func(ctx *Context) func() {
			isPositive()
			runs++
			return nil
		})
		assert.Equal(t, 1, runs)

		sign.Write(7) // still positive: memo recomputes but its value is unchanged
		assert.Equal(t, 1, runs)

		sign.Write(-1)
		assert.Equal(t, 2, runs)
	})

	t.Run("diamond dependency settles to a single consistent value", func(t *testing.T) {
		store := NewStore()
		count := NewSignal(store, 1)

		double := Memo(store, func() int { return count.Read() * 2 })
		triple := Memo(store, func() int { return count.Read() * 3 })

		var sums []int
		Effect(store, func(ctx *Context) func() {
			sums = append(sums, double()+triple())
			return nil
		})

		count.Write(2)

		assert.Equal(t, []int{5, 10}, sums)
	})
}
