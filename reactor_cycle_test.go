package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCyclicDependencyDetection(t *testing.T) {
	t.Run("a self-referential effect panics with CyclicDependencyError", func(t *testing.T) {
		store := NewStore()
		count := NewSignal(store, 0)

		assert.PanicsWithValue(t, &CyclicDependencyError{Name: "self"}, func() {
			Effect(store, func(ctx *Context) func() {
				if count.Read() == 0 {
					count.Write(1)
				}
				return nil
			}, WithName("self"))
		})
	})

	t.Run("two mutually writing effects panic rather than loop forever", func(t *testing.T) {
		store := NewStore()
		x := NewSignal(store, 0)
		y := NewSignal(store, 0)

		assert.Panics(t, func() {
			Effect(store, func(ctx *Context) func() {
				if x.Read() == 0 {
					y.Write(y.Read() + 1)
				}
				return nil
			})

			Effect(store, func(ctx *Context) func() {
				if y.Read() > 0 {
					x.Write(x.Read() + 1)
				}
				return nil
			})

			x.Write(1)
		})
	})

	t.Run("the error message includes the effect's name when given", func(t *testing.T) {
		err := &CyclicDependencyError{Name: "ticker"}
		assert.Contains(t, err.Error(), "ticker")
	})

	t.Run("the error message is still sensible when unnamed", func(t *testing.T) {
		err := &CyclicDependencyError{}
		assert.NotEmpty(t, err.Error())
	})
}
