package reactor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffect(t *testing.T) {
	t.Run("runs immediately and again on change, cleanup runs first", func(t *testing.T) {
		store := NewStore()
		var log []string

		count := NewSignal(store, 0)
		log = append(log, fmt.Sprintf("%d", count.Read()))

		Effect(store, func(ctx *Context) func() {
			log = append(log, fmt.Sprintf("changed %d", count.Read()))
			return func() {
				log = append(log, "cleanup")
			}
		})

		count.Write(10)
		log = append(log, fmt.Sprintf("%d", count.Read()))
		count.Write(20)

		assert.Equal(t, []string{
			"0",
			"changed 0",
			"cleanup",
			"changed 10",
			"10",
			"cleanup",
			"changed 20",
		}, log)
	})

	t.Run("an effect writing to another signal chains through one flush", func(t *testing.T) {
		store := NewStore()
		var log []string

		count := NewSignal(store, 0)
		double := NewSignal(store, 0)

		Effect(store, func(ctx *Context) func() {
			double.Write(count.Read() * 2)
			return nil
		})

		Effect(store, func(ctx *Context) func() {
			log = append(log, fmt.Sprintf("changed %d", double.Read()))
			return func() {
				log = append(log, "cleanup")
			}
		})

		count.Write(10)

		assert.Equal(t, []string{
			"changed 0",
			"cleanup",
			"changed 20",
		}, log)
	})

	t.Run("nested effects run and clean up independently", func(t *testing.T) {
		store := NewStore()
		var log []string

		count := NewSignal(store, 0)

		Effect(store, func(ctx *Context) func() {
			count.Read()
			log = append(log, "running")

			Effect(store, func(ctx *Context) func() {
				log = append(log, "running nested")
				return func() {
					log = append(log, "cleanup nested")
				}
			})

			return func() {
				log = append(log, "cleanup")
			}
		})

		count.Write(1)

		assert.Equal(t, []string{
			"running",
			"running nested",
			"cleanup",
			"running",
			"running nested",
		}, log)
	})

	t.Run("dependencies are re-collected on every run", func(t *testing.T) {
		store := NewStore()
		useA := NewSignal(store, true)
		a := NewSignal(store, "a")
		b := NewSignal(store, "b")
		runs := 0

		Effect(store, func(ctx *Context) func() {
			runs++
			if useA.Read() {
				a.Read()
			} else {
				b.Read()
			}
			return nil
		})
		assert.Equal(t, 1, runs)

		useA.Write(false)
		assert.Equal(t, 2, runs)

		// a is no longer a dependency; writing it must not re-run the effect.
		a.Write("a2")
		assert.Equal(t, 2, runs)

		b.Write("b2")
		assert.Equal(t, 3, runs)
	})

	t.Run("external cancel handle stops further runs and tears down cleanup", func(t *testing.T) {
		store := NewStore()
		count := NewSignal(store, 0)
		var log []string

		cancel := Effect(store, func(ctx *Context) func() {
			log = append(log, fmt.Sprintf("run %d", count.Read()))
			return func() {
				log = append(log, "cleanup")
			}
		})

		count.Write(1)
		cancel()
		count.Write(2)

		assert.Equal(t, []string{
			"run 0",
			"cleanup",
			"run 1",
			"cleanup",
		}, log)
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		store := NewStore()
		cancel := Effect(store, func(ctx *Context) func() { return nil })
		cancel()
		assert.NotPanics(t, func() { cancel() })
	})

	t.Run("in-body ctx.Cancel defers teardown until after the body returns", func(t *testing.T) {
		store := NewStore()
		count := NewSignal(store, 0)
		runs := 0

		Effect(store, func(ctx *Context) func() {
			runs++
			if count.Read() == 1 {
				ctx.Cancel()
			}
			return nil
		})

		count.Write(1)
		count.Write(2)

		assert.Equal(t, 2, runs, "the effect must not observe any write after its own cancellation")
	})

	t.Run("an effect chain never double-runs a diamond-shaped dependent", func(t *testing.T) {
		store := NewStore()
		a := NewSignal(store, 0)
		b := NewSignal(store, 0)
		runsE3 := 0

		// E1 reads a and writes b.
		Effect(store, func(ctx *Context) func() {
			b.Write(a.Read())
			return nil
		})
		// E3 reads both a and b, scheduled by the same write to a that also
		// schedules E1.
		Effect(store, func(ctx *Context) func() {
			a.Read()
			b.Read()
			runsE3++
			return nil
		})
		assert.Equal(t, 1, runsE3)

		a.Write(1)

		assert.Equal(t, 2, runsE3, "E3 must run exactly once per flush even though E1's write to b reschedules it mid-drain")
	})

	t.Run("a panicking cleanup is logged, not propagated", func(t *testing.T) {
		store := NewStore()
		count := NewSignal(store, 0)
		ran := false

		Effect(store, func(ctx *Context) func() {
			count.Read()
			return func() {
				panic("boom")
			}
		})

		assert.NotPanics(t, func() {
			count.Write(1)
			ran = true
		})
		assert.True(t, ran)
	})
}
