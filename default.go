package reactor

import (
	"sync"

	"github.com/petermattis/goid"
)

// defaultStores holds one process-wide Store per goroutine, created lazily
// the first time that goroutine calls Default(). This mirrors the teacher
// package's goid-keyed active-owner map: a goroutine-scoped default rather
// than a single global, since an effect's observer stack is inherently
// per-goroutine.
var defaultStores sync.Map // goid.Get() -> *Store

// Default returns the calling goroutine's process-wide Store, creating it on
// first use. Library code that doesn't want to thread a *Store through every
// call can reach for this; anything that cares about isolation (tests,
// independently-lifecycled subsystems) should call NewStore instead.
func Default() *Store {
	gid := goid.Get()
	if s, ok := defaultStores.Load(gid); ok {
		return s.(*Store)
	}
	s := NewStore()
	defaultStores.Store(gid, s)
	return s
}
