package reactivity

import (
	"sync"
	"sync/atomic"
)

// effect wraps a zero-argument closure with an identity so it can live in
// sets. Effects are never disposed: once subscribed they stay subscribed for
// the lifetime of every cell they depend on.
type effect struct {
	id uint64
	fn func()

	// re-entry depth, consulted only by scopes with a reentrancy limit
	running atomic.Int32
}

func newEffect(id uint64, fn func()) *effect {
	return &effect{id: id, fn: fn}
}

func (e *effect) call() {
	e.fn()
}

// effectStack is the stack of currently executing effects; its top is "who
// is reading right now". The lock guards only push, pop and top, never a
// running effect body, so bodies may register nested effects or touch cells
// without deadlocking on the scope's own bookkeeping.
type effectStack struct {
	mu    sync.Mutex
	items []*effect
}

func (s *effectStack) push(e *effect) {
	s.mu.Lock()
	s.items = append(s.items, e)
	s.mu.Unlock()
}

func (s *effectStack) pop() {
	s.mu.Lock()
	s.items = s.items[:len(s.items)-1]
	s.mu.Unlock()
}

func (s *effectStack) top() *effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}
