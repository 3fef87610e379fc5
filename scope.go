package reactivity

import (
	"fmt"
	"runtime"
)

type ScopeOption func(*Scope)

// WithRetracking makes the scope re-collect an effect's dependencies on
// every run instead of fixing them after the first: before a notified effect
// re-runs, its old edges are pruned and it is pushed back onto the tracking
// stack, so a run that takes a new branch records the cells it actually
// read. This is a different contract from the default mode, not a faster
// version of it.
func WithRetracking() ScopeOption {
	return func(sc *Scope) {
		sc.retrack = true
	}
}

// WithReentrancyLimit bounds how deeply one effect may be re-entered during
// synchronous notification. A dependency cycle trips the limit and panics
// with *CycleError instead of exhausting the call stack. Zero, the default,
// leaves recursion unguarded.
func WithReentrancyLimit(limit int32) ScopeOption {
	return func(sc *Scope) {
		sc.reentryLimit = limit
	}
}

// Scope owns the active-effect stack and the cell-to-effects dependency map;
// it is the unit within which dependency tracking occurs. The stack and map
// are each their own lock domain and are only ever locked for the brief
// push/pop or lookup/insert, never across a callback.
type Scope struct {
	id     uint64
	parent *Scope
	ids    *idSource
	stack  *effectStack
	deps   *depTable

	retrack      bool
	reentryLimit int32
}

// NewScope returns a root scope with an empty stack, an empty dependency map
// and no parent.
func NewScope(opts ...ScopeOption) *Scope {
	sc := &Scope{
		id:    scopeIDs.Add(1),
		ids:   &idSource{},
		stack: &effectStack{},
		deps:  newDepTable(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// CreateChild returns a scope whose parent is sc. The child has its own
// stack and dependency map; nothing is inherited or merged across the
// lineage, which exists for structure only. Cell and effect ids keep
// counting from the lineage's shared generators.
func (sc *Scope) CreateChild() *Scope {
	return &Scope{
		id:           scopeIDs.Add(1),
		parent:       sc,
		ids:          sc.ids,
		stack:        &effectStack{},
		deps:         newDepTable(),
		retrack:      sc.retrack,
		reentryLimit: sc.reentryLimit,
	}
}

// Parent returns the parent scope, or nil for a root.
func (sc *Scope) Parent() *Scope {
	return sc.parent
}

// ID returns the scope's process-unique identity.
func (sc *Scope) ID() uint64 {
	return sc.id
}

func (sc *Scope) String() string {
	return fmt.Sprintf("Scope(%d)", sc.id)
}

// Reactive constructs a cell wired into sc's dependency tracking: reading it
// while an effect is on the stack records an edge from the cell to that
// effect, and changing its value re-invokes every recorded effect before
// Update returns.
func Reactive[T any](sc *Scope, value T, opts ...CellOption[T]) *Cell[T] {
	c := newCell(sc.ids.nextCell(), value, opts...)
	c.AddObserver(tracker[T]{sc: sc, cellID: c.id})
	runtime.SetFinalizer(c, func(c *Cell[T]) {
		sc.deps.retire(c.id)
	})
	return c
}

// Effect wraps fn in a new effect, pushes it onto the stack and runs it once
// synchronously; every cell read during this initial run records the effect
// as a subscriber. The stack lock is not held while fn executes, so fn may
// itself call Effect or touch cells freely.
//
// Dependencies discovered here are final unless the scope retracks: a
// notified effect is re-invoked directly, not pushed back onto the stack.
func Effect(sc *Scope, fn func()) {
	e := newEffect(sc.ids.nextEffect(), fn)
	sc.stack.push(e)
	defer sc.stack.pop()
	e.call()
}

// tracker wires one cell into its scope's bookkeeping. It is the read/write
// capability the scope attaches to every cell it creates.
type tracker[T any] struct {
	sc     *Scope
	cellID uint64
}

// OnRead records "the top-of-stack effect depends on me". A read outside any
// effect records nothing.
func (t tracker[T]) OnRead(T) {
	top := t.sc.stack.top()
	if top == nil {
		return
	}
	t.sc.deps.record(t.cellID, top)
}

// OnWrite re-invokes every subscribed effect in-line. Iteration order over
// the set is unspecified.
func (t tracker[T]) OnWrite(T, T) {
	for _, e := range t.sc.deps.subscribers(t.cellID) {
		t.sc.invoke(e)
	}
}

func (sc *Scope) invoke(e *effect) {
	if sc.reentryLimit > 0 {
		depth := e.running.Add(1)
		defer e.running.Add(-1)
		if depth > sc.reentryLimit {
			panic(&CycleError{EffectID: e.id, Limit: sc.reentryLimit})
		}
	}
	if sc.retrack {
		sc.deps.unlink(e)
		sc.stack.push(e)
		defer sc.stack.pop()
	}
	e.call()
}
