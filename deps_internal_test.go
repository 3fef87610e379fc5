package reactivity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// a retired cell's entry vanishes on the next table operation
func TestRetiredCellIsSweptLazily(t *testing.T) {
	sc := NewScope()
	r := Reactive(sc, 0)
	Effect(sc, func() { r.Value() })
	require.True(t, sc.deps.tracked(r.id))

	sc.deps.retire(r.id)
	require.True(t, sc.deps.tracked(r.id), "retire alone must not touch the table")

	// any lookup sweeps the retired list
	assert.Nil(t, sc.deps.subscribers(r.id))
	assert.False(t, sc.deps.tracked(r.id))
	assert.Empty(t, sc.deps.byEffect, "reverse index is pruned with the entry")
}

func TestUnlinkRemovesEveryEdge(t *testing.T) {
	sc := NewScope()
	a := Reactive(sc, 0)
	b := Reactive(sc, 0)
	Effect(sc, func() {
		a.Value()
		b.Value()
	})
	require.True(t, sc.deps.tracked(a.id))
	require.True(t, sc.deps.tracked(b.id))

	e := sc.deps.subscribers(a.id)[0]
	sc.deps.unlink(e)
	assert.False(t, sc.deps.tracked(a.id))
	assert.False(t, sc.deps.tracked(b.id))
	assert.Empty(t, sc.deps.byEffect)
}

// cell and effect ids count per lineage and survive into children; scope ids
// are process wide
func TestIDGenerators(t *testing.T) {
	sc := NewScope()
	a := Reactive(sc, 0)
	b := Reactive(sc, 0)
	assert.Equal(t, a.id+1, b.id)

	child := sc.CreateChild()
	c := Reactive(child, 0)
	assert.Equal(t, b.id+1, c.id, "children share the lineage's cell counter")

	other := NewScope()
	d := Reactive(other, 0)
	assert.Equal(t, uint64(1), d.id, "independent graphs do not share an id space")

	assert.Greater(t, other.id, sc.id)
}

// the stack is balanced around a run and empty again afterwards
func TestEffectStackBalance(t *testing.T) {
	sc := NewScope()
	var depthDuringRun int
	Effect(sc, func() {
		sc.stack.mu.Lock()
		depthDuringRun = len(sc.stack.items)
		sc.stack.mu.Unlock()
	})
	assert.Equal(t, 1, depthDuringRun)
	assert.Nil(t, sc.stack.top())
}
