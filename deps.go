package reactivity

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// depTable maps cell identity to the set of effects that read that cell
// while on the effect stack. Keys are plain cell ids; liveness is explicit
// rather than weak-reference based: a finalizer on each scoped cell queues
// its id on the retired list, and table operations sweep the list lazily, so
// stale entries vanish once the cell dies.
//
// byEffect is the reverse index (effect id to the cell ids it subscribes
// to); retracking scopes use it to prune an effect's old edges before a
// re-run.
type depTable struct {
	mu       sync.RWMutex
	byCell   map[uint64]mapset.Set[*effect]
	byEffect map[uint64]mapset.Set[uint64]

	retiredMu sync.Mutex
	retired   []uint64
}

func newDepTable() *depTable {
	return &depTable{
		byCell:   map[uint64]mapset.Set[*effect]{},
		byEffect: map[uint64]mapset.Set[uint64]{},
	}
}

// record adds the edge cell -> e. Sets only grow; there is no per-run
// pruning outside of retracking mode.
func (t *depTable) record(cellID uint64, e *effect) {
	t.sweep()
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.byCell[cellID]
	if !ok {
		set = mapset.NewSet[*effect]()
		t.byCell[cellID] = set
	}
	set.Add(e)

	cells, ok := t.byEffect[e.id]
	if !ok {
		cells = mapset.NewSet[uint64]()
		t.byEffect[e.id] = cells
	}
	cells.Add(cellID)
}

// subscribers returns a snapshot of the effects subscribed to the cell. The
// table lock is released before the caller invokes anything, and iteration
// order over the set is unspecified.
func (t *depTable) subscribers(cellID uint64) []*effect {
	t.sweep()
	t.mu.RLock()
	set, ok := t.byCell[cellID]
	t.mu.RUnlock()
	if !ok {
		return nil
	}
	return set.ToSlice()
}

// unlink removes every edge pointing at e, in preparation for a tracked
// re-run that will re-collect them.
func (t *depTable) unlink(e *effect) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cells, ok := t.byEffect[e.id]
	if !ok {
		return
	}
	for cellID := range cells.Iter() {
		if set, ok := t.byCell[cellID]; ok {
			set.Remove(e)
			if set.Cardinality() == 0 {
				delete(t.byCell, cellID)
			}
		}
	}
	delete(t.byEffect, e.id)
}

// retire queues a dead cell's id for lazy removal. Called from a finalizer,
// so it must not take the table lock.
func (t *depTable) retire(cellID uint64) {
	t.retiredMu.Lock()
	t.retired = append(t.retired, cellID)
	t.retiredMu.Unlock()
}

func (t *depTable) sweep() {
	t.retiredMu.Lock()
	dead := t.retired
	t.retired = nil
	t.retiredMu.Unlock()
	if len(dead) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, cellID := range dead {
		set, ok := t.byCell[cellID]
		if !ok {
			continue
		}
		for e := range set.Iter() {
			if cells, ok := t.byEffect[e.id]; ok {
				cells.Remove(cellID)
				if cells.Cardinality() == 0 {
					delete(t.byEffect, e.id)
				}
			}
		}
		delete(t.byCell, cellID)
	}
}

// tracked reports whether the cell currently has an entry. Test hook.
func (t *depTable) tracked(cellID uint64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.byCell[cellID]
	return ok
}
