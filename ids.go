package reactivity

import "sync/atomic"

// idSource hands out the monotonically increasing cell and effect ids for one
// scope lineage. A root scope owns one and its children share it, so two
// independent reactive graphs in the same process do not share an id space.
type idSource struct {
	cells   atomic.Uint64
	effects atomic.Uint64
}

func (s *idSource) nextCell() uint64 {
	return s.cells.Add(1)
}

func (s *idSource) nextEffect() uint64 {
	return s.effects.Add(1)
}

// defaultIDs serves cells created outside any scope via NewCell.
var defaultIDs idSource

// Scope ids are process wide; a root scope has no enclosing engine to own
// the counter.
var scopeIDs atomic.Uint64
