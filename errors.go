package reactivity

import "fmt"

// PoisonedError is the value panicked by any operation on a cell whose state
// may be torn: a transform passed to Update panicked while the cell's
// exclusive lock was held. The panic that poisoned the cell propagates to its
// caller unchanged; every operation after that fails with this error instead.
type PoisonedError struct {
	Resource string
	ID       uint64
}

func (e *PoisonedError) Error() string {
	return fmt.Sprintf("reactivity: %s %d poisoned by an earlier panic", e.Resource, e.ID)
}

// CycleError is the value panicked by a scope created with
// WithReentrancyLimit when one effect is re-entered more deeply than the
// configured limit, which only happens when the dependency graph has a cycle.
type CycleError struct {
	EffectID uint64
	Limit    int32
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("reactivity: cycle detected, effect %d re-entered more than %d times", e.EffectID, e.Limit)
}
