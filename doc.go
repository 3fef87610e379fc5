// Package reactivity is a fine-grained reactive state engine: mutable cells
// that notify dependent effects whenever their value changes, with dependency
// edges discovered implicitly by observing which cells an effect reads while
// it runs. There is no subscription API; calling code writes
//
//	sc := reactivity.NewScope()
//	count := reactivity.Reactive(sc, 0)
//	total := reactivity.Reactive(sc, 0)
//	reactivity.Effect(sc, func() {
//		total.Update(func(int) int { return count.Value() + 10 })
//	})
//	count.Update(func(c int) int { return c + 1 })
//
// and every effect that previously read count re-runs before Update returns.
// All execution is synchronous on the calling goroutine; there is no
// scheduler, no batching and no effect disposal.
//
// An Update transform runs while its cell's exclusive lock is held, so the
// transform must not call Value or Update on that same cell; doing so
// deadlocks. Read the cell before the Update call and use the value the
// transform is handed instead.
//
// Dependencies are fixed after an effect's first run. Re-invoked effects are
// called directly, not pushed back onto the tracking stack, so a later run
// that takes a different branch neither records the newly read cell nor
// prunes an old one. This is a deliberate property of the engine; scopes
// created with WithRetracking re-collect dependencies on every run instead.
//
// The engine has no cycle detection. An effect that transitively writes a
// cell it depends on recurses until the call stack is exhausted, unless the
// scope was created with WithReentrancyLimit, which turns runaway recursion
// into a CycleError panic.
package reactivity
