package reactivity

import (
	"fmt"
	"reflect"
	"sync"
)

// CellObserver receives the read and write notifications of a single cell.
// OnRead fires on every Value call with the current value. OnWrite fires
// after an Update actually changed the value, with the new and old values.
type CellObserver[T any] interface {
	OnRead(value T)
	OnWrite(next, prev T)
}

// ObserverFuncs adapts a pair of functions to a CellObserver. Either field
// may be nil.
type ObserverFuncs[T any] struct {
	Read  func(value T)
	Write func(next, prev T)
}

func (o ObserverFuncs[T]) OnRead(value T) {
	if o.Read != nil {
		o.Read(value)
	}
}

func (o ObserverFuncs[T]) OnWrite(next, prev T) {
	if o.Write != nil {
		o.Write(next, prev)
	}
}

// EqualsFunc reports whether two values of T are the same for the purposes
// of Update's no-op short circuit.
type EqualsFunc[T any] func(prev, next T) bool

type CellOption[T any] func(*Cell[T])

// WithEquals replaces the default reflect.DeepEqual comparison.
func WithEquals[T any](equals EqualsFunc[T]) CellOption[T] {
	return func(c *Cell[T]) {
		c.equals = equals
	}
}

// Cell is a mutable value container that reports reads and writes to its
// observers. Copies of a *Cell share identity and storage; equality of
// handles is by id, never by value.
type Cell[T any] struct {
	id     uint64
	equals EqualsFunc[T]

	// value and observers form one lock domain. The lock is never held
	// across an OnWrite invocation so that notified effects are free to
	// re-enter this cell.
	mu        sync.RWMutex
	value     T
	observers []CellObserver[T]
	poisoned  bool
}

// NewCell returns a cell holding value, observed by nobody. Cells created
// this way take part in no dependency tracking; use Reactive to create a
// cell wired into a scope.
func NewCell[T any](value T, opts ...CellOption[T]) *Cell[T] {
	return newCell(defaultIDs.nextCell(), value, opts...)
}

func newCell[T any](id uint64, value T, opts ...CellOption[T]) *Cell[T] {
	c := &Cell[T]{
		id:     id,
		value:  value,
		equals: func(prev, next T) bool { return reflect.DeepEqual(prev, next) },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the cell's process-unique identity.
func (c *Cell[T]) ID() uint64 {
	return c.id
}

// Value invokes every read observer in registration order with the current
// value, then returns a copy of it. Read observers only inspect state, so
// the shared lock is held across them.
func (c *Cell[T]) Value() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.poisoned {
		panic(&PoisonedError{Resource: "cell", ID: c.id})
	}
	for _, o := range c.observers {
		o.OnRead(c.value)
	}
	return c.value
}

// Update computes f(current) under the exclusive lock. If the candidate is
// unequal to the current value it is stored and every write observer fires,
// in registration order, with (next, prev). If the candidate is equal the
// cell is untouched and no observer fires; value-equal writes never cause
// spurious re-runs downstream.
//
// The lock is released before observers run, so a notified effect may read
// or write this same cell without deadlocking. f itself runs under the
// exclusive lock, so calling Value or Update on the same cell from inside f
// deadlocks. A panic inside f, or inside the equality comparison, poisons
// the cell: the panic propagates, and every later operation fails with
// *PoisonedError.
func (c *Cell[T]) Update(f func(T) T) {
	c.mu.Lock()
	if c.poisoned {
		c.mu.Unlock()
		panic(&PoisonedError{Resource: "cell", ID: c.id})
	}
	prev := c.value

	var next T
	var same bool
	func() {
		defer func() {
			if r := recover(); r != nil {
				c.poisoned = true
				c.mu.Unlock()
				panic(r)
			}
		}()
		next = f(prev)
		same = c.equals(prev, next)
	}()

	if same {
		c.mu.Unlock()
		return
	}
	c.value = next
	observers := make([]CellObserver[T], len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, o := range observers {
		o.OnWrite(next, prev)
	}
}

// AddObserver appends an observer. Observers cannot be removed; both lists
// the observer represents are append-only.
func (c *Cell[T]) AddObserver(o CellObserver[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.poisoned {
		panic(&PoisonedError{Resource: "cell", ID: c.id})
	}
	c.observers = append(c.observers, o)
}

// String peeks at the value without firing read observers.
func (c *Cell[T]) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("Cell(%v)", c.value)
}
