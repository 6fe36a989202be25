// Package lazy provides a compute-once cell for values that are expensive
// to build and read far more often than they are created.
package lazy

import (
	"sync"
	"sync/atomic"
)

// Cell holds a lazily created *T.
//
// Reads after the first creation are a single atomic load. The mutex is
// taken only on the creation path, and the pointer is published after the
// value is fully constructed.
//
// The zero value is an empty cell ready for use. A Cell must not be copied.
type Cell[T any] struct {
	ptr atomic.Pointer[T]
	mu  sync.Mutex
}

// Get returns the cell value, calling create at most once to build it.
// create must not return nil; use a wrapper type to memoize failures.
func (c *Cell[T]) Get(create func() *T) *T {
	if p := c.ptr.Load(); p != nil {
		return p
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if p := c.ptr.Load(); p != nil {
		return p
	}
	p := create()
	c.ptr.Store(p)
	return p
}

// Load returns the current value without creating it.
func (c *Cell[T]) Load() *T {
	return c.ptr.Load()
}

// Reset empties the cell and returns the previous value, if any.
func (c *Cell[T]) Reset() *T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ptr.Swap(nil)
}
