package errors

import (
	"errors"
	"sync"
)

// ErrWrongType is returned when a stored value does not have the requested type.
var ErrWrongType = errors.New("wrong type")

// Collection is a thread-unsafe utility for accumulating multiple errors.
// It provides methods to add errors, check for errors, and retrieve them as a single combined error.
// Use this when you need to collect errors from multiple operations and return them together.
type Collection struct {
	errors []error
}

// Add appends an error to the collection. Nil errors are automatically ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Clear removes all errors from the collection, resetting it to an empty state.
func (c *Collection) Clear() {
	c.errors = nil
}

// HasError returns true if the collection contains at least one error.
func (c *Collection) HasError() bool {
	return len(c.errors) > 0
}

// Len returns the number of errors in the collection.
func (c *Collection) Len() int {
	return len(c.errors)
}

// GetError returns the collected errors as a single error.
// Returns nil if the collection is empty, the single error if there's only one,
// or a joined error (using errors.Join) if there are multiple errors.
func (c *Collection) GetError() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}

// SyncCollection is a Collection guarded by a mutex, safe for concurrent
// producers. Use this when errors are collected from multiple goroutines,
// for example while draining a batch of work on a pool.
type SyncCollection struct {
	mut sync.Mutex
	col Collection
}

// Add appends an error to the collection. Nil errors are automatically ignored.
func (c *SyncCollection) Add(err error) {
	c.mut.Lock()
	defer c.mut.Unlock()

	c.col.Add(err)
}

// Clear removes all errors from the collection.
func (c *SyncCollection) Clear() {
	c.mut.Lock()
	defer c.mut.Unlock()

	c.col.Clear()
}

// HasError returns true if the collection contains at least one error.
func (c *SyncCollection) HasError() bool {
	c.mut.Lock()
	defer c.mut.Unlock()

	return c.col.HasError()
}

// Len returns the number of errors in the collection.
func (c *SyncCollection) Len() int {
	c.mut.Lock()
	defer c.mut.Unlock()

	return c.col.Len()
}

// GetError returns the collected errors as a single error, nil when empty.
func (c *SyncCollection) GetError() error {
	c.mut.Lock()
	defer c.mut.Unlock()

	return c.col.GetError()
}
