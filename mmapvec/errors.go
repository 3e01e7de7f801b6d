package mmapvec

import (
	"errors"
	"fmt"
)

var (
	// ErrSizeExceedsCapacity is returned when a file-backed vector is opened
	// with an initial size larger than the requested capacity.
	ErrSizeExceedsCapacity = errors.New("mmapvec: initial size exceeds capacity")
	// ErrBudgetExceeded is returned when a configured memory budget refuses
	// the mapping. See WithMemoryAcquirer.
	ErrBudgetExceeded = errors.New("mmapvec: mapped-memory budget exceeded")
)

// BoundsError is returned by At for an index outside [0, Size()).
//
// This is distinct from the undefined behavior of the unchecked Get/Set
// accessors, which perform no such check.
type BoundsError struct {
	Index int
	Size  int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("mmapvec: index %d out of range [0, %d)", e.Index, e.Size)
}
