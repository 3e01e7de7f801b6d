package mmap

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroLength is returned when a zero-length mapping is requested.
	ErrZeroLength = errors.New("mmap: zero-length mapping requested")
	// ErrTooLarge is returned when the requested element count does not fit
	// into the address space.
	ErrTooLarge = errors.New("mmap: mapping size overflows address space")
	// ErrMisalignedFile is returned when a file's byte length is not a whole
	// number of elements.
	ErrMisalignedFile = errors.New("mmap: file size is not a multiple of the element size")
)

// ResourceError indicates that a mapping or file-growth operation failed at
// the OS level. Retrying with unchanged parameters cannot succeed; callers
// decide whether the failure is fatal.
//
// The underlying cause can be accessed via errors.Unwrap.
type ResourceError struct {
	Op    string // "map", "remap", "grow", "stat"
	Bytes int64  // requested size in bytes, 0 if not applicable
	Err   error
}

func (e *ResourceError) Error() string {
	if e.Bytes > 0 {
		return fmt.Sprintf("mmap: %s of %d bytes failed: %v", e.Op, e.Bytes, e.Err)
	}
	return fmt.Sprintf("mmap: %s failed: %v", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
