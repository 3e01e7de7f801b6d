package mmapvec

import (
	"io"
	"iter"
	"os"

	"github.com/barracuda156/libosmium/mmap"
)

// Vector is a growable, densely packed array of T backed by one memory
// mapping. The zero value is not usable; construct with New or NewFile.
//
// Invariants: Size() <= Capacity() after every operation, and every slot in
// [Size(), Capacity()) holds the sentinel value supplied at construction.
type Vector[T comparable] struct {
	region *mmap.Region[T]
	size   int
	empty  T
	opts   options
	budget int64 // bytes currently acquired from the memory acquirer
}

// New creates an anonymous vector. All slots are pre-filled with the empty
// value. Capacity defaults to the growth increment; see WithCapacity.
func New[T comparable](empty T, opts ...Option) (*Vector[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	capacity := o.capacity
	if capacity <= 0 {
		capacity = o.increment
	}

	v := &Vector[T]{empty: empty, opts: o}
	if err := v.acquire(regionBytes[T](capacity)); err != nil {
		return nil, err
	}
	region, err := mmap.Map[T](capacity)
	if err != nil {
		v.release(regionBytes[T](capacity))
		return nil, err
	}
	v.region = region
	fill(region.Slice(), empty)

	o.logger.Debug("anonymous vector mapped", "capacity", capacity, "bytes", regionBytes[T](capacity))
	return v, nil
}

// NewFile creates a file-backed vector on top of f, which must be open for
// reading and writing and stays owned by the caller. The file is grown to
// capacity elements if needed. size is the element count resumed from a prior
// run (0 for a fresh file, mmap.FileSize for an existing one); slots in
// [size, capacity) are filled with the empty value and trailing empty slots
// are then trimmed, so Size() reflects the data genuinely present in the
// file.
func NewFile[T comparable](f *os.File, capacity, size int, empty T, opts ...Option) (*Vector[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if size > capacity {
		return nil, ErrSizeExceedsCapacity
	}

	v := &Vector[T]{size: size, empty: empty, opts: o}
	if err := v.acquire(regionBytes[T](capacity)); err != nil {
		return nil, err
	}
	region, err := mmap.GrowAndMap[T](capacity, int(f.Fd()))
	if err != nil {
		v.release(regionBytes[T](capacity))
		return nil, err
	}
	v.region = region
	fill(region.Slice()[size:], empty)
	v.ShrinkToFit()

	o.logger.Debug("file-backed vector mapped",
		"capacity", capacity, "resumed_size", size, "recovered_size", v.size)
	return v, nil
}

// Size returns the number of populated elements.
func (v *Vector[T]) Size() int { return v.size }

// Capacity returns the element capacity of the underlying mapping.
func (v *Vector[T]) Capacity() int { return v.region.Capacity() }

// Empty reports whether the vector holds no elements.
func (v *Vector[T]) Empty() bool { return v.size == 0 }

// Get returns the element at index i without a bounds check. The caller
// guarantees i < Size(); violating that is undefined behavior. This is the
// hot-path accessor; use At when the index is not trusted.
func (v *Vector[T]) Get(i int) T {
	return v.region.Slice()[i]
}

// Set stores value at index i without a bounds check. The caller guarantees
// i < Size().
func (v *Vector[T]) Set(i int, value T) {
	v.region.Slice()[i] = value
	if v.opts.tracker != nil {
		v.opts.tracker.Mark(i)
	}
}

// At returns the element at index i, or a *BoundsError when i is outside
// [0, Size()).
func (v *Vector[T]) At(i int) (T, error) {
	if i < 0 || i >= v.size {
		var zero T
		return zero, &BoundsError{Index: i, Size: v.size}
	}
	return v.region.Slice()[i], nil
}

// PushBack appends value, growing the mapping by one increment beyond the
// immediate need when capacity is exhausted. Capacity is secured before the
// write is attempted; a failed growth leaves the vector unchanged.
func (v *Vector[T]) PushBack(value T) error {
	if err := v.Resize(v.size + 1); err != nil {
		return err
	}
	v.Set(v.size-1, value)
	return nil
}

// Reserve grows the mapping to exactly capacity elements, filling the new
// slots with the empty value. It is a no-op when the vector already has that
// capacity. The mapping is never shrunk.
func (v *Vector[T]) Reserve(capacity int) error {
	old := v.region.Capacity()
	if capacity <= old {
		return nil
	}
	delta := regionBytes[T](capacity) - regionBytes[T](old)
	if err := v.acquire(delta); err != nil {
		return err
	}
	if err := v.region.Resize(capacity); err != nil {
		v.release(delta)
		return err
	}
	fill(v.region.Slice()[old:], v.empty)

	v.opts.logger.Debug("vector grown", "old_capacity", old, "new_capacity", capacity)
	return nil
}

// Resize sets the logical size. Growing past the current capacity reserves
// one extra increment. Shrinking only moves the logical end; slots beyond it
// keep their stale content until overwritten.
func (v *Vector[T]) Resize(size int) error {
	if size > v.region.Capacity() {
		if err := v.Reserve(size + v.opts.increment); err != nil {
			return err
		}
	}
	v.size = size
	return nil
}

// Clear sets the size to 0. The mapping is neither released nor re-filled.
func (v *Vector[T]) Clear() {
	v.size = 0
}

// ShrinkToFit recovers the true logical size by trimming trailing slots that
// hold the empty value. With an occupancy tracker attached it trims by
// tracked occupancy instead, so deliberately stored empty values survive.
func (v *Vector[T]) ShrinkToFit() {
	if v.opts.tracker != nil {
		v.size = v.opts.tracker.TrimmedLen(v.size)
		return
	}
	s := v.region.Slice()
	for v.size > 0 && s[v.size-1] == v.empty {
		v.size--
	}
}

// All iterates over the populated elements in index order.
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		s := v.region.Slice()
		for i := 0; i < v.size; i++ {
			if !yield(i, s[i]) {
				return
			}
		}
	}
}

// WriteTo writes the raw bytes of the populated prefix to w. Together with
// the trailing-sentinel convention this is the complete persisted form of the
// vector.
func (v *Vector[T]) WriteTo(w io.Writer) (int64, error) {
	raw := v.region.Bytes()[:regionBytes[T](v.size)]
	n, err := w.Write(raw)
	return int64(n), err
}

// Close releases the mapping. No operation on the vector is defined
// afterward; reuse requires a new instance. The backing file descriptor, if
// any, stays open and owned by the caller.
func (v *Vector[T]) Close() error {
	if v.region == nil {
		return nil
	}
	err := v.region.Unmap()
	v.region = nil
	v.release(v.budget)
	v.opts.logger.Debug("vector closed", "size", v.size)
	return err
}

func (v *Vector[T]) acquire(bytes int64) error {
	if v.opts.acquirer == nil || bytes <= 0 {
		v.budget += max(bytes, 0)
		return nil
	}
	if !v.opts.acquirer.TryAcquireMemory(bytes) {
		return &mmap.ResourceError{Op: "map", Bytes: bytes, Err: ErrBudgetExceeded}
	}
	v.budget += bytes
	return nil
}

func (v *Vector[T]) release(bytes int64) {
	v.budget -= bytes
	if v.opts.acquirer != nil && bytes > 0 {
		v.opts.acquirer.ReleaseMemory(bytes)
	}
}

func regionBytes[T any](n int) int64 {
	return int64(n) * int64(mmap.ElementSize[T]())
}

func fill[T any](s []T, value T) {
	for i := range s {
		s[i] = value
	}
}
