//go:build unix

package mmap

import (
	"math"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ElementSize returns the in-memory size of T in bytes. On-disk layout equals
// in-memory layout; there is no serialization step.
func ElementSize[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Region is a virtual-memory mapping holding a whole number of elements of T.
// It exclusively owns the mapped address range; the backing file descriptor,
// if any, stays owned by the caller.
//
// A Region is not safe for concurrent mutation.
type Region[T any] struct {
	data []byte // raw mapping, len == capacity * ElementSize[T]()
	n    int    // element capacity
	fd   int    // -1 for anonymous regions
}

// Map creates an anonymous mapping of n elements. The content of a fresh
// anonymous mapping is zeroed by the OS.
func Map[T any](n int) (*Region[T], error) {
	size, err := byteSize[T]("map", n)
	if err != nil {
		return nil, err
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, &ResourceError{Op: "map", Bytes: int64(size), Err: err}
	}
	return &Region[T]{data: data, n: n, fd: -1}, nil
}

// MapFile creates a writable shared mapping of the first n elements of the
// file behind fd. The file must already be at least n elements long; see
// GrowFile. The descriptor is not duplicated and not owned by the region.
func MapFile[T any](fd int, n int) (*Region[T], error) {
	size, err := byteSize[T]("map", n)
	if err != nil {
		return nil, err
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, &ResourceError{Op: "map", Bytes: int64(size), Err: err}
	}
	return &Region[T]{data: data, n: n, fd: fd}, nil
}

// MapFileReadOnly maps the first n elements of the file behind fd read-only.
// Writing through the returned region faults.
func MapFileReadOnly[T any](fd int, n int) (*Region[T], error) {
	size, err := byteSize[T]("map", n)
	if err != nil {
		return nil, err
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, &ResourceError{Op: "map", Bytes: int64(size), Err: err}
	}
	return &Region[T]{data: data, n: n, fd: fd}, nil
}

// Unmap releases the mapping. The region and every slice previously obtained
// from it become invalid. Unmap is idempotent; only the first call releases.
func (r *Region[T]) Unmap() error {
	if r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	r.n = 0
	return unix.Munmap(data)
}

// Capacity returns the element capacity of the region.
func (r *Region[T]) Capacity() int { return r.n }

// Slice returns the mapped elements. The slice aliases the mapping and is
// valid only until the next Resize or Unmap.
func (r *Region[T]) Slice() []T {
	if r.data == nil {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(r.data))), r.n)
}

// Bytes returns the raw mapped bytes. Same validity rules as Slice.
func (r *Region[T]) Bytes() []byte { return r.data }

// Resize grows or shrinks the region to n elements, preserving the first
// min(old, new) elements exactly. For file-backed regions the file is grown
// first, so freshly exposed elements read as zero. On failure the previous
// mapping is left untouched and usable.
func (r *Region[T]) Resize(n int) error {
	size, err := byteSize[T]("remap", n)
	if err != nil {
		return err
	}
	if n == r.n {
		return nil
	}
	if r.fd >= 0 {
		if err := GrowFile[T](n, r.fd); err != nil {
			return err
		}
	}
	return r.resize(size, n)
}

// FileSize returns the number of elements currently stored in the file behind
// fd. The file's byte length must be a whole number of elements.
func FileSize[T any](fd int) (int, error) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return 0, &ResourceError{Op: "stat", Err: err}
	}
	elem := int64(ElementSize[T]())
	if st.Size%elem != 0 {
		return 0, &ResourceError{Op: "stat", Bytes: st.Size, Err: ErrMisalignedFile}
	}
	return int(st.Size / elem), nil
}

// GrowFile extends the file behind fd to hold at least n elements, zero
// filling the added range. It is a no-op when the file is already large
// enough; files are never shrunk.
func GrowFile[T any](n int, fd int) error {
	size, err := byteSize[T]("grow", n)
	if err != nil {
		return err
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return &ResourceError{Op: "stat", Err: err}
	}
	if st.Size >= int64(size) {
		return nil
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		return &ResourceError{Op: "grow", Bytes: int64(size), Err: err}
	}
	return nil
}

// GrowAndMap grows the file to n elements and maps it writable.
func GrowAndMap[T any](n int, fd int) (*Region[T], error) {
	if err := GrowFile[T](n, fd); err != nil {
		return nil, err
	}
	return MapFile[T](fd, n)
}

func byteSize[T any](op string, n int) (int, error) {
	if n <= 0 {
		return 0, &ResourceError{Op: op, Err: ErrZeroLength}
	}
	elem := ElementSize[T]()
	if n > math.MaxInt/elem {
		return 0, &ResourceError{Op: op, Err: ErrTooLarge}
	}
	return n * elem, nil
}
