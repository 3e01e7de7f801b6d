//go:build linux

package mmap

import "golang.org/x/sys/unix"

// resize extends the mapping in place with mremap(2). The kernel may move the
// mapping to a new address but never copies page contents, so growth cost is
// independent of the region size.
func (r *Region[T]) resize(size, n int) error {
	data, err := unix.Mremap(r.data, size, unix.MREMAP_MAYMOVE)
	if err != nil {
		return &ResourceError{Op: "remap", Bytes: int64(size), Err: err}
	}
	r.data = data
	r.n = n
	return nil
}
