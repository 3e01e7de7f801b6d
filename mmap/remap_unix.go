//go:build unix && !linux

package mmap

import "golang.org/x/sys/unix"

// resize maps a fresh region and carries the old content over, since the
// platform has no mremap(2). File-backed regions re-map the (already grown)
// file, so the content travels through the shared pages; anonymous regions
// copy up to min(old, new) bytes. The old mapping is only released once the
// new one is in place, so a failure leaves the region untouched.
func (r *Region[T]) resize(size, n int) error {
	var (
		data []byte
		err  error
	)
	if r.fd >= 0 {
		data, err = unix.Mmap(r.fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	} else {
		data, err = unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
		if err == nil {
			copy(data, r.data)
		}
	}
	if err != nil {
		return &ResourceError{Op: "remap", Bytes: int64(size), Err: err}
	}
	old := r.data
	r.data = data
	r.n = n
	return unix.Munmap(old)
}
