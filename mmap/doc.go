// Package mmap provides typed virtual-memory mappings for fixed-size records.
//
// # Overview
//
// A Region[T] is a contiguous mapping of a whole number of elements of type T,
// either anonymous (contents vanish on release) or backed by a caller-owned
// file descriptor (contents persist in the file). Regions are the raw
// primitive underneath mmapvec.Vector; most callers want that package instead.
//
// # Growth
//
// Resize grows a region while preserving its contents. Two strategies sit
// behind the same call:
//
//   - Linux: mremap(2) extends the mapping, possibly moving it, without
//     copying pages.
//   - Other Unix: a fresh region is mapped and min(old, new) elements are
//     carried over before the old region is released.
//
// Both strategies produce bit-identical preserved content; callers cannot
// observe which one ran. A failed Resize leaves the previous mapping valid
// and usable.
//
// # Element types
//
// T must be a fixed-size type without pointers (plain integers, or structs of
// such). The mapped memory is not scanned by the garbage collector; storing
// pointers in it is a bug.
//
// # Platform Support
//
// Unix only (Linux, macOS, BSD). The surrounding index formats are raw memory
// dumps and are therefore only portable between machines of the same
// architecture and byte order.
package mmap
