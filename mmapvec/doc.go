// Package mmapvec implements a growable, densely packed array of fixed-size
// records on top of a single memory mapping.
//
// # Overview
//
// Vector[T] behaves like a slice with amortized O(1) append, but the storage
// lives in a virtual-memory mapping instead of the Go heap. Anonymous vectors
// are transient; file-backed vectors persist through the backing file and can
// be reopened by a later process.
//
// # On-disk format
//
// A file-backed vector is a flat sequence of raw T values with no header and
// no length field. Unused slots hold a per-type sentinel ("empty") value that
// the caller supplies at construction. On reopen, the logical length is
// recovered by trimming trailing sentinel slots (ShrinkToFit). A sentinel
// value deliberately stored in the last populated slot is indistinguishable
// from an unused slot; choose a sentinel the data can never contain (for
// identifier types, typically the maximum representable value), or attach an
// occupancy tracker via WithTracker.
//
// # Concurrency
//
// A Vector is a single-writer structure with no internal locking. Concurrent
// mutation must be serialized by the caller.
package mmapvec
