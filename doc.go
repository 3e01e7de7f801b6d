// Package libosmium provides the storage primitive underneath dense
// geospatial indexes: a growable, densely packed, memory-mapped array of
// fixed-size records, keyed by numeric identifier, that scales to billions of
// entries without living on the Go heap.
//
// The layers, bottom up:
//
//   - mmap: typed virtual-memory regions (anonymous or file-backed) with a
//     content-preserving resize and file-growth helpers.
//   - mmapvec: the growable array on top of one region, with sentinel-driven
//     size recovery for the headerless on-disk format.
//   - occupancy: opt-in tracking of written slots where the sentinel
//     convention is too ambiguous.
//   - resource: process-wide budgets for mapped memory and transfer IO.
//   - blobstore: moving persisted index files between machines (local, S3,
//     MinIO), with block caching for remote reads.
//
// This package ties the top and bottom together: SaveSnapshot and
// LoadSnapshot move a vector's persisted form through a blob store.
//
// A minimal session:
//
//	f, _ := os.OpenFile("node-index.dat", os.O_RDWR|os.O_CREATE, 0o644)
//	defer f.Close()
//
//	const empty = ^uint64(0)
//	v, err := mmapvec.NewFile(f, 1<<20, 0, empty)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer v.Close()
//
//	v.PushBack(osmNodeOffset)   // appends, growing as needed
//	loc, err := v.At(42)        // checked read
//
// Reopening the same file later recovers the populated length automatically.
package libosmium
