// Package blobstore abstracts where persisted index files live.
//
// A file-backed vector persists as a flat, headerless file of fixed-size
// records. Prebuilt indexes are often produced once and consumed by many
// readers; shipping those files between machines goes through a Store: local
// filesystem, in-memory (tests), S3, or any S3-compatible endpoint via the
// minio subpackage. CachingStore adds block-level read caching in front of a
// remote store.
//
// Blobs are treated as immutable once written; Create-then-Close replaces a
// blob atomically where the backend allows it.
package blobstore
