// Package s3 implements blobstore.Store on Amazon S3.
//
// Uploads stream through the s3/manager multipart uploader, so index files
// larger than memory can be shipped without buffering. Reads use ranged GETs;
// wrap the store in blobstore.NewCachingStore when readers revisit regions.
//
// The optional Pointer type keeps a "current snapshot" name in DynamoDB with
// conditional writes, giving the compare-and-swap that S3 itself lacks.
package s3
