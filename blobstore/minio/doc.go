// Package minio implements blobstore.Store for MinIO and other S3-compatible
// object stores, using the MinIO Go client instead of the AWS SDK. Prefer it
// when the endpoint is self-hosted or the AWS credential chain is unwanted.
package minio
