// Package blobstore provides read access to the objects holding feature
// tables.
//
// BlobStore is the interface for listing and opening immutable blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem
//   - MemoryStore: in-memory, for tests
//   - minio.Store: MinIO client for S3-compatible stores such as Ceph
//   - s3.Store: AWS SDK v2 client, including custom endpoints
//
// GovernedStore wraps any of them with bounded concurrency, a byte-rate
// limit and retries with jittered exponential backoff.
package blobstore
