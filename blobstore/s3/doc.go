// Package s3 provides an S3 implementation of the blobstore.BlobStore interface
// on top of the AWS SDK v2.
//
// # Usage
//
//	store, err := s3.New(ctx, s3.Endpoint{
//	    URL:       "https://ceph.example.com",
//	    AccessKey: key,
//	    SecretKey: secret,
//	    Bucket:    "insights",
//	})
//
// Custom endpoints use path-style addressing, which Ceph RGW requires.
//
// # Features
//
//   - Range reads for partial fetches
//   - Concurrent ranged downloads for whole objects
//   - Automatic pagination for listing
package s3
