// Package minio provides a read-only BlobStore backed by the MinIO client.
//
// The MinIO client speaks the S3 protocol and works against Ceph RGW,
// MinIO and other S3-compatible gateways without any AWS configuration.
//
// # Basic Usage
//
//	store, err := minio.Dial(ctx, minio.Endpoint{
//	    URL:       "https://ceph.example.com",
//	    AccessKey: key,
//	    SecretKey: secret,
//	    Bucket:    "insights",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	names, err := store.List(ctx, "DH-DEV-INSIGHTS/2020-01-01/rule_data/")
package minio
