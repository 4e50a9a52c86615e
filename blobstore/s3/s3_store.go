package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hemajv/insights-clustering/blobstore"
)

// DefaultRegion is used when Endpoint.Region is empty. Ceph ignores it but
// request signing needs one.
const DefaultRegion = "us-east-1"

// Endpoint describes how to reach a bucket.
type Endpoint struct {
	// URL overrides the AWS endpoint, e.g. "https://ceph.example.com".
	// Empty uses AWS endpoint resolution.
	URL       string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	// Prefix is prepended to every key.
	Prefix string
}

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client Client
	bucket string
	prefix string

	// Concurrency is the number of parallel part downloads in Download.
	Concurrency int
}

// NewStore creates a new S3 blob store.
// rootPrefix is prepended to all keys (e.g. "archive/").
func NewStore(client Client, bucket, rootPrefix string) *Store {
	return &Store{
		client:      client,
		bucket:      bucket,
		prefix:      strings.TrimSuffix(rootPrefix, "/"),
		Concurrency: manager.DefaultDownloadConcurrency,
	}
}

// New loads an SDK configuration with static credentials and returns a
// Store over ep.Bucket.
func New(ctx context.Context, ep Endpoint) (*Store, error) {
	if ep.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	region := ep.Region
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if ep.AccessKey != "" || ep.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(ep.AccessKey, ep.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if ep.URL != "" {
			o.BaseEndpoint = aws.String(ep.URL)
			o.UsePathStyle = true
		}
	})
	return NewStore(client, ep.Bucket, ep.Prefix), nil
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Open opens a blob for reading.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	return openBlob(ctx, s.client, s.bucket, s.key(name))
}

// List returns all blob names under prefix, relative to the root prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return listObjects(ctx, s.client, s.bucket, s.key(prefix), s.prefix)
}

// Download fetches a whole object with concurrent ranged GETs.
func (s *Store) Download(ctx context.Context, name string) ([]byte, error) {
	d := manager.NewDownloader(s.client, func(d *manager.Downloader) {
		if s.Concurrency > 0 {
			d.Concurrency = s.Concurrency
		}
	})

	buf := manager.NewWriteAtBuffer(nil)
	n, err := d.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return buf.Bytes()[:n], nil
}
