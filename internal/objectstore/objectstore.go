// Package objectstore wraps the shared S3-compatible client used by the
// chat-history store and the snapshot archiver.
package objectstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/AstroImad/adsnap/internal/config"
)

// Store is an S3-compatible bucket handle. The bucket is created lazily on
// first use.
type Store struct {
	Client *minio.Client
	Bucket string

	region   string
	initOnce sync.Once
	initErr  error
}

// New builds a store from the run configuration. All of endpoint, keys and
// bucket must be configured; callers treat an error here as "object store
// features disabled", not as fatal.
func New(cfg config.Config) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.S3Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.S3AccessKey)
	secret := strings.TrimSpace(cfg.S3SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.S3Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &Store{
		Client: client,
		Bucket: bucket,
		region: cfg.S3Region,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.Client.BucketExists(ctx, s.Bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.Client.MakeBucket(ctx, s.Bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}
