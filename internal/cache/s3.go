package cache

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store is a Store backed by an S3-compatible object store, the cache
// backend self-hosted runners point at. Each cache entry is one tar.gz
// object whose key is derived from the cache key.
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store creates an S3Store from the cache backend configuration.
func NewS3Store(cfg *BackendConfig) (*S3Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache store client: %w", err)
	}
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func objectKey(key string) string {
	return sanitizeKey(key) + ".tar.gz"
}

// Restore downloads the cache entry for key and unpacks it into dir. A
// missing entry is a miss, reported as ("", nil).
func (s *S3Store) Restore(ctx context.Context, key, dir string) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(key), minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("fetch cache entry %s: %w", key, err)
	}
	defer obj.Close()

	// GetObject is lazy; the first stat surfaces a missing object.
	if _, err := obj.Stat(); err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && (resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket") {
			return "", nil
		}
		return "", fmt.Errorf("stat cache entry %s: %w", key, err)
	}

	if err := unpackDir(obj, dir); err != nil {
		return "", fmt.Errorf("unpack cache entry %s: %w", key, err)
	}
	return key, nil
}

// Save packs dir into a tar.gz snapshot and uploads it under key, creating
// the bucket if this runner has never saved before. Returns the identifier of
// the created entry.
func (s *S3Store) Save(ctx context.Context, key, dir string) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "biomeci-cache-*.tar.gz")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := packDir(dir, tmp); err != nil {
		return "", fmt.Errorf("pack %s: %w", dir, err)
	}

	info, err := s.client.FPutObject(ctx, s.bucket, objectKey(key), tmp.Name(), minio.PutObjectOptions{
		ContentType: "application/gzip",
	})
	if err != nil {
		return "", fmt.Errorf("upload cache entry %s: %w", key, err)
	}
	return fmt.Sprintf("%s@%s", objectKey(key), info.ETag), nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check cache bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create cache bucket: %w", err)
	}
	return nil
}
