package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOOptions configures an object storage backed Store.
type MinIOOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinIOStore keeps derivatives as objects named "{area}/{name}" in one bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore connects to the endpoint and creates the bucket if needed.
func NewMinIOStore(ctx context.Context, opts MinIOOptions) (*MinIOStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", opts.Bucket, err)
		}
	}
	return &MinIOStore{client: client, bucket: opts.Bucket}, nil
}

func (s *MinIOStore) Put(ctx context.Context, area, name string, r io.Reader, size int64, contentType string) error {
	key, err := objectKey(area, name)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: CacheControl,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *MinIOStore) Open(ctx context.Context, area, name string) (io.ReadCloser, error) {
	key, err := objectKey(area, name)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	return obj, nil
}

func (s *MinIOStore) Remove(ctx context.Context, area, name string) error {
	key, err := objectKey(area, name)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *MinIOStore) List(ctx context.Context, area string) ([]string, error) {
	if !isPlainName(area) {
		return nil, fmt.Errorf("invalid area %q", area)
	}
	prefix := area + "/"
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if isPlainName(name) {
			names = append(names, name)
		}
	}
	return names, nil
}

func objectKey(area, name string) (string, error) {
	if !isPlainName(area) || !isPlainName(name) {
		return "", fmt.Errorf("invalid derivative path %q/%q", area, name)
	}
	return area + "/" + name, nil
}
