package blobstore

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// minioAPI is the slice of the minio client used here, extracted so tests
// can substitute a mock.
type minioAPI interface {
	PresignedPostPolicy(ctx context.Context, p *minio.PostPolicy) (*url.URL, map[string]string, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Compile-time check that MinioStore implements ObjectStore.
var _ ObjectStore = (*MinioStore)(nil)

// MinioStore implements ObjectStore against an S3-compatible endpoint.
type MinioStore struct {
	client minioAPI
	bucket string
}

// NewMinioStore creates an object store client for the given endpoint and
// bucket.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

func (s *MinioStore) PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (*UploadCredentials, error) {
	if s.bucket == "" {
		return nil, ErrNotConfigured
	}

	expiresAt := time.Now().UTC().Add(expires)

	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(s.bucket); err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	if err := policy.SetKey(key); err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	if err := policy.SetContentType(contentType); err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	if err := policy.SetExpires(expiresAt); err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	u, fields, err := s.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &UploadCredentials{
		URL:       u.String(),
		Fields:    fields,
		Key:       key,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *MinioStore) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	if s.bucket == "" {
		return "", ErrNotConfigured
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expires, nil)
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return u.String(), nil
}

func (s *MinioStore) Remove(ctx context.Context, key string) error {
	if s.bucket == "" {
		return ErrNotConfigured
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}
