package blobstore

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMinio struct {
	mock.Mock
}

func (m *mockMinio) PresignedPostPolicy(ctx context.Context, p *minio.PostPolicy) (*url.URL, map[string]string, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(*url.URL), args.Get(1).(map[string]string), args.Error(2)
}

func (m *mockMinio) PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	args := m.Called(ctx, bucketName, objectName, expires, reqParams)
	return args.Get(0).(*url.URL), args.Error(1)
}

func (m *mockMinio) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Error(0)
}

func TestPresignUpload(t *testing.T) {
	mc := &mockMinio{}
	store := &MinioStore{client: mc, bucket: "media"}

	postURL := &url.URL{Scheme: "https", Host: "s3.example.com", Path: "/media"}
	fields := map[string]string{"key": "abc-cat.png", "policy": "..."}
	mc.On("PresignedPostPolicy", mock.Anything, mock.Anything).Return(postURL, fields, nil)

	creds, err := store.PresignUpload(context.Background(), "abc-cat.png", "image/png", 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com/media", creds.URL)
	assert.Equal(t, "abc-cat.png", creds.Key)
	assert.Equal(t, fields, creds.Fields)
	assert.WithinDuration(t, time.Now().UTC().Add(10*time.Minute), creds.ExpiresAt, 5*time.Second)
	mc.AssertExpectations(t)
}

func TestPresignGet(t *testing.T) {
	mc := &mockMinio{}
	store := &MinioStore{client: mc, bucket: "media"}

	signed := &url.URL{Scheme: "https", Host: "s3.example.com", Path: "/media/abc-cat.png", RawQuery: "X-Amz-Signature=sig"}
	mc.On("PresignedGetObject", mock.Anything, "media", "abc-cat.png", 15*time.Minute, url.Values(nil)).
		Return(signed, nil)

	got, err := store.PresignGet(context.Background(), "abc-cat.png", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, signed.String(), got)
	mc.AssertExpectations(t)
}

func TestRemove(t *testing.T) {
	mc := &mockMinio{}
	store := &MinioStore{client: mc, bucket: "media"}

	mc.On("RemoveObject", mock.Anything, "media", "abc-cat.png", minio.RemoveObjectOptions{}).Return(nil)

	require.NoError(t, store.Remove(context.Background(), "abc-cat.png"))
	mc.AssertExpectations(t)
}

func TestBucketNotConfigured(t *testing.T) {
	store := &MinioStore{client: &mockMinio{}, bucket: ""}
	ctx := context.Background()

	_, err := store.PresignUpload(ctx, "k", "image/png", time.Minute)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = store.PresignGet(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, store.Remove(ctx, "k"), ErrNotConfigured)
}
