package blobstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned when the destination bucket is missing from
// the configuration.
var ErrNotConfigured = errors.New("object store bucket is not configured")

// UploadCredentials are short-lived credentials for a browser to POST one
// object directly to the store, scoped to exactly one key.
type UploadCredentials struct {
	URL       string            `json:"url"`
	Fields    map[string]string `json:"fields"`
	Key       string            `json:"key"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// ObjectStore is the object-storage interface used by the gallery service.
type ObjectStore interface {
	// PresignUpload issues upload credentials scoped to key, valid for the
	// given window.
	PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (*UploadCredentials, error)

	// PresignGet issues a time-limited signed read URL for key.
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)

	// Remove deletes the object stored under key.
	Remove(ctx context.Context, key string) error
}
