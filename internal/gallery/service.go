// Package gallery reconciles the object store and the metadata store so
// that create/list/delete present a single image resource to callers.
package gallery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oxbrook/mediavault/internal/blobstore"
	"github.com/oxbrook/mediavault/internal/metadata"
	"github.com/oxbrook/mediavault/internal/model"
	"github.com/oxbrook/mediavault/internal/urlcache"
)

const (
	defaultSignTTL   = 15 * time.Minute
	defaultUploadTTL = 10 * time.Minute
	defaultPageSize  = 50
	maxPageSize      = 1000
)

// Service coordinates the metadata store, the object store and the
// signed-URL cache.
type Service struct {
	meta    metadata.Store
	objects blobstore.ObjectStore
	urls    *urlcache.Cache

	signTTL   time.Duration
	uploadTTL time.Duration
}

// New creates a Service. Zero TTLs fall back to the defaults (15 minutes
// for read URLs, 10 minutes for upload credentials).
func New(meta metadata.Store, objects blobstore.ObjectStore, urls *urlcache.Cache, signTTL, uploadTTL time.Duration) *Service {
	if signTTL <= 0 {
		signTTL = defaultSignTTL
	}
	if uploadTTL <= 0 {
		uploadTTL = defaultUploadTTL
	}
	return &Service{
		meta:      meta,
		objects:   objects,
		urls:      urls,
		signTTL:   signTTL,
		uploadTTL: uploadTTL,
	}
}

// IssueUpload validates the declared content type and issues presigned
// upload credentials scoped to a freshly generated key.
func (s *Service) IssueUpload(ctx context.Context, caller model.Identity, fileName, fileType string) (*blobstore.UploadCredentials, error) {
	if caller.Owner() == "" {
		return nil, ErrUnauthorized
	}
	if !allowedContentTypes[fileType] {
		return nil, validationErr("fileType", "Unsupported file type")
	}

	key := uuid.NewString() + "-" + sanitizeFilename(fileName)

	creds, err := s.objects.PresignUpload(ctx, key, fileType, s.uploadTTL)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotConfigured) {
			return nil, &ConfigurationError{Setting: "object store bucket"}
		}
		return nil, &UpstreamError{Op: "presign upload", Err: err}
	}
	return creds, nil
}

// Create writes the metadata record for an already-uploaded object. The
// owner is taken from the caller's session, never from the payload.
func (s *Service) Create(ctx context.Context, caller model.Identity, in CreateInput) (*model.Image, error) {
	if caller.Owner() == "" {
		return nil, ErrUnauthorized
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	img := &model.Image{
		ID:          in.ImageID,
		UserID:      caller.Owner(),
		Title:       in.Title,
		Description: in.Description,
		Tags:        dedupeTags(in.Tags),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.meta.PutImage(ctx, img); err != nil {
		if errors.Is(err, metadata.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, &UpstreamError{Op: "create image", Err: err}
	}
	return img, nil
}

// Get returns a single record with a signed read URL attached. A signing
// failure degrades to a record without a URL.
func (s *Service) Get(ctx context.Context, caller model.Identity, imageID string) (*model.Image, error) {
	if caller.Owner() == "" {
		return nil, ErrUnauthorized
	}
	if imageID == "" {
		return nil, validationErr("imageId", "imageId is required")
	}

	img, err := s.meta.GetImage(ctx, imageID)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &UpstreamError{Op: "get image", Err: err}
	}

	if url, err := s.SignedURL(ctx, img.ID); err == nil {
		img.URL = url
	} else {
		slog.Warn("presign failed", "key", img.ID, "error", err)
	}
	return img, nil
}

// List returns one page of records, each with a signed read URL attached
// where signing succeeds. URLs for a page are minted concurrently; a
// per-item failure leaves that record without a URL rather than failing
// the page.
func (s *Service) List(ctx context.Context, caller model.Identity, pageSize int, startKey string) ([]*model.Image, string, error) {
	if caller.Owner() == "" {
		return nil, "", ErrUnauthorized
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	images, nextKey, err := s.meta.ScanImages(ctx, pageSize, startKey)
	if err != nil {
		return nil, "", &UpstreamError{Op: "list images", Err: err}
	}

	var wg sync.WaitGroup
	for _, img := range images {
		wg.Add(1)
		go func(img *model.Image) {
			defer wg.Done()
			url, err := s.SignedURL(ctx, img.ID)
			if err != nil {
				slog.Warn("presign failed", "key", img.ID, "error", err)
				return
			}
			img.URL = url
		}(img)
	}
	wg.Wait()

	if images == nil {
		images = []*model.Image{}
	}
	return images, nextKey, nil
}

// Update applies a partial update to title/tags/description. Only the
// record's owner or an admin may update it.
func (s *Service) Update(ctx context.Context, caller model.Identity, imageID string, in UpdateInput) (*model.Image, error) {
	if caller.Owner() == "" {
		return nil, ErrUnauthorized
	}
	if imageID == "" {
		return nil, validationErr("imageId", "imageId is required")
	}
	if in.empty() {
		return nil, validationErr("updates", "No fields to update")
	}

	current, err := s.meta.GetImage(ctx, imageID)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &UpstreamError{Op: "get image", Err: err}
	}
	if !caller.Admin && current.UserID != caller.Owner() {
		return nil, ErrUnauthorized
	}

	upd := metadata.ImageUpdate{
		Title:       in.Title,
		Description: in.Description,
	}
	if in.Tags != nil {
		tags := dedupeTags(*in.Tags)
		upd.Tags = &tags
	}

	img, err := s.meta.UpdateImage(ctx, imageID, upd)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &UpstreamError{Op: "update image", Err: err}
	}
	return img, nil
}

// Delete removes the stored object and then the metadata record. Only the
// record's owner or an admin may delete it. If the object delete succeeds
// but the metadata delete fails, the dangling record is surfaced as an
// error; there is no automatic compensation.
func (s *Service) Delete(ctx context.Context, caller model.Identity, imageID string) error {
	if caller.Owner() == "" {
		return ErrUnauthorized
	}
	if imageID == "" {
		return validationErr("imageId", "imageId is required")
	}

	img, err := s.meta.GetImage(ctx, imageID)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return ErrNotFound
		}
		return &UpstreamError{Op: "get image", Err: err}
	}
	if !caller.Admin && img.UserID != caller.Owner() {
		return ErrUnauthorized
	}

	if err := s.objects.Remove(ctx, imageID); err != nil {
		if errors.Is(err, blobstore.ErrNotConfigured) {
			return &ConfigurationError{Setting: "object store bucket"}
		}
		return &UpstreamError{Op: "delete object", Err: err}
	}

	// Non-admin deletes stay conditioned on owner match, closing the race
	// where ownership-relevant state changes between the read and the
	// delete.
	owner := ""
	if !caller.Admin {
		owner = caller.Owner()
	}
	if err := s.meta.DeleteImage(ctx, imageID, owner); err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return ErrNotFound
		}
		return &UpstreamError{Op: "delete metadata", Err: err}
	}
	return nil
}

// SignedURL returns a signed read URL for key, reusing a cached one when it
// is still comfortably inside its validity window.
func (s *Service) SignedURL(ctx context.Context, key string) (string, error) {
	if url, ok := s.urls.Get(key); ok {
		return url, nil
	}
	url, err := s.objects.PresignGet(ctx, key, s.signTTL)
	if err != nil {
		return "", err
	}
	s.urls.Put(key, url, s.signTTL)
	return url, nil
}
