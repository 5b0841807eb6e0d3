package metadata

import (
	"context"
	"errors"

	"github.com/oxbrook/mediavault/internal/model"
)

// Sentinel errors returned by Store implementations. Conditioned writes
// report ErrConflict when their condition does not hold.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("condition failed")
)

// ImageUpdate is a partial update of an image record. Nil fields are left
// untouched; the owner is never updatable.
type ImageUpdate struct {
	Title       *string
	Description *string
	Tags        *[]string
}

// Empty reports whether the update touches no fields.
func (u ImageUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Tags == nil
}

// Store is the persistence interface for image metadata and the sign-in
// allowlist.
type Store interface {
	// PutImage creates a record conditioned on the id not existing yet.
	// Returns ErrConflict if a record with the same id is already present.
	PutImage(ctx context.Context, img *model.Image) error
	GetImage(ctx context.Context, imageID string) (*model.Image, error)
	// UpdateImage applies a partial update conditioned on record existence.
	UpdateImage(ctx context.Context, imageID string, upd ImageUpdate) (*model.Image, error)
	// DeleteImage removes a record conditioned on existence. A non-empty
	// ownerID additionally conditions the delete on owner match; an owner
	// mismatch on an existing record reports ErrConflict.
	DeleteImage(ctx context.Context, imageID, ownerID string) error
	// ScanImages returns up to limit records ordered by id, starting
	// strictly after startKey. The returned key is the cursor for the next
	// page, empty when the scan is exhausted.
	ScanImages(ctx context.Context, limit int, startKey string) ([]*model.Image, string, error)

	// Allowlist.
	GetUser(ctx context.Context, email string) (*model.AllowedUser, error)
	PutUser(ctx context.Context, user *model.AllowedUser) error
	ListUsers(ctx context.Context) ([]*model.AllowedUser, error)
	DeleteUser(ctx context.Context, email string) error

	Close() error
}
