package metadata

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/oxbrook/mediavault/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutAndGetImage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	img := &model.Image{
		ID:          "abc-cat.png",
		UserID:      "alice@example.com",
		Title:       "A cat",
		Description: "orange tabby",
		Tags:        []string{"cats", "orange"},
		CreatedAt:   now,
	}

	require.NoError(t, store.PutImage(ctx, img))

	got, err := store.GetImage(ctx, "abc-cat.png")
	require.NoError(t, err)
	assert.Equal(t, img.ID, got.ID)
	assert.Equal(t, img.UserID, got.UserID)
	assert.Equal(t, img.Title, got.Title)
	assert.Equal(t, img.Description, got.Description)
	assert.Equal(t, []string{"cats", "orange"}, got.Tags)
	assert.Equal(t, now, got.CreatedAt.UTC().Truncate(time.Second))

	_, err = store.GetImage(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutImageConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &model.Image{ID: "img-001", UserID: "alice@example.com", Title: "original"}
	require.NoError(t, store.PutImage(ctx, first))

	second := &model.Image{ID: "img-001", UserID: "mallory@example.com", Title: "overwritten"}
	err := store.PutImage(ctx, second)
	assert.ErrorIs(t, err, ErrConflict)

	// The original record is unchanged.
	got, err := store.GetImage(ctx, "img-001")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.UserID)
	assert.Equal(t, "original", got.Title)
}

func TestUpdateImagePartial(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	img := &model.Image{
		ID:          "img-001",
		UserID:      "alice@example.com",
		Title:       "before",
		Description: "keep me",
		Tags:        []string{"a"},
	}
	require.NoError(t, store.PutImage(ctx, img))

	title := "after"
	tags := []string{"x", "y"}
	got, err := store.UpdateImage(ctx, "img-001", ImageUpdate{Title: &title, Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, "keep me", got.Description)
	assert.Equal(t, []string{"x", "y"}, got.Tags)
	assert.Equal(t, "alice@example.com", got.UserID)

	// Missing record.
	_, err = store.UpdateImage(ctx, "nonexistent", ImageUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteImageOwnerCondition(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	img := &model.Image{ID: "img-001", UserID: "alice@example.com"}
	require.NoError(t, store.PutImage(ctx, img))

	// Owner mismatch on an existing record reports a condition failure
	// and leaves the record intact.
	err := store.DeleteImage(ctx, "img-001", "mallory@example.com")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = store.GetImage(ctx, "img-001")
	require.NoError(t, err)

	// Owner match deletes.
	require.NoError(t, store.DeleteImage(ctx, "img-001", "alice@example.com"))
	_, err = store.GetImage(ctx, "img-001")
	assert.ErrorIs(t, err, ErrNotFound)

	// Already gone.
	err = store.DeleteImage(ctx, "img-001", "alice@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	err = store.DeleteImage(ctx, "img-001", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScanImagesPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const total = 23
	want := make(map[string]bool, total)
	for i := 0; i < total; i++ {
		id := fmt.Sprintf("img-%03d", i)
		want[id] = true
		require.NoError(t, store.PutImage(ctx, &model.Image{ID: id, UserID: "alice@example.com"}))
	}

	// Following nextKey until absent yields every id exactly once.
	got := make(map[string]bool)
	startKey := ""
	pages := 0
	for {
		images, nextKey, err := store.ScanImages(ctx, 5, startKey)
		require.NoError(t, err)
		for _, img := range images {
			assert.False(t, got[img.ID], "duplicate id %s", img.ID)
			got[img.ID] = true
		}
		pages++
		require.Less(t, pages, 20, "pagination did not terminate")
		if nextKey == "" {
			break
		}
		startKey = nextKey
	}
	assert.Equal(t, want, got)

	// One unbounded scan returns the same set.
	all, nextKey, err := store.ScanImages(ctx, 1000, "")
	require.NoError(t, err)
	assert.Empty(t, nextKey)
	assert.Len(t, all, total)
}

func TestAllowlistCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetUser(ctx, "alice@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.PutUser(ctx, &model.AllowedUser{Email: "alice@example.com", IsAdmin: true}))
	require.NoError(t, store.PutUser(ctx, &model.AllowedUser{Email: "bob@example.com"}))

	u, err := store.GetUser(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	// Upsert flips the admin flag without erroring.
	require.NoError(t, store.PutUser(ctx, &model.AllowedUser{Email: "alice@example.com", IsAdmin: false}))
	u, err = store.GetUser(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, u.IsAdmin)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice@example.com", users[0].Email)
	assert.Equal(t, "bob@example.com", users[1].Email)

	require.NoError(t, store.DeleteUser(ctx, "bob@example.com"))
	err = store.DeleteUser(ctx, "bob@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
