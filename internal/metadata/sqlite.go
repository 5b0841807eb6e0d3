package metadata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oxbrook/mediavault/internal/model"
	_ "modernc.org/sqlite"
)

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store backed by SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) an SQLite database at dsn and runs
// migrations. For in-memory use pass "file::memory:?cache=shared".
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	} else if !strings.Contains(dsn, "_journal_mode") {
		dsn += "&_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Images
// ---------------------------------------------------------------------------

func (s *SQLiteStore) PutImage(ctx context.Context, img *model.Image) error {
	tagsJSON, err := json.Marshal(emptyIfNil(img.Tags))
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	created := img.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	// ON CONFLICT DO NOTHING plus a rows-affected check stands in for a
	// conditioned put: an existing record is never overwritten.
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO images (image_id, user_id, title, description, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(image_id) DO NOTHING`,
		img.ID, img.UserID, img.Title, img.Description, string(tagsJSON),
		created.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (s *SQLiteStore) GetImage(ctx context.Context, imageID string) (*model.Image, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT image_id, user_id, title, description, tags, created_at
		FROM images WHERE image_id = ?`,
		imageID,
	)
	return scanImage(row)
}

func (s *SQLiteStore) UpdateImage(ctx context.Context, imageID string, upd ImageUpdate) (*model.Image, error) {
	if upd.Empty() {
		return nil, ErrConflict
	}

	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Tags != nil {
		tagsJSON, err := json.Marshal(emptyIfNil(*upd.Tags))
		if err != nil {
			return nil, fmt.Errorf("marshal tags: %w", err)
		}
		sets = append(sets, "tags = ?")
		args = append(args, string(tagsJSON))
	}
	args = append(args, imageID)

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE images SET %s WHERE image_id = ?`, strings.Join(sets, ", ")),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("update image: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update image: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetImage(ctx, imageID)
}

func (s *SQLiteStore) DeleteImage(ctx context.Context, imageID, ownerID string) error {
	var (
		res sql.Result
		err error
	)
	if ownerID == "" {
		res, err = s.db.ExecContext(ctx, `DELETE FROM images WHERE image_id = ?`, imageID)
	} else {
		res, err = s.db.ExecContext(ctx,
			`DELETE FROM images WHERE image_id = ? AND user_id = ?`, imageID, ownerID)
	}
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Nothing deleted: either the record is gone or the owner condition
	// failed on a record that still exists.
	if ownerID != "" {
		if _, err := s.GetImage(ctx, imageID); err == nil {
			return ErrConflict
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return ErrNotFound
}

func (s *SQLiteStore) ScanImages(ctx context.Context, limit int, startKey string) ([]*model.Image, string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT image_id, user_id, title, description, tags, created_at
		FROM images WHERE image_id > ?
		ORDER BY image_id ASC
		LIMIT ?`,
		startKey, limit,
	)
	if err != nil {
		return nil, "", fmt.Errorf("scan images: %w", err)
	}
	defer rows.Close()

	images, err := scanImages(rows)
	if err != nil {
		return nil, "", err
	}

	var nextKey string
	if len(images) == limit {
		nextKey = images[len(images)-1].ID
	}
	return images, nextKey, nil
}

// ---------------------------------------------------------------------------
// Allowlist
// ---------------------------------------------------------------------------

func (s *SQLiteStore) GetUser(ctx context.Context, email string) (*model.AllowedUser, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT email, is_admin, added_at FROM allowed_users WHERE email = ?`,
		email,
	)
	u := &model.AllowedUser{}
	var isAdmin int
	var addedStr string
	if err := row.Scan(&u.Email, &isAdmin, &addedStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.IsAdmin = isAdmin != 0
	u.AddedAt, _ = time.Parse(time.RFC3339, addedStr)
	return u, nil
}

func (s *SQLiteStore) PutUser(ctx context.Context, user *model.AllowedUser) error {
	added := user.AddedAt
	if added.IsZero() {
		added = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO allowed_users (email, is_admin, added_at)
		VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET is_admin = excluded.is_admin`,
		user.Email, boolToInt(user.IsAdmin), added.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*model.AllowedUser, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT email, is_admin, added_at FROM allowed_users ORDER BY email ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.AllowedUser
	for rows.Next() {
		u := &model.AllowedUser{}
		var isAdmin int
		var addedStr string
		if err := rows.Scan(&u.Email, &isAdmin, &addedStr); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.IsAdmin = isAdmin != 0
		u.AddedAt, _ = time.Parse(time.RFC3339, addedStr)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM allowed_users WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanImage(row scannable) (*model.Image, error) {
	img := &model.Image{}
	var tagsStr, createdStr string

	err := row.Scan(&img.ID, &img.UserID, &img.Title, &img.Description, &tagsStr, &createdStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan image: %w", err)
	}

	img.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	if tagsStr != "" {
		if err := json.Unmarshal([]byte(tagsStr), &img.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if img.Tags == nil {
		img.Tags = []string{}
	}
	return img, nil
}

func scanImages(rows *sql.Rows) ([]*model.Image, error) {
	var images []*model.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func emptyIfNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
