package model

import "time"

// Image is the metadata record for one uploaded object. The object itself
// lives in the object store under the same key as ID.
type Image struct {
	ID          string    `json:"imageId"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"-"`

	// URL is never persisted; it is a signed read URL minted at read time.
	URL string `json:"url,omitempty"`
}

// AllowedUser is one entry of the sign-in allowlist.
type AllowedUser struct {
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
	AddedAt time.Time `json:"-"`
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	Email string
	Name  string
	Admin bool
}

// Owner returns the identifier recorded as an image's owner.
func (id Identity) Owner() string {
	if id.Email != "" {
		return id.Email
	}
	return id.Name
}
