package gallery

import "regexp"

// Content types accepted for upload.
var allowedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"video/mp4":  true,
}

var unsafeChars = regexp.MustCompile(`[^\w.\-]`)

// sanitizeFilename strips characters outside word/dot/hyphen so a
// user-supplied filename is safe inside an object key.
func sanitizeFilename(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// dedupeTags removes duplicate tags case-sensitively, preserving the order
// of first occurrence.
func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// CreateInput is the payload for creating a metadata record. The owner is
// never part of the input; it comes from the caller's session.
type CreateInput struct {
	ImageID     string   `json:"imageId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (in *CreateInput) validate() error {
	if in.ImageID == "" {
		return validationErr("imageId", "imageId is required")
	}
	return nil
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

func (in *UpdateInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.Tags == nil
}
