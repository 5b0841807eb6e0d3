package gallery

import (
	"errors"
	"fmt"
)

// Sentinel errors of the gallery service. Handlers map these to HTTP status
// codes; everything else is an upstream failure.
var (
	ErrUnauthorized = errors.New("unauthorized: sign in required")
	ErrNotFound     = errors.New("image not found")
	ErrConflict     = errors.New("image already exists")
)

// ValidationError reports the first offending field of a malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConfigurationError reports a required setting that is missing.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return e.Setting + " is not configured"
}

// UpstreamError wraps a failed object-store or metadata-store call.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
