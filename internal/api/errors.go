package api

import (
	"errors"
	"net/http"

	"github.com/oxbrook/mediavault/internal/gallery"
)

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusBadRequest, msg)
}

// Unauthorized writes a 401 error response.
func Unauthorized(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusUnauthorized, msg)
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusNotFound, msg)
}

// Conflict writes a 409 error response.
func Conflict(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusConflict, msg)
}

// Internal writes a 500 error response.
func Internal(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusInternalServerError, msg)
}

// FromError maps a gallery-layer error onto the HTTP status taxonomy:
// Unauthorized→401, ValidationError→400, NotFound→404, Conflict→409,
// everything else (configuration and upstream failures)→500.
func FromError(w http.ResponseWriter, err error) {
	var verr *gallery.ValidationError
	switch {
	case errors.Is(err, gallery.ErrUnauthorized):
		Unauthorized(w, err.Error())
	case errors.As(err, &verr):
		BadRequest(w, verr.Message)
	case errors.Is(err, gallery.ErrNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, gallery.ErrConflict):
		Conflict(w, err.Error())
	default:
		Internal(w, err.Error())
	}
}
