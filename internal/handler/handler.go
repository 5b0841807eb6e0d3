// Package handler implements the HTTP surface: upload credentials, image
// CRUD, the allowlist admin API, sign-in and the assistant endpoints.
package handler

import (
	"github.com/oxbrook/mediavault/internal/assistant"
	"github.com/oxbrook/mediavault/internal/auth"
	"github.com/oxbrook/mediavault/internal/config"
	"github.com/oxbrook/mediavault/internal/gallery"
	"github.com/oxbrook/mediavault/internal/metadata"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Gallery  *gallery.Service
	Store    metadata.Store
	Sessions *auth.Sessions

	// Auth is nil when no OIDC issuer is configured; sign-in endpoints
	// then answer 503.
	Auth *auth.Authenticator

	Assistant *assistant.Client
	Config    *config.Config
}
