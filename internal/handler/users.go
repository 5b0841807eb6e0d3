package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oxbrook/mediavault/internal/api"
	"github.com/oxbrook/mediavault/internal/metadata"
	"github.com/oxbrook/mediavault/internal/model"
)

// ListUsers handles GET /api/admin/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		api.Internal(w, "failed to list users")
		return
	}
	if users == nil {
		users = []*model.AllowedUser{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": users})
}

// PutUser handles POST /api/admin/users -- adds an email to the allowlist
// or updates its admin flag.
func (h *Handler) PutUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email   string `json:"email"`
		IsAdmin bool   `json:"isAdmin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.BadRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	if _, err := mail.ParseAddress(body.Email); err != nil {
		api.BadRequest(w, "email must be a valid address")
		return
	}

	user := &model.AllowedUser{Email: body.Email, IsAdmin: body.IsAdmin, AddedAt: time.Now().UTC()}
	if err := h.Store.PutUser(r.Context(), user); err != nil {
		api.Internal(w, "failed to store user")
		return
	}
	api.WriteJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/admin/users/{email}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := h.Store.DeleteUser(r.Context(), email); err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			api.NotFound(w, "user not found")
			return
		}
		api.Internal(w, "failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
