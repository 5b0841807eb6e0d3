package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"net/http"

	"github.com/oxbrook/mediavault/internal/api"
	"github.com/oxbrook/mediavault/internal/auth"
)

const stateCookie = "mv_oauth_state"

// Login handles GET /auth/login -- redirects to the identity provider with
// a fresh state nonce pinned in a short-lived cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.Auth == nil {
		api.WriteError(w, http.StatusServiceUnavailable, "sign-in is not configured")
		return
	}

	buf := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		api.Internal(w, "failed to generate state")
		return
	}
	state := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.Config.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.Auth.LoginURL(state), http.StatusFound)
}

// Callback handles GET /auth/callback -- finishes the code flow, checks the
// allowlist and starts a session.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.Auth == nil {
		api.WriteError(w, http.StatusServiceUnavailable, "sign-in is not configured")
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		api.BadRequest(w, "state mismatch")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1})

	id, err := h.Auth.Authenticate(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		if errors.Is(err, auth.ErrNotAllowlisted) {
			api.WriteError(w, http.StatusForbidden, "Your email is not on the allowlist")
			return
		}
		api.Unauthorized(w, "sign-in failed")
		return
	}

	token, err := h.Sessions.Issue(id)
	if err != nil {
		api.Internal(w, "failed to start session")
		return
	}
	h.Sessions.SetCookie(w, token)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me -- reports the caller's identity, or 401 when no
// valid session is attached.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := h.Sessions.FromRequest(r)
	if err != nil {
		api.Unauthorized(w, "Unauthorized: sign in required")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"email": id.Email,
		"name":  id.Name,
		"admin": id.Admin,
	})
}
