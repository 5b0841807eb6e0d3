// Package auth covers sign-in (OIDC against an allowlist) and per-request
// session handling.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oxbrook/mediavault/internal/model"
)

// CookieName is the session cookie.
const CookieName = "mv_session"

// ErrNoSession is returned when a request carries no usable session.
var ErrNoSession = errors.New("no session")

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HMAC-signed session tokens carried in an
// http-only cookie.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessions creates a session manager. An empty secret gets replaced by a
// random one, valid only until the process restarts.
func NewSessions(secret string, ttl time.Duration, secure bool) (*Sessions, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Sessions{secret: key, ttl: ttl, secure: secure}, nil
}

// Issue returns a signed session token for the given identity.
func (s *Sessions) Issue(id model.Identity) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Email: id.Email,
		Name:  id.Name,
		Admin: id.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies a session token and returns the identity it carries.
func (s *Sessions) Parse(token string) (model.Identity, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return model.Identity{}, fmt.Errorf("parse session: %w", err)
	}
	if !parsed.Valid {
		return model.Identity{}, ErrNoSession
	}
	return model.Identity{Email: claims.Email, Name: claims.Name, Admin: claims.Admin}, nil
}

// FromRequest extracts and verifies the session cookie on r.
func (s *Sessions) FromRequest(r *http.Request) (model.Identity, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return model.Identity{}, ErrNoSession
	}
	return s.Parse(cookie.Value)
}

// SetCookie attaches the session token to the response.
func (s *Sessions) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
