package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/oxbrook/mediavault/internal/config"
	"github.com/oxbrook/mediavault/internal/metadata"
	"github.com/oxbrook/mediavault/internal/model"
	"golang.org/x/oauth2"
)

// ErrNotAllowlisted is returned when a verified identity's email is missing
// from the allowlist.
var ErrNotAllowlisted = errors.New("email is not on the allowlist")

// Authenticator runs the OIDC code flow and gates sign-in on the allowlist.
type Authenticator struct {
	config   oauth2.Config
	verifier *oidc.IDTokenVerifier
	users    metadata.Store
}

// NewAuthenticator discovers the OIDC provider at the configured issuer.
func NewAuthenticator(ctx context.Context, cfg config.AuthConfig, users metadata.Store) (*Authenticator, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("create OIDC provider: %w", err)
	}
	return &Authenticator{
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		users:    users,
	}, nil
}

// LoginURL returns the provider's authorization URL for the given state.
func (a *Authenticator) LoginURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// Authenticate exchanges the authorization code, verifies the ID token and
// checks the email against the allowlist. The admin flag on the returned
// identity comes from the allowlist record, never from the provider.
func (a *Authenticator) Authenticate(ctx context.Context, code string) (model.Identity, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return model.Identity{}, fmt.Errorf("exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return model.Identity{}, errors.New("no id_token in token response")
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return model.Identity{}, fmt.Errorf("verify id token: %w", err)
	}

	var claims struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Verified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return model.Identity{}, fmt.Errorf("parse claims: %w", err)
	}
	if claims.Email == "" {
		return model.Identity{}, errors.New("id token carries no email")
	}

	user, err := a.users.GetUser(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return model.Identity{}, ErrNotAllowlisted
		}
		return model.Identity{}, fmt.Errorf("allowlist lookup: %w", err)
	}

	return model.Identity{
		Email: user.Email,
		Name:  claims.Name,
		Admin: user.IsAdmin,
	}, nil
}
