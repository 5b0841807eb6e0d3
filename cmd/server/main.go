package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/oxbrook/mediavault/internal/assistant"
	"github.com/oxbrook/mediavault/internal/auth"
	"github.com/oxbrook/mediavault/internal/blobstore"
	"github.com/oxbrook/mediavault/internal/config"
	"github.com/oxbrook/mediavault/internal/gallery"
	"github.com/oxbrook/mediavault/internal/handler"
	"github.com/oxbrook/mediavault/internal/metadata"
	"github.com/oxbrook/mediavault/internal/model"
	"github.com/oxbrook/mediavault/internal/router"
	"github.com/oxbrook/mediavault/internal/urlcache"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := metadata.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	objects, err := blobstore.NewMinioStore(cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket, cfg.S3.UseSSL)
	if err != nil {
		slog.Error("failed to create object store client", "error", err)
		os.Exit(1)
	}

	urls, err := urlcache.New(cfg.URLCacheSize, nil)
	if err != nil {
		slog.Error("failed to create url cache", "error", err)
		os.Exit(1)
	}

	sessions, err := auth.NewSessions(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL, cfg.Auth.CookieSecure)
	if err != nil {
		slog.Error("failed to create session manager", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Auth.BootstrapAdmin != "" {
		admin := &model.AllowedUser{Email: cfg.Auth.BootstrapAdmin, IsAdmin: true, AddedAt: time.Now().UTC()}
		if err := store.PutUser(ctx, admin); err != nil {
			slog.Error("failed to bootstrap admin", "email", cfg.Auth.BootstrapAdmin, "error", err)
			os.Exit(1)
		}
		slog.Info("bootstrapped admin", "email", cfg.Auth.BootstrapAdmin)
	}

	var authenticator *auth.Authenticator
	if cfg.Auth.Issuer != "" {
		authenticator, err = auth.NewAuthenticator(ctx, cfg.Auth, store)
		if err != nil {
			slog.Error("failed to set up OIDC", "issuer", cfg.Auth.Issuer, "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("no OIDC issuer configured; sign-in is disabled")
	}

	var llm *assistant.Client
	if cfg.Assistant.Endpoint != "" {
		llm = assistant.NewClient(cfg.Assistant.Endpoint, cfg.Assistant.APIKey, cfg.Assistant.Model,
			cfg.Assistant.MaxTokens, cfg.Assistant.Temperature, cfg.Assistant.Timeout)
	} else {
		slog.Warn("no assistant endpoint configured; suggestions are disabled")
	}

	h := &handler.Handler{
		Gallery:   gallery.New(store, objects, urls, cfg.SignTTL, cfg.UploadTTL),
		Store:     store,
		Sessions:  sessions,
		Auth:      authenticator,
		Assistant: llm,
		Config:    cfg,
	}

	slog.Info("starting server", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, router.New(h)); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
