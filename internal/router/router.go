// Package router wires handlers, session middleware and metrics into the
// chi router.
package router

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oxbrook/mediavault/internal/api"
	"github.com/oxbrook/mediavault/internal/auth"
	"github.com/oxbrook/mediavault/internal/handler"
)

// New builds the HTTP router around a fully wired Handler.
func New(h *handler.Handler) chi.Router {
	r := chi.NewRouter()

	// CORS must run first so preflight OPTIONS are answered before auth.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)

	r.Get("/health", health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Sign-in flow; no session required.
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", h.Login)
		r.Get("/callback", h.Callback)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})

	// Everything under /api requires a valid session.
	r.Route("/api", func(r chi.Router) {
		r.Use(h.Sessions.RequireUser)

		r.Post("/uploads", h.IssueUpload)

		r.Post("/images", h.CreateImage)
		r.Get("/images", h.ListImages)
		r.Get("/images/{imageId}", h.GetImage)
		r.Patch("/images/{imageId}", h.UpdateImage)
		r.Delete("/images/{imageId}", h.DeleteImage)

		r.Post("/assistant/suggest", h.SuggestMetadata)
		r.Post("/assistant/chat", h.Chat)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Get("/users", h.ListUsers)
			r.Post("/users", h.PutUser)
			r.Delete("/users/{email}", h.DeleteUser)
		})
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		slog.Error("health check response", "error", err)
	}
}
