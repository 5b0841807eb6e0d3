package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oxbrook/mediavault/internal/api"
	"github.com/oxbrook/mediavault/internal/auth"
	"github.com/oxbrook/mediavault/internal/gallery"
	"github.com/oxbrook/mediavault/internal/model"
)

// listResponse is one page of image records with the cursor for the next
// page. An empty cursor means the listing is exhausted.
type listResponse struct {
	Items            []*model.Image `json:"items"`
	LastEvaluatedKey string         `json:"lastEvaluatedKey,omitempty"`
}

// CreateImage handles POST /api/images -- records metadata for an object
// the caller already uploaded with presigned credentials.
func (h *Handler) CreateImage(w http.ResponseWriter, r *http.Request) {
	var in gallery.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.BadRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	img, err := h.Gallery.Create(r.Context(), auth.IdentityFrom(r.Context()), in)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, img)
}

// GetImage handles GET /api/images/{imageId}.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.Gallery.Get(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "imageId"))
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, img)
}

// ListImages handles GET /api/images. Supports pageSize and startKey query
// parameters for cursor pagination.
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	pageSize := 0
	if v := r.URL.Query().Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			api.BadRequest(w, "pageSize must be a positive integer")
			return
		}
		pageSize = n
	}

	items, nextKey, err := h.Gallery.List(r.Context(), auth.IdentityFrom(r.Context()), pageSize, r.URL.Query().Get("startKey"))
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, listResponse{Items: items, LastEvaluatedKey: nextKey})
}

// UpdateImage handles PATCH /api/images/{imageId}.
func (h *Handler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	var in gallery.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.BadRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	img, err := h.Gallery.Update(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "imageId"), in)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, img)
}

// DeleteImage handles DELETE /api/images/{imageId}.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.Gallery.Delete(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "imageId")); err != nil {
		api.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
