package handler

import (
	"encoding/json"
	"net/http"

	"github.com/oxbrook/mediavault/internal/api"
	"github.com/oxbrook/mediavault/internal/auth"
)

// IssueUpload handles POST /api/uploads. The caller declares a filename and
// content type and gets back presigned credentials scoped to a fresh key.
func (h *Handler) IssueUpload(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.BadRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	creds, err := h.Gallery.IssueUpload(r.Context(), auth.IdentityFrom(r.Context()), body.FileName, body.FileType)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, creds)
}
