package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/oxbrook/mediavault/internal/api"
	"github.com/oxbrook/mediavault/internal/assistant"
)

// maxSuggestBody bounds the suggest request body; the image arrives inline
// as base64.
const maxSuggestBody = 20 << 20

// SuggestMetadata handles POST /api/assistant/suggest. The caller sends an
// image inline and gets back a proposed title, tags and description.
func (h *Handler) SuggestMetadata(w http.ResponseWriter, r *http.Request) {
	if h.Assistant == nil {
		api.WriteError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}

	var body struct {
		ImageBase64 string   `json:"imageBase64"`
		Context     string   `json:"context"`
		Temperature *float64 `json:"temperature"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSuggestBody)).Decode(&body); err != nil {
		api.BadRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	if body.ImageBase64 == "" {
		api.BadRequest(w, "imageBase64 is required")
		return
	}

	imageData, err := base64.StdEncoding.DecodeString(body.ImageBase64)
	if err != nil {
		api.BadRequest(w, "imageBase64 is not valid base64")
		return
	}

	temperature := h.Assistant.Temperature()
	if body.Temperature != nil {
		temperature = *body.Temperature
	}

	suggestion, err := h.Assistant.SuggestMetadata(r.Context(), imageData, body.Context, temperature)
	if err != nil {
		api.Internal(w, err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, suggestion)
}

// Chat handles POST /api/assistant/chat -- a plain conversational relay to
// the LLM endpoint.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.Assistant == nil {
		api.WriteError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}

	var body struct {
		Messages []assistant.Message `json:"messages"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSuggestBody)).Decode(&body); err != nil {
		api.BadRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	if len(body.Messages) == 0 {
		api.BadRequest(w, "messages must not be empty")
		return
	}

	reply, err := h.Assistant.Complete(r.Context(), body.Messages, h.Assistant.Temperature())
	if err != nil {
		api.Internal(w, err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
