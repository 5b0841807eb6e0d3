package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEndpoint(t *testing.T, status int, body interface{}, gotReq *invokeRequest) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotReq != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(gotReq))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestCompleteJoinsTextBlocks(t *testing.T) {
	var got invokeRequest
	ts := fakeEndpoint(t, http.StatusOK, map[string]interface{}{
		"content": []map[string]string{
			{"type": "text", "text": "hello"},
			{"type": "tool_use", "text": "ignored"},
			{"type": "text", "text": "world"},
		},
	}, &got)

	c := NewClient(ts.URL, "key", "claude-3-5-sonnet-20241022", 600, 0.2, 5*time.Second)
	text, err := c.Complete(context.Background(), []Message{
		{Role: "user", Content: []ContentBlock{TextBlock("hi")}},
	}, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", text)

	assert.Equal(t, "claude-3-5-sonnet-20241022", got.Model)
	assert.Equal(t, 600, got.MaxTokens)
	assert.Equal(t, 0.7, got.Temperature)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hi", got.Messages[0].Content[0].Text)
}

func TestCompletePrefersOutputText(t *testing.T) {
	ts := fakeEndpoint(t, http.StatusOK, map[string]interface{}{
		"output_text": "direct",
		"content":     []map[string]string{{"type": "text", "text": "blocks"}},
	}, nil)

	c := NewClient(ts.URL, "", "m", 0, 0, 0)
	text, err := c.Complete(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "direct", text)
}

func TestCompleteUpstreamError(t *testing.T) {
	ts := fakeEndpoint(t, http.StatusBadRequest, map[string]interface{}{
		"error": map[string]string{"message": "prompt too long"},
	}, nil)

	c := NewClient(ts.URL, "", "m", 0, 0, 0)
	_, err := c.Complete(context.Background(), nil, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt too long")
}

func TestCompleteNoEndpoint(t *testing.T) {
	c := NewClient("", "", "m", 0, 0, 0)
	_, err := c.Complete(context.Background(), nil, 0)
	assert.Error(t, err)
}
