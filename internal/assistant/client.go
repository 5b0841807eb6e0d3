// Package assistant talks to a hosted LLM endpoint speaking the Anthropic
// messages JSON envelope. It backs the chat surface and the image
// metadata-suggestion flow.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ContentBlock is one element of a message: text, or a base64 image.
type ContentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

// ImageSource carries base64 image bytes.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// Message is one turn of a conversation.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

// ImageBlock builds a base64 image content block.
func ImageBlock(mediaType, data string) ContentBlock {
	return ContentBlock{
		Type:   "image",
		Source: &ImageSource{Type: "base64", MediaType: mediaType, Data: data},
	}
}

type invokeRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

type invokeResponse struct {
	OutputText string `json:"output_text"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client calls the LLM endpoint.
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpc       *http.Client
}

// NewClient creates an LLM client. endpoint is the full URL of the messages
// API.
func NewClient(endpoint, apiKey, model string, maxTokens int, temperature float64, timeout time.Duration) *Client {
	if maxTokens <= 0 {
		maxTokens = 600
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint:    endpoint,
		apiKey:      apiKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		httpc:       &http.Client{Timeout: timeout},
	}
}

// Complete sends the conversation and returns the text content blocks of
// the reply, joined by newlines.
func (c *Client) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if c.endpoint == "" {
		return "", errors.New("assistant endpoint is not configured")
	}

	body, err := json.Marshal(invokeRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: temperature,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("call assistant: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed invokeResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("assistant returned %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("assistant returned %d", resp.StatusCode)
	}

	// Prefer output_text when present, otherwise join the text blocks.
	if parsed.OutputText != "" {
		return parsed.OutputText, nil
	}
	var out bytes.Buffer
	for _, block := range parsed.Content {
		if block.Type != "text" || block.Text == "" {
			continue
		}
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(block.Text)
	}
	return out.String(), nil
}

// Temperature returns the client's default sampling temperature.
func (c *Client) Temperature() float64 {
	return c.temperature
}
