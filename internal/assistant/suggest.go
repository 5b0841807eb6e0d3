package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Suggestion is the metadata proposed for an image.
type Suggestion struct {
	Title       string   `json:"title"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

const basePrompt = `Return ONLY strict JSON in this shape: {
  "title": string,
  "tags": string[],
  "description": string
}
Rules: no prose, no code fences, no markdown, no trailing commas. Tags must be concise strings. Title should be short and descriptive.`

const maxContextLength = 500

var (
	collapseWhitespace = regexp.MustCompile(`\s+`)
	injectionMarkers   = regexp.MustCompile(`[<>{}\[\]]`)
	controlChars       = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	codeFence          = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")
)

// sanitizeContext bounds and cleans user-supplied context before it is
// prepended to the prompt, so it cannot smuggle in markup or control
// sequences.
func sanitizeContext(context string) string {
	s := strings.TrimSpace(context)
	if len(s) > maxContextLength {
		s = s[:maxContextLength]
	}
	s = collapseWhitespace.ReplaceAllString(s, " ")
	s = injectionMarkers.ReplaceAllString(s, "")
	s = controlChars.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SuggestMetadata downscales the image, sends it to the LLM with a
// strict-JSON prompt and parses the proposed title/tags/description.
func (c *Client) SuggestMetadata(ctx context.Context, imageData []byte, userContext string, temperature float64) (*Suggestion, error) {
	encoded, mediaType, err := downscale(imageData)
	if err != nil {
		return nil, err
	}

	prompt := basePrompt
	if cleaned := sanitizeContext(userContext); cleaned != "" {
		prompt = cleaned + "\n\n" + basePrompt
	}

	messages := []Message{
		{
			Role: "user",
			Content: []ContentBlock{
				ImageBlock(mediaType, encoded),
				TextBlock(prompt),
			},
		},
	}

	text, err := c.Complete(ctx, messages, temperature)
	if err != nil {
		return nil, err
	}

	return parseSuggestion(text)
}

// parseSuggestion extracts the JSON object from the reply, tolerating code
// fences the model was told not to emit.
func parseSuggestion(text string) (*Suggestion, error) {
	trimmed := strings.TrimSpace(text)
	if m := codeFence.FindStringSubmatch(trimmed); m != nil {
		trimmed = m[1]
	}

	s := &Suggestion{}
	if err := json.Unmarshal([]byte(trimmed), s); err != nil {
		return nil, fmt.Errorf("parse suggestion: %w", err)
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return s, nil
}
