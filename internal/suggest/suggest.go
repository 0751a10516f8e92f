// Package suggest generates checklist item suggestions for an area name by
// calling the Claude Messages API. It is strictly best-effort: any failure
// degrades to a placeholder list so callers can always render something and
// never need an error path.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 1024
	defaultAPIURL    = "https://api.anthropic.com/v1/messages"
	apiVersion       = "2023-06-01"

	// itemCount is how many checklist points to ask for.
	itemCount = 5
)

// placeholder is returned whenever a suggestion cannot be produced.
var placeholder = []string{"Suggestions unavailable. Add checklist items manually."}

// Suggester produces checklist suggestions for task areas.
type Suggester struct {
	apiKey    string
	apiURL    string
	model     string
	maxTokens int
	client    *http.Client
}

// New creates a Suggester with the given credential and model settings.
// Empty model or non-positive maxTokens fall back to defaults.
func New(apiKey, modelName string, maxTokens int) *Suggester {
	if modelName == "" {
		modelName = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Suggester{
		apiKey:    apiKey,
		apiURL:    defaultAPIURL,
		model:     modelName,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// itemList is the JSON object shape requested from the model.
type itemList struct {
	Items []string `json:"items"`
}

// Suggest returns short checklist items for the given area name. It never
// returns an error: with no API key or on any failure it returns the
// placeholder list.
func (s *Suggester) Suggest(ctx context.Context, areaName string) []string {
	if s.apiKey == "" {
		return placeholder
	}

	text, err := s.callAPI(ctx, areaName)
	if err != nil {
		return placeholder
	}

	var list itemList
	if err := json.Unmarshal([]byte(text), &list); err != nil || len(list.Items) == 0 {
		return placeholder
	}
	return list.Items
}

// callAPI makes a single request to the Messages API and returns the
// response text.
func (s *Suggester) callAPI(ctx context.Context, areaName string) (string, error) {
	reqBody := apiRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System: "You suggest inspection checklists for frontline work areas. " +
			`Respond with only a JSON object of the form {"items": ["...", ...]}.`,
		Messages: []apiMessage{
			{
				Role: "user",
				Content: fmt.Sprintf(
					"List %d concise, concrete cleaning and tidying points "+
						"for the area %q, suitable for an employee to check off.",
					itemCount, areaName,
				),
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.apiURL, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling suggestion API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	for _, block := range result.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("response contained no text block")
}
