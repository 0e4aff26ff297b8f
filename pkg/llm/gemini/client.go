// Package gemini implements llm.Provider for the Google generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"regulation-chat-be/pkg/apperr"
	"regulation-chat-be/pkg/llm"
)

const defaultModel = "gemini-1.5-flash"

type chatPart struct {
	Text string `json:"text"`
}

type chatContent struct {
	Parts []chatPart `json:"parts"`
	Role  string     `json:"role"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
}

type chatRequest struct {
	Contents         []chatContent     `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type chatResponse struct {
	Candidates []struct {
		Content struct {
			Parts []chatPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func New(apiKey string, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		apiKey: apiKey,
		endpoint: fmt.Sprintf(
			"https://generativelanguage.googleapis.com/v1/models/%s:generateContent",
			model,
		),
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

func (c *Client) Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
	contents := make([]chatContent, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, chatContent{
			Parts: []chatPart{{Text: m.Content}},
			Role:  m.Role,
		})
	}

	payload := chatRequest{
		Contents: contents,
		GenerationConfig: &generationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxOutputTokens,
			TopP:            opts.TopP,
			TopK:            opts.TopK,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &apperr.GenerationError{Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", &apperr.GenerationError{Cause: err}
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", &apperr.GenerationError{Cause: err}
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &apperr.GenerationError{Cause: err}
	}

	if res.StatusCode != http.StatusOK {
		return "", &apperr.GenerationError{
			Cause: fmt.Errorf("gemini status %d: %s", res.StatusCode, string(resBody)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		return "", &apperr.GenerationError{Cause: err}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &apperr.GenerationError{Cause: fmt.Errorf("gemini returned no candidates")}
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
