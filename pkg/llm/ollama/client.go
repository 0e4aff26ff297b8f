// Package ollama implements llm.Provider against a local Ollama server, for
// development without a Google API key.
package ollama

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

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

func New(baseURL string, model string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1"
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		// First request after a cold start loads the model, which is slow.
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *Client) Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
	converted := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role == llm.RoleModel {
			role = "assistant"
		}
		converted = append(converted, chatMessage{Role: role, Content: m.Content})
	}

	payload := chatRequest{
		Model:    c.model,
		Messages: converted,
		Stream:   false,
		Options: &chatOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxOutputTokens,
			TopP:        opts.TopP,
			TopK:        opts.TopK,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &apperr.GenerationError{Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewBuffer(body))
	if err != nil {
		return "", &apperr.GenerationError{Cause: err}
	}
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
			Cause: fmt.Errorf("ollama status %d: %s", res.StatusCode, string(resBody)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		return "", &apperr.GenerationError{Cause: err}
	}
	if parsed.Message.Content == "" {
		return "", &apperr.GenerationError{Cause: fmt.Errorf("ollama returned an empty message")}
	}

	return parsed.Message.Content, nil
}
