package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"regulation-chat-be/pkg/apperr"
)

// OllamaProvider generates embeddings with a local Ollama model, useful for
// development without a Google API key. Task types are ignored.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaProvider(baseURL string, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (p *OllamaProvider) Generate(ctx context.Context, text string, _ string) ([]float32, error) {
	return doWithRetry(ctx, func() ([]float32, error) {
		return p.generateOnce(ctx, text)
	})
}

func (p *OllamaProvider) generateOnce(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, &apperr.EmbeddingError{Cause: err}
	}

	endpoint := fmt.Sprintf("%s/api/embeddings", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, &apperr.EmbeddingError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, &apperr.EmbeddingError{Cause: err, Transient: true}
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &apperr.EmbeddingError{Cause: err, Transient: true}
	}

	if res.StatusCode != http.StatusOK {
		return nil, &apperr.EmbeddingError{
			StatusCode: res.StatusCode,
			Cause:      fmt.Errorf("ollama response: %s", string(resBody)),
			Transient:  isTransientStatus(res.StatusCode),
		}
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		return nil, &apperr.EmbeddingError{Cause: err}
	}
	if len(parsed.Embedding) == 0 {
		return nil, &apperr.EmbeddingError{Cause: fmt.Errorf("ollama returned an empty embedding")}
	}

	values := make([]float32, len(parsed.Embedding))
	for i, v := range parsed.Embedding {
		values[i] = float32(v)
	}
	return normalizeVector(values), nil
}
