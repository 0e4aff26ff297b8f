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

const geminiEmbeddingModel = "text-embedding-004"

type geminiRequestPart struct {
	Text string `json:"text"`
}

type geminiRequestContent struct {
	Parts []geminiRequestPart `json:"parts"`
}

type geminiRequest struct {
	Model    string               `json:"model"`
	Content  geminiRequestContent `json:"content"`
	TaskType string               `json:"task_type,omitempty"`
}

type geminiResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// GeminiProvider calls the Google embedContent API. Transient failures are
// retried with exponential backoff before the error reaches the caller.
type GeminiProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{
		apiKey: apiKey,
		endpoint: fmt.Sprintf(
			"https://generativelanguage.googleapis.com/v1/models/%s:embedContent",
			geminiEmbeddingModel,
		),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	return doWithRetry(ctx, func() ([]float32, error) {
		return p.generateOnce(ctx, text, taskType)
	})
}

func (p *GeminiProvider) generateOnce(ctx context.Context, text string, taskType string) ([]float32, error) {
	body, err := json.Marshal(geminiRequest{
		Model:    geminiEmbeddingModel,
		Content:  geminiRequestContent{Parts: []geminiRequestPart{{Text: text}}},
		TaskType: taskType,
	})
	if err != nil {
		return nil, &apperr.EmbeddingError{Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, &apperr.EmbeddingError{Cause: err}
	}
	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		// Network or timeout failures are worth another attempt.
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
			Cause:      fmt.Errorf("gemini response: %s", string(resBody)),
			Transient:  isTransientStatus(res.StatusCode),
			RetryAfter: res.Header.Get("Retry-After"),
		}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		return nil, &apperr.EmbeddingError{Cause: err}
	}
	if len(parsed.Embedding.Values) == 0 {
		return nil, &apperr.EmbeddingError{Cause: fmt.Errorf("gemini returned an empty embedding")}
	}

	return normalizeVector(parsed.Embedding.Values), nil
}
