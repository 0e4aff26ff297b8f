package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regulation-chat-be/pkg/apperr"
)

func newTestProvider(serverURL string) *GeminiProvider {
	return &GeminiProvider{
		apiKey:   "test-key",
		endpoint: serverURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGeminiGenerateNormalizesVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		w.Write([]byte(`{"embedding":{"values":[3,4]}}`))
	}))
	defer server.Close()

	values, err := newTestProvider(server.URL).Generate(context.Background(), "hello", TaskRetrievalQuery)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.InDelta(t, 0.6, values[0], 1e-6)
	assert.InDelta(t, 0.8, values[1], 1e-6)
}

func TestGeminiGenerateRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"embedding":{"values":[1,0,0]}}`))
	}))
	defer server.Close()

	values, err := newTestProvider(server.URL).Generate(context.Background(), "hello", TaskRetrievalDocument)
	require.NoError(t, err)
	assert.Len(t, values, 3)
	assert.EqualValues(t, 3, calls.Load())
}

func TestGeminiGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).Generate(context.Background(), "hello", TaskRetrievalDocument)
	require.Error(t, err)
	assert.False(t, apperr.IsRetryable(err))
	assert.EqualValues(t, 1, calls.Load())
}

func TestGeminiGenerateGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).Generate(context.Background(), "hello", TaskRetrievalQuery)
	require.Error(t, err)
	assert.True(t, apperr.IsRetryable(err))
	assert.EqualValues(t, maxAttempts, calls.Load())
}

func TestGeminiGenerateHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestProvider(server.URL).Generate(ctx, "hello", TaskRetrievalQuery)
	require.Error(t, err)
}
