// Package embedding turns text into vectors through an interchangeable
// provider. All vectors are normalized to unit length before they leave the
// package, so cosine similarity downstream is meaningful regardless of which
// provider produced them.
package embedding

import (
	"context"
	"math"
)

// Task types understood by the Gemini embedContent API. Ollama ignores them.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// Dimensions is the vector width produced by the default model. The chunk
// table's vector column is declared with this width.
const Dimensions = 768

// Provider generates an embedding for a single text.
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
}

// normalizeVector scales a vector to unit length. Cosine distance in pgvector
// assumes normalized vectors.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
