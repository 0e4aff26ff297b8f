package contract

import (
	"context"

	"regulation-chat-be/internal/entity"
	"regulation-chat-be/internal/repository/specification"
)

type ChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.Chunk) error
	DeleteByDocumentName(ctx context.Context, documentName string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// DistinctDocumentTypes lists the document type labels present in the
	// corpus, for the filter UI.
	DistinctDocumentTypes(ctx context.Context) ([]string, error)

	// SearchSimilarWithScore runs pure vector search, returning chunks whose
	// cosine similarity to the query embedding is at least threshold.
	// documentType narrows the corpus when non-empty.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, documentType string, threshold float64) ([]*entity.ScoredChunk, error)

	// SearchHybridWithScore blends vector similarity with full-text rank.
	// The reported score stays in [0, 1] so downstream thresholds apply
	// unchanged.
	SearchHybridWithScore(ctx context.Context, embedding []float32, queryText string, limit int, documentType string, threshold float64) ([]*entity.ScoredChunk, error)
}
