package entity

import (
	"time"

	"github.com/google/uuid"

	"regulation-chat-be/pkg/chunker"
)

type Chunk struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentName   string
	DocumentType   string
	Content        string
	SectionTitle   string
	Page           chunker.PageRef
	ChunkIndex     int
	ActualPdfPages int
	Embedding      []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

// ScoredChunk is a chunk returned from retrieval together with its
// relevance score in [0, 1].
type ScoredChunk struct {
	Chunk      *Chunk
	Similarity float64
}
