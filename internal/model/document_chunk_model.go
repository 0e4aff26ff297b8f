package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentChunk struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentName string    `gorm:"type:varchar(255);not null;index"`
	DocumentType string    `gorm:"type:varchar(100);not null;index"`
	Content      string    `gorm:"type:text;not null"`
	SectionTitle string    `gorm:"type:text"`
	// PageNumber stores 0 when the page is unknown. The mapper converts to
	// and from the typed page reference; nothing else reads the raw value.
	PageNumber     int             `gorm:"default:0"`
	ChunkIndex     int             `gorm:"default:0"`
	ActualPdfPages int             `gorm:"not null"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
