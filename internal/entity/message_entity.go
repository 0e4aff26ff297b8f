package entity

import (
	"time"

	"github.com/google/uuid"

	"regulation-chat-be/pkg/chunker"
)

type Message struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationId uuid.UUID `gorm:"type:uuid;index"`
	Role           string
	Content        string
	ResponseMode   string
	Bookmarked     bool
	Meta           map[string]interface{}
	Citations      []*Citation
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

// Citation is a validated source reference attached to an assistant message.
// Page is unknown when the chunk's page could not be honestly determined at
// ingestion time; such citations cite the document without a page.
type Citation struct {
	Id            uuid.UUID
	MessageId     uuid.UUID
	DocumentName  string
	DocumentTitle string
	DocumentType  string
	Page          chunker.PageRef
	SectionTitle  string
	Similarity    float64
	CreatedAt     time.Time
}
