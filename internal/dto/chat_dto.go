package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendChatRequest struct {
	ConversationId *uuid.UUID `json:"conversation_id,omitempty"`
	Question       string     `json:"question" validate:"required,max=1000"`
	DocumentType   string     `json:"document_type,omitempty"`
}

// CitationDTO renders a validated citation. Page is omitted entirely when
// the page is unknown; a number is only ever present when it is trusted.
type CitationDTO struct {
	DocumentName  string  `json:"document_name"`
	DocumentTitle string  `json:"document_title"`
	SectionTitle  string  `json:"section_title,omitempty"`
	Page          *int    `json:"page,omitempty"`
	Snippet       string  `json:"snippet,omitempty"`
	Similarity    float64 `json:"similarity"`
}

type ChatMessageDTO struct {
	Id         uuid.UUID     `json:"id"`
	Role       string        `json:"role"`
	Content    string        `json:"content"`
	Bookmarked bool          `json:"bookmarked"`
	Citations  []CitationDTO `json:"citations,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

type SendChatResponse struct {
	ConversationId    uuid.UUID       `json:"conversation_id"`
	ConversationTitle string          `json:"title"`
	Sent              *ChatMessageDTO `json:"sent"`
	Reply             *ChatMessageDTO `json:"reply"`
	Mode              string          `json:"mode"`
	Cached            bool            `json:"cached"`
	ContextUsed       bool            `json:"context_used"`
	ProcessingMs      int64           `json:"processing_ms"`
}

type ConversationResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type BookmarkRequest struct {
	Bookmarked bool `json:"bookmarked"`
}

type DocumentTypesResponse struct {
	DocumentTypes []string `json:"document_types"`
}
