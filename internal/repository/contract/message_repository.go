package contract

import (
	"context"

	"github.com/google/uuid"

	"regulation-chat-be/internal/entity"
	"regulation-chat-be/internal/repository/specification"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	CreateCitations(ctx context.Context, citations []*entity.Citation) error
	SetBookmarked(ctx context.Context, id uuid.UUID, bookmarked bool) error
	DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)

	// FindAllWithCitations loads messages plus their citations in one pass,
	// ordered oldest first.
	FindAllWithCitations(ctx context.Context, conversationId uuid.UUID) ([]*entity.Message, error)

	// FindRecent returns the newest limit messages of a conversation,
	// oldest first, for the history window sent to the model.
	FindRecent(ctx context.Context, conversationId uuid.UUID, limit int) ([]*entity.Message, error)
}
