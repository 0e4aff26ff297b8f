package mapper

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"regulation-chat-be/internal/entity"
	"regulation-chat-be/internal/model"
	"regulation-chat-be/pkg/chunker"
)

type MessageMapper struct{}

func NewMessageMapper() *MessageMapper {
	return &MessageMapper{}
}

func (m *MessageMapper) ToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		t := msg.UpdatedAt
		updatedAt = &t
	}

	var meta map[string]interface{}
	if len(msg.Meta) > 0 {
		// Corrupt meta is dropped rather than failing the read.
		_ = json.Unmarshal(msg.Meta, &meta)
	}

	return &entity.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           msg.Role,
		Content:        msg.Content,
		ResponseMode:   msg.ResponseMode,
		Bookmarked:     msg.Bookmarked,
		Meta:           meta,
		CreatedAt:      msg.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      msg.DeletedAt.Valid,
	}
}

func (m *MessageMapper) ToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if msg.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	} else if msg.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	var meta datatypes.JSON
	if len(msg.Meta) > 0 {
		if raw, err := json.Marshal(msg.Meta); err == nil {
			meta = datatypes.JSON(raw)
		}
	}

	return &model.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           msg.Role,
		Content:        msg.Content,
		ResponseMode:   msg.ResponseMode,
		Bookmarked:     msg.Bookmarked,
		Meta:           meta,
		CreatedAt:      msg.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *MessageMapper) ToEntities(messages []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(messages))
	for i, msg := range messages {
		entities[i] = m.ToEntity(msg)
	}
	return entities
}

func (m *MessageMapper) CitationToEntity(c *model.MessageCitation) *entity.Citation {
	if c == nil {
		return nil
	}
	return &entity.Citation{
		Id:            c.Id,
		MessageId:     c.MessageId,
		DocumentName:  c.DocumentName,
		DocumentTitle: c.DocumentTitle,
		DocumentType:  c.DocumentType,
		Page:          chunker.PageFromSentinel(c.PageNumber),
		SectionTitle:  c.SectionTitle,
		Similarity:    c.Similarity,
		CreatedAt:     c.CreatedAt,
	}
}

func (m *MessageMapper) CitationToModel(c *entity.Citation) *model.MessageCitation {
	if c == nil {
		return nil
	}
	return &model.MessageCitation{
		Id:            c.Id,
		MessageId:     c.MessageId,
		DocumentName:  c.DocumentName,
		DocumentTitle: c.DocumentTitle,
		DocumentType:  c.DocumentType,
		PageNumber:    c.Page.Sentinel(),
		SectionTitle:  c.SectionTitle,
		Similarity:    c.Similarity,
		CreatedAt:     c.CreatedAt,
	}
}

func (m *MessageMapper) CitationsToEntities(citations []*model.MessageCitation) []*entity.Citation {
	entities := make([]*entity.Citation, len(citations))
	for i, c := range citations {
		entities[i] = m.CitationToEntity(c)
	}
	return entities
}

func (m *MessageMapper) CitationsToModels(citations []*entity.Citation) []*model.MessageCitation {
	models := make([]*model.MessageCitation, len(citations))
	for i, c := range citations {
		models[i] = m.CitationToModel(c)
	}
	return models
}
