package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"regulation-chat-be/internal/entity"
	"regulation-chat-be/internal/mapper"
	"regulation-chat-be/internal/model"
	"regulation-chat-be/internal/repository/contract"
	"regulation-chat-be/internal/repository/specification"
	"regulation-chat-be/pkg/apperr"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MessageMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewMessageMapper(),
	}
}

func (r *MessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m := r.mapper.ToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperr.Store("message insert", err)
	}
	citations := message.Citations
	*message = *r.mapper.ToEntity(m)
	message.Citations = citations
	return nil
}

func (r *MessageRepositoryImpl) CreateCitations(ctx context.Context, citations []*entity.Citation) error {
	if len(citations) == 0 {
		return nil
	}

	models := r.mapper.CitationsToModels(citations)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return apperr.Store("citation insert", err)
	}

	for i, m := range models {
		*citations[i] = *r.mapper.CitationToEntity(m)
	}
	return nil
}

func (r *MessageRepositoryImpl) SetBookmarked(ctx context.Context, id uuid.UUID, bookmarked bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("id = ?", id).
		Update("bookmarked", bookmarked)
	if result.Error != nil {
		return apperr.Store("message bookmark", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.Store("message bookmark", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *MessageRepositoryImpl) DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error {
	return apperr.Store("message delete by conversation",
		r.db.WithContext(ctx).
			Where("conversation_id = ?", conversationId).
			Delete(&model.Message{}).Error)
}

func (r *MessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	var m model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Store("message find", err)
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	var models []*model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperr.Store("message find", err)
	}
	return r.mapper.ToEntities(models), nil
}

func (r *MessageRepositoryImpl) FindAllWithCitations(ctx context.Context, conversationId uuid.UUID) ([]*entity.Message, error) {
	var models []*model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperr.Store("message find", err)
	}
	if len(models) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(models))
	for i, m := range models {
		ids[i] = m.Id
	}

	var citationModels []*model.MessageCitation
	err = r.db.WithContext(ctx).
		Where("message_id IN ?", ids).
		Order("similarity DESC").
		Find(&citationModels).Error
	if err != nil {
		return nil, apperr.Store("citation find", err)
	}

	byMessage := make(map[uuid.UUID][]*entity.Citation)
	for _, c := range citationModels {
		byMessage[c.MessageId] = append(byMessage[c.MessageId], r.mapper.CitationToEntity(c))
	}

	messages := r.mapper.ToEntities(models)
	for _, msg := range messages {
		msg.Citations = byMessage[msg.Id]
	}
	return messages, nil
}

func (r *MessageRepositoryImpl) FindRecent(ctx context.Context, conversationId uuid.UUID, limit int) ([]*entity.Message, error) {
	var models []*model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperr.Store("message find recent", err)
	}

	// Reverse into chronological order for the prompt.
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return r.mapper.ToEntities(models), nil
}
