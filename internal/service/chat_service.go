package service

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"regulation-chat-be/internal/constant"
	"regulation-chat-be/internal/dto"
	"regulation-chat-be/internal/entity"
	"regulation-chat-be/internal/pkg/logger"
	"regulation-chat-be/internal/repository/specification"
	"regulation-chat-be/internal/repository/unitofwork"
	"regulation-chat-be/pkg/chunker"
	"regulation-chat-be/pkg/fees"
	"regulation-chat-be/pkg/llm"
	"regulation-chat-be/pkg/rag/prompt"
	"regulation-chat-be/pkg/rag/response"
	"regulation-chat-be/pkg/rag/search"
	"regulation-chat-be/pkg/rag/validate"
)

type IChatService interface {
	SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetConversations(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.ChatMessageDTO, error)
	DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error
	SetBookmark(ctx context.Context, userId uuid.UUID, messageId uuid.UUID, bookmarked bool) error
	GetDocumentTypes(ctx context.Context) ([]string, error)
}

// recentConversationLimit bounds the conversation list endpoint.
const recentConversationLimit = 20

// generationOptions keeps regulatory answers deterministic and quotable.
var generationOptions = llm.Options{
	Temperature:     0.03,
	MaxOutputTokens: 1800,
	TopP:            0.75,
	TopK:            15,
}

type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	searchEngine *search.Engine
	llmProvider  llm.Provider
	feeResponder *fees.Responder
	cache        response.Cache
	log          logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	searchEngine *search.Engine,
	llmProvider llm.Provider,
	feeResponder *fees.Responder,
	cache response.Cache,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:   uowFactory,
		searchEngine: searchEngine,
		llmProvider:  llmProvider,
		feeResponder: feeResponder,
		cache:        cache,
		log:          log,
	}
}

func (cs *chatService) SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	started := time.Now()
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := cs.resolveConversation(ctx, uow, userId, request)
	if err != nil {
		return nil, err
	}

	// History is read before the user turn is persisted, so the current
	// question cannot come back as its own newest history entry.
	history, err := cs.loadHistory(ctx, uow, conversation.Id)
	if err != nil {
		cs.log.Warn("chat", "history load failed, answering without history", map[string]interface{}{
			"error": err.Error(),
		})
		history = nil
	}

	// The user turn is persisted before anything can fail, so a crash mid
	// generation never loses the question.
	userMessage := &entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Role:           constant.ChatMessageRoleUser,
		Content:        request.Question,
		CreatedAt:      time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, userMessage); err != nil {
		return nil, err
	}

	answer, citations, mode, cached := cs.answer(ctx, request, history)

	assistantMessage := &entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Role:           constant.ChatMessageRoleModel,
		Content:        answer,
		ResponseMode:   mode,
		Meta: map[string]interface{}{
			"mode":          mode,
			"cached":        cached,
			"context_used":  len(citations) > 0,
			"processing_ms": time.Since(started).Milliseconds(),
		},
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, assistantMessage); err != nil {
		return nil, err
	}

	citationEntities := toCitationEntities(assistantMessage.Id, citations)
	if err := uow.MessageRepository().CreateCitations(ctx, citationEntities); err != nil {
		// The answer is already persisted; losing its citation rows is
		// logged but not surfaced as a failed query.
		cs.log.Error("chat", "failed to persist citations", map[string]interface{}{
			"message_id": assistantMessage.Id.String(),
			"error":      err.Error(),
		})
	}

	return &dto.SendChatResponse{
		ConversationId:    conversation.Id,
		ConversationTitle: conversation.Title,
		Sent:              toMessageDTO(userMessage, nil),
		Reply:             toMessageDTO(assistantMessage, citations),
		Mode:              mode,
		Cached:            cached,
		ContextUsed:       len(citations) > 0,
		ProcessingMs:      time.Since(started).Milliseconds(),
	}, nil
}

// answer runs the query pipeline: cache, structured fee lookup, retrieval,
// validation, generation. It never returns an error; every failure maps to a
// user-safe message and a mode.
func (cs *chatService) answer(ctx context.Context, request *dto.SendChatRequest, history []llm.Message) (string, []*search.Citation, string, bool) {
	question := request.Question

	// The cache only serves single-shot lookups. A follow-up inside an
	// existing conversation depends on history, so the same words can need
	// a different answer.
	cacheable := request.ConversationId == nil
	if cacheable {
		if hit, found := cs.cache.Get(ctx, question); found {
			return hit.Answer, hit.Citations, hit.Mode, true
		}
	}

	if classification := fees.Classify(question); classification.IsStructured {
		if structured, ok := cs.feeResponder.Respond(classification); ok {
			citation := &search.Citation{
				DocumentName:  "fee-schedule",
				DocumentTitle: structured.SourceTitle,
				SectionTitle:  structured.SourceSection,
				Page:          chunker.PageKnown(1),
				Similarity:    1.0,
			}
			return structured.Text, []*search.Citation{citation}, constant.ResponseModeStructured, false
		}
	}

	retrieved, err := cs.searchEngine.Search(ctx, question, search.DefaultLimit, request.DocumentType)
	if err != nil {
		cs.log.Error("chat", "retrieval failed", map[string]interface{}{
			"error": err.Error(),
		})
		return constant.GenerationFailedMessage, nil, constant.ResponseModeError, false
	}

	validated := validate.Citations(retrieved)
	if validated.Rejected > 0 {
		cs.log.Warn("chat", "phantom citations rejected", map[string]interface{}{
			"rejected": validated.Rejected,
		})
	}

	if len(validated.Citations) == 0 {
		return constant.NoContextMessage, nil, constant.ResponseModeNoContext, false
	}

	messages := prompt.Build(question, validated.Citations, history)
	generated, err := cs.llmProvider.Complete(ctx, messages, generationOptions)
	if err != nil {
		cs.log.Error("chat", "generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return constant.GenerationFailedMessage, validated.Citations, constant.ResponseModeError, false
	}

	if cacheable {
		cs.cache.Set(ctx, question, &response.Cached{
			Answer:    generated,
			Mode:      constant.ResponseModeRAG,
			Citations: validated.Citations,
		})
	}
	return generated, validated.Citations, constant.ResponseModeRAG, false
}

func (cs *chatService) resolveConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, request *dto.SendChatRequest) (*entity.Conversation, error) {
	if request.ConversationId != nil {
		conversation, err := uow.ConversationRepository().FindOne(ctx,
			specification.ByID{ID: *request.ConversationId},
			specification.OwnedByUser{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			return nil, fiber.NewError(fiber.StatusNotFound, "conversation not found")
		}
		return conversation, nil
	}

	conversation := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     conversationTitle(request.Question),
		CreatedAt: time.Now(),
	}
	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (cs *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID) ([]llm.Message, error) {
	recent, err := uow.MessageRepository().FindRecent(ctx, conversationId, prompt.HistoryWindow)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(recent))
	for _, msg := range recent {
		role := llm.RoleUser
		if msg.Role == constant.ChatMessageRoleModel {
			role = llm.RoleModel
		}
		history = append(history, llm.Message{Role: role, Content: msg.Content})
	}
	return history, nil
}

func (cs *chatService) GetConversations(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: recentConversationLimit},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ConversationResponse, len(conversations))
	for i, c := range conversations {
		out[i] = &dto.ConversationResponse{
			Id:        c.Id,
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
	}
	return out, nil
}

func (cs *chatService) GetHistory(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.ChatMessageDTO, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if err := cs.requireOwnership(ctx, uow, userId, conversationId); err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindAllWithCitations(ctx, conversationId)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ChatMessageDTO, len(messages))
	for i, msg := range messages {
		out[i] = toStoredMessageDTO(msg)
	}
	return out, nil
}

func (cs *chatService) DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if err := cs.requireOwnership(ctx, uow, userId, conversationId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().DeleteByConversationId(ctx, conversationId); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, conversationId); err != nil {
		return err
	}

	return uow.Commit()
}

func (cs *chatService) SetBookmark(ctx context.Context, userId uuid.UUID, messageId uuid.UUID, bookmarked bool) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	message, err := uow.MessageRepository().FindOne(ctx, specification.ByID{ID: messageId})
	if err != nil {
		return err
	}
	if message == nil {
		return fiber.NewError(fiber.StatusNotFound, "message not found")
	}
	if err := cs.requireOwnership(ctx, uow, userId, message.ConversationId); err != nil {
		return err
	}

	return uow.MessageRepository().SetBookmarked(ctx, messageId, bookmarked)
}

func (cs *chatService) GetDocumentTypes(ctx context.Context) ([]string, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	return uow.ChunkRepository().DistinctDocumentTypes(ctx)
}

func (cs *chatService) requireOwnership(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, conversationId uuid.UUID) error {
	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if conversation == nil {
		return fiber.NewError(fiber.StatusNotFound, "conversation not found")
	}
	return nil
}

func conversationTitle(question string) string {
	title := strings.Join(strings.Fields(question), " ")
	if len(title) > 60 {
		title = strings.TrimSpace(title[:60]) + "..."
	}
	if title == "" {
		title = "New conversation"
	}
	return title
}

func toCitationEntities(messageId uuid.UUID, citations []*search.Citation) []*entity.Citation {
	out := make([]*entity.Citation, len(citations))
	for i, c := range citations {
		out[i] = &entity.Citation{
			Id:            uuid.New(),
			MessageId:     messageId,
			DocumentName:  c.DocumentName,
			DocumentTitle: c.DocumentTitle,
			DocumentType:  c.DocumentType,
			Page:          c.Page,
			SectionTitle:  c.SectionTitle,
			Similarity:    c.Similarity,
			CreatedAt:     time.Now(),
		}
	}
	return out
}

func toMessageDTO(msg *entity.Message, citations []*search.Citation) *dto.ChatMessageDTO {
	out := &dto.ChatMessageDTO{
		Id:         msg.Id,
		Role:       msg.Role,
		Content:    msg.Content,
		Bookmarked: msg.Bookmarked,
		CreatedAt:  msg.CreatedAt,
	}
	for _, c := range citations {
		citationDTO := dto.CitationDTO{
			DocumentName:  c.DocumentName,
			DocumentTitle: c.DocumentTitle,
			SectionTitle:  c.SectionTitle,
			Snippet:       snippet(c.Content),
			Similarity:    c.Similarity,
		}
		if page, known := c.Page.Number(); known {
			citationDTO.Page = &page
		}
		out.Citations = append(out.Citations, citationDTO)
	}
	return out
}

func toStoredMessageDTO(msg *entity.Message) *dto.ChatMessageDTO {
	out := &dto.ChatMessageDTO{
		Id:         msg.Id,
		Role:       msg.Role,
		Content:    msg.Content,
		Bookmarked: msg.Bookmarked,
		CreatedAt:  msg.CreatedAt,
	}
	for _, c := range msg.Citations {
		citationDTO := dto.CitationDTO{
			DocumentName:  c.DocumentName,
			DocumentTitle: c.DocumentTitle,
			SectionTitle:  c.SectionTitle,
			Similarity:    c.Similarity,
		}
		if page, known := c.Page.Number(); known {
			citationDTO.Page = &page
		}
		out.Citations = append(out.Citations, citationDTO)
	}
	return out
}

func snippet(content string) string {
	if len(content) <= 200 {
		return content
	}
	return strings.TrimSpace(content[:200]) + "..."
}
