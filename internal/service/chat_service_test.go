package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regulation-chat-be/internal/constant"
	"regulation-chat-be/internal/dto"
	"regulation-chat-be/internal/entity"
	"regulation-chat-be/internal/pkg/logger"
	"regulation-chat-be/internal/repository/contract"
	"regulation-chat-be/internal/repository/specification"
	"regulation-chat-be/internal/repository/unitofwork"
	"regulation-chat-be/pkg/chunker"
	"regulation-chat-be/pkg/fees"
	"regulation-chat-be/pkg/llm"
	"regulation-chat-be/pkg/rag/response"
	"regulation-chat-be/pkg/rag/search"
	"regulation-chat-be/pkg/titles"
)

type fakeChunkRepo struct {
	hybridResults []*entity.ScoredChunk
	hybridCalls   int
	semanticCalls int
	documentTypes []string
}

func (f *fakeChunkRepo) CreateBulk(context.Context, []*entity.Chunk) error { return nil }
func (f *fakeChunkRepo) DeleteByDocumentName(context.Context, string) error { return nil }
func (f *fakeChunkRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Chunk, error) {
	return nil, nil
}
func (f *fakeChunkRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return 0, nil
}
func (f *fakeChunkRepo) DistinctDocumentTypes(context.Context) ([]string, error) {
	return f.documentTypes, nil
}
func (f *fakeChunkRepo) SearchSimilarWithScore(context.Context, []float32, int, string, float64) ([]*entity.ScoredChunk, error) {
	f.semanticCalls++
	return nil, nil
}
func (f *fakeChunkRepo) SearchHybridWithScore(context.Context, []float32, string, int, string, float64) ([]*entity.ScoredChunk, error) {
	f.hybridCalls++
	return f.hybridResults, nil
}

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Generate(context.Context, string, string) ([]float32, error) {
	f.calls++
	return []float32{1, 0, 0}, nil
}

type fakeConversationRepo struct {
	created  []*entity.Conversation
	existing *entity.Conversation
	deleted  []uuid.UUID
}

func (f *fakeConversationRepo) Create(_ context.Context, c *entity.Conversation) error {
	f.created = append(f.created, c)
	return nil
}
func (f *fakeConversationRepo) Update(context.Context, *entity.Conversation) error { return nil }
func (f *fakeConversationRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeConversationRepo) FindOne(context.Context, ...specification.Specification) (*entity.Conversation, error) {
	return f.existing, nil
}
func (f *fakeConversationRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Conversation, error) {
	if f.existing == nil {
		return nil, nil
	}
	return []*entity.Conversation{f.existing}, nil
}
func (f *fakeConversationRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeMessageRepo struct {
	created              []*entity.Message
	citations            []*entity.Citation
	deletedConversations []uuid.UUID
	found                *entity.Message
}

func (f *fakeMessageRepo) Create(_ context.Context, m *entity.Message) error {
	f.created = append(f.created, m)
	return nil
}
func (f *fakeMessageRepo) CreateCitations(_ context.Context, cs []*entity.Citation) error {
	f.citations = append(f.citations, cs...)
	return nil
}
func (f *fakeMessageRepo) SetBookmarked(context.Context, uuid.UUID, bool) error { return nil }
func (f *fakeMessageRepo) DeleteByConversationId(_ context.Context, id uuid.UUID) error {
	f.deletedConversations = append(f.deletedConversations, id)
	return nil
}
func (f *fakeMessageRepo) FindOne(context.Context, ...specification.Specification) (*entity.Message, error) {
	return f.found, nil
}
func (f *fakeMessageRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Message, error) {
	return f.created, nil
}
func (f *fakeMessageRepo) FindAllWithCitations(_ context.Context, conversationId uuid.UUID) ([]*entity.Message, error) {
	var out []*entity.Message
	for _, m := range f.created {
		if m.ConversationId != conversationId {
			continue
		}
		withCitations := *m
		withCitations.Citations = nil
		for _, c := range f.citations {
			if c.MessageId == m.Id {
				withCitations.Citations = append(withCitations.Citations, c)
			}
		}
		out = append(out, &withCitations)
	}
	return out, nil
}

// FindRecent mirrors the GORM implementation: every message already stored
// for the conversation counts, newest limit of them, oldest first.
func (f *fakeMessageRepo) FindRecent(_ context.Context, conversationId uuid.UUID, limit int) ([]*entity.Message, error) {
	var out []*entity.Message
	for _, m := range f.created {
		if m.ConversationId == conversationId {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakeUow struct {
	chunks        contract.ChunkRepository
	conversations contract.ConversationRepository
	messages      contract.MessageRepository
	commits       int
	rollbacks     int
}

func (f *fakeUow) Begin(context.Context) error { return nil }
func (f *fakeUow) Commit() error { f.commits++; return nil }
func (f *fakeUow) Rollback() error { f.rollbacks++; return nil }
func (f *fakeUow) ChunkRepository() contract.ChunkRepository { return f.chunks }
func (f *fakeUow) ConversationRepository() contract.ConversationRepository { return f.conversations }
func (f *fakeUow) MessageRepository() contract.MessageRepository { return f.messages }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return f.uow }

type fakeLLM struct {
	reply   string
	err     error
	calls   int
	prompts [][]llm.Message
}

func (f *fakeLLM) Complete(_ context.Context, messages []llm.Message, _ llm.Options) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, messages)
	return f.reply, f.err
}

type chatFixture struct {
	service       IChatService
	chunks        *fakeChunkRepo
	conversations *fakeConversationRepo
	messages      *fakeMessageRepo
	embedder      *fakeEmbedder
	llm           *fakeLLM
	uow           *fakeUow
}

func newChatFixture(t *testing.T, snapshots []fees.Snapshot) *chatFixture {
	t.Helper()

	chunks := &fakeChunkRepo{}
	conversations := &fakeConversationRepo{}
	messages := &fakeMessageRepo{}
	embedder := &fakeEmbedder{}
	llmProvider := &fakeLLM{reply: "generated answer"}

	uow := &fakeUow{chunks: chunks, conversations: conversations, messages: messages}

	store := fees.NewScheduleStore()
	if snapshots != nil {
		store.InitFromSnapshots(snapshots)
	}

	engine := search.NewEngine(chunks, embedder, titles.NewService(), logger.NewNopLogger())
	svc := NewChatService(
		&fakeUowFactory{uow: uow},
		engine,
		llmProvider,
		fees.NewResponder(store),
		response.NewMemoryCache(response.DefaultTTL, response.DefaultCapacity),
		logger.NewNopLogger(),
	)

	return &chatFixture{
		service:       svc,
		chunks:        chunks,
		conversations: conversations,
		messages:      messages,
		embedder:      embedder,
		llm:           llmProvider,
		uow:           uow,
	}
}

func scoredChunk(page int, actualPages int, similarity float64) *entity.ScoredChunk {
	return &entity.ScoredChunk{
		Chunk: &entity.Chunk{
			Id:             uuid.New(),
			DocumentName:   "aged-care-act-1997.pdf",
			DocumentType:   "act",
			Content:        fmt.Sprintf("Subsection 52C covers the fee arrangements on page %d.", page),
			SectionTitle:   "Fees and Payments",
			Page:           chunker.PageKnown(page),
			ActualPdfPages: actualPages,
		},
		Similarity: similarity,
	}
}

func TestSendChatCreatesConversationAndPersistsBothTurns(t *testing.T) {
	f := newChatFixture(t, nil)
	f.chunks.hybridResults = []*entity.ScoredChunk{scoredChunk(3, 50, 0.85)}

	res, err := f.service.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{
		Question: "What does the Act say about fee arrangements?",
	})
	require.NoError(t, err)

	require.Len(t, f.conversations.created, 1)
	assert.Equal(t, "What does the Act say about fee arrangements?", f.conversations.created[0].Title)

	require.Len(t, f.messages.created, 2)
	assert.Equal(t, constant.ChatMessageRoleUser, f.messages.created[0].Role)
	assert.Equal(t, constant.ChatMessageRoleModel, f.messages.created[1].Role)
	assert.Equal(t, "generated answer", f.messages.created[1].Content)

	assert.Equal(t, constant.ResponseModeRAG, res.Mode)
	assert.False(t, res.Cached)
	require.Len(t, res.Reply.Citations, 1)
	assert.Equal(t, "Aged Care Act 1997", res.Reply.Citations[0].DocumentTitle)
	require.NotNil(t, res.Reply.Citations[0].Page)
	assert.Equal(t, 3, *res.Reply.Citations[0].Page)

	require.Len(t, f.messages.citations, 1)
	assert.Equal(t, f.messages.created[1].Id, f.messages.citations[0].MessageId)
}

func TestSendChatNoContextStillPersistsAssistantTurn(t *testing.T) {
	f := newChatFixture(t, nil)
	// Retrieval finds nothing at either tier.

	res, err := f.service.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{
		Question: "What is the meaning of life?",
	})
	require.NoError(t, err)

	assert.Equal(t, constant.ResponseModeNoContext, res.Mode)
	assert.Equal(t, constant.NoContextMessage, res.Reply.Content)
	assert.Empty(t, res.Reply.Citations)
	assert.Equal(t, 0, f.llm.calls)

	require.Len(t, f.messages.created, 2)
	assert.Equal(t, constant.NoContextMessage, f.messages.created[1].Content)
	assert.Empty(t, f.messages.citations)
}

func TestSendChatFeeQuestionSkipsRetrieval(t *testing.T) {
	f := newChatFixture(t, []fees.Snapshot{{
		EffectiveDate: "2024-09-20",
		IsCurrent:     true,
		HomeCare: map[string]fees.FeeValue{
			"level2": {Amount: 15.00, Formatted: "$15.00"},
		},
	}})

	res, err := f.service.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{
		Question: "How much is the Level 2 Home Care Package fee?",
	})
	require.NoError(t, err)

	assert.Equal(t, constant.ResponseModeStructured, res.Mode)
	assert.Contains(t, res.Reply.Content, "$15.00")
	assert.Contains(t, res.Reply.Content, "20 September 2024")

	assert.Equal(t, 0, f.embedder.calls)
	assert.Equal(t, 0, f.chunks.hybridCalls)
	assert.Equal(t, 0, f.llm.calls)

	require.Len(t, res.Reply.Citations, 1)
	assert.Equal(t, "fee-schedule", res.Reply.Citations[0].DocumentName)
	require.NotNil(t, res.Reply.Citations[0].Page)
	assert.Equal(t, 1, *res.Reply.Citations[0].Page)
}

func TestSendChatRepeatedQuestionServedFromCache(t *testing.T) {
	f := newChatFixture(t, nil)
	f.chunks.hybridResults = []*entity.ScoredChunk{scoredChunk(3, 50, 0.85)}

	userId := uuid.New()
	first, err := f.service.SendChat(context.Background(), userId, &dto.SendChatRequest{
		Question: "What does the Act say about fee arrangements?",
	})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := f.service.SendChat(context.Background(), userId, &dto.SendChatRequest{
		Question: "What does the Act say about fee arrangements?",
	})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Reply.Content, second.Reply.Content)
	assert.Equal(t, 1, f.llm.calls)

	// A cached reply is still a full conversation turn.
	assert.Len(t, f.messages.created, 4)
}

func TestSendChatGenerationFailurePersistsApology(t *testing.T) {
	f := newChatFixture(t, nil)
	f.chunks.hybridResults = []*entity.ScoredChunk{scoredChunk(3, 50, 0.85)}
	f.llm.err = errors.New("model unavailable")

	res, err := f.service.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{
		Question: "What does the Act say about fee arrangements?",
	})
	require.NoError(t, err)

	assert.Equal(t, constant.ResponseModeError, res.Mode)
	assert.Equal(t, constant.GenerationFailedMessage, res.Reply.Content)
	// Sources were found; the user still sees what was retrieved.
	assert.Len(t, res.Reply.Citations, 1)

	require.Len(t, f.messages.created, 2)
	assert.Equal(t, constant.GenerationFailedMessage, f.messages.created[1].Content)
}

func TestSendChatPhantomPagesNeverReachTheUser(t *testing.T) {
	f := newChatFixture(t, nil)
	f.chunks.hybridResults = []*entity.ScoredChunk{
		scoredChunk(120, 50, 0.9), // beyond the document, dropped
		scoredChunk(49, 50, 0.8),  // last decile, page downgraded
		scoredChunk(3, 50, 0.7),
	}

	res, err := f.service.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{
		Question: "What does the Act say about fee arrangements?",
	})
	require.NoError(t, err)

	require.Len(t, res.Reply.Citations, 2)
	assert.Nil(t, res.Reply.Citations[0].Page)
	require.NotNil(t, res.Reply.Citations[1].Page)
	assert.Equal(t, 3, *res.Reply.Citations[1].Page)
}

func TestSendChatFollowUpPromptContainsQuestionOnce(t *testing.T) {
	f := newChatFixture(t, nil)
	f.chunks.hybridResults = []*entity.ScoredChunk{scoredChunk(3, 50, 0.85)}
	userId := uuid.New()

	first, err := f.service.SendChat(context.Background(), userId, &dto.SendChatRequest{
		Question: "What does the Act say about fee arrangements?",
	})
	require.NoError(t, err)

	f.conversations.existing = f.conversations.created[0]
	followUp := "Does that apply to level 2 packages as well?"
	_, err = f.service.SendChat(context.Background(), userId, &dto.SendChatRequest{
		ConversationId: &first.ConversationId,
		Question:       followUp,
	})
	require.NoError(t, err)

	require.Len(t, f.llm.prompts, 2)
	prompt := f.llm.prompts[1]

	occurrences := 0
	for _, msg := range prompt {
		if msg.Content == followUp {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences, "the current question must appear exactly once in the prompt")
	assert.Equal(t, followUp, prompt[len(prompt)-1].Content)

	// The earlier exchange is present as history, and roles alternate.
	contents := make([]string, len(prompt))
	for i, msg := range prompt {
		contents[i] = msg.Content
	}
	assert.Contains(t, contents, "What does the Act say about fee arrangements?")
	assert.Contains(t, contents, "generated answer")
	for i := 1; i < len(prompt); i++ {
		assert.NotEqual(t, prompt[i-1].Role, prompt[i].Role, "prompt roles must alternate")
	}
}

func TestGetHistoryRoundTripPreservesOrderAndCitations(t *testing.T) {
	f := newChatFixture(t, nil)
	f.chunks.hybridResults = []*entity.ScoredChunk{scoredChunk(3, 50, 0.85)}
	userId := uuid.New()

	res, err := f.service.SendChat(context.Background(), userId, &dto.SendChatRequest{
		Question: "What does the Act say about fee arrangements?",
	})
	require.NoError(t, err)
	f.conversations.existing = f.conversations.created[0]

	history, err := f.service.GetHistory(context.Background(), userId, res.ConversationId)
	require.NoError(t, err)

	require.Len(t, history, 2)
	assert.Equal(t, constant.ChatMessageRoleUser, history[0].Role)
	assert.Equal(t, "What does the Act say about fee arrangements?", history[0].Content)
	assert.Equal(t, constant.ChatMessageRoleModel, history[1].Role)
	assert.Equal(t, "generated answer", history[1].Content)

	require.Len(t, history[1].Citations, 1)
	citation := history[1].Citations[0]
	assert.Equal(t, "Aged Care Act 1997", citation.DocumentTitle)
	require.NotNil(t, citation.Page)
	assert.Equal(t, 3, *citation.Page)
}

func TestSendChatUnknownConversationRejected(t *testing.T) {
	f := newChatFixture(t, nil)
	missing := uuid.New()

	_, err := f.service.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{
		ConversationId: &missing,
		Question:       "follow up question",
	})

	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusNotFound, fiberErr.Code)
	assert.Empty(t, f.messages.created)
}

func TestDeleteConversationRemovesMessagesFirst(t *testing.T) {
	f := newChatFixture(t, nil)
	conversationId := uuid.New()
	userId := uuid.New()
	f.conversations.existing = &entity.Conversation{Id: conversationId, UserId: userId}

	err := f.service.DeleteConversation(context.Background(), userId, conversationId)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{conversationId}, f.messages.deletedConversations)
	assert.Equal(t, []uuid.UUID{conversationId}, f.conversations.deleted)
	assert.Equal(t, 1, f.uow.commits)
}

func TestGetDocumentTypes(t *testing.T) {
	f := newChatFixture(t, nil)
	f.chunks.documentTypes = []string{"act", "guideline"}

	types, err := f.service.GetDocumentTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"act", "guideline"}, types)
}
