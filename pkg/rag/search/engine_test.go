package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regulation-chat-be/internal/entity"
	"regulation-chat-be/internal/pkg/logger"
	"regulation-chat-be/internal/repository/specification"
	"regulation-chat-be/pkg/chunker"
	"regulation-chat-be/pkg/titles"
)

type fakeChunkRepo struct {
	hybridResults   []*entity.ScoredChunk
	hybridErr       error
	semanticResults []*entity.ScoredChunk
	semanticErr     error
	hybridCalls     int
	semanticCalls   int
}

func (f *fakeChunkRepo) CreateBulk(context.Context, []*entity.Chunk) error { return nil }
func (f *fakeChunkRepo) DeleteByDocumentName(context.Context, string) error {
	return nil
}
func (f *fakeChunkRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Chunk, error) {
	return nil, nil
}
func (f *fakeChunkRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return 0, nil
}
func (f *fakeChunkRepo) DistinctDocumentTypes(context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakeChunkRepo) SearchSimilarWithScore(context.Context, []float32, int, string, float64) ([]*entity.ScoredChunk, error) {
	f.semanticCalls++
	return f.semanticResults, f.semanticErr
}

func (f *fakeChunkRepo) SearchHybridWithScore(context.Context, []float32, string, int, string, float64) ([]*entity.ScoredChunk, error) {
	f.hybridCalls++
	return f.hybridResults, f.hybridErr
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(context.Context, string, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func scoredChunk(content string, index int, similarity float64) *entity.ScoredChunk {
	return &entity.ScoredChunk{
		Chunk: &entity.Chunk{
			DocumentName:   "home-care-packages-program-manual.pdf",
			DocumentType:   "home_care_package",
			Content:        content,
			Page:           chunker.PageKnown(3),
			ChunkIndex:     index,
			ActualPdfPages: 120,
		},
		Similarity: similarity,
	}
}

func newTestEngine(repo *fakeChunkRepo, embedder *fakeEmbedder) *Engine {
	return NewEngine(repo, embedder, titles.NewService(), logger.NewNopLogger())
}

func TestSearchHappyPathWrapsCitations(t *testing.T) {
	repo := &fakeChunkRepo{
		hybridResults: []*entity.ScoredChunk{
			scoredChunk("eligibility criteria for packages", 0, 0.91),
			scoredChunk("fee caps for level two", 1, 0.72),
		},
	}

	citations, err := newTestEngine(repo, &fakeEmbedder{}).Search(context.Background(), "eligibility", 5, "")
	require.NoError(t, err)
	require.Len(t, citations, 2)

	assert.Equal(t, 1, repo.hybridCalls)
	assert.Zero(t, repo.semanticCalls)
	assert.Equal(t, "Home Care Packages Program Operational Manual", citations[0].DocumentTitle)
	assert.Equal(t, 0.91, citations[0].Similarity)
	assert.Equal(t, 120, citations[0].ActualPages)
}

func TestSearchFallsBackToSemanticWhenHybridErrors(t *testing.T) {
	want := []*entity.ScoredChunk{scoredChunk("subsidy rules", 0, 0.83)}
	repo := &fakeChunkRepo{
		hybridErr:       errors.New("function ts_rank_cd does not exist"),
		semanticResults: want,
	}

	citations, err := newTestEngine(repo, &fakeEmbedder{}).Search(context.Background(), "subsidy", 5, "")
	require.NoError(t, err)
	require.Len(t, citations, 1)

	assert.Equal(t, 1, repo.hybridCalls)
	assert.Equal(t, 1, repo.semanticCalls)
	assert.Equal(t, "subsidy rules", citations[0].Content)
}

func TestSearchBothTiersEmptyIsNotAnError(t *testing.T) {
	citations, err := newTestEngine(&fakeChunkRepo{}, &fakeEmbedder{}).Search(context.Background(), "anything", 5, "")
	require.NoError(t, err)
	assert.Empty(t, citations)
}

func TestSearchPropagatesEmbeddingError(t *testing.T) {
	repo := &fakeChunkRepo{}
	_, err := newTestEngine(repo, &fakeEmbedder{err: errors.New("quota exhausted")}).Search(context.Background(), "anything", 5, "")
	require.Error(t, err)
	assert.Zero(t, repo.hybridCalls)
}

func TestSearchDeduplicatesIdenticalContent(t *testing.T) {
	repo := &fakeChunkRepo{
		hybridResults: []*entity.ScoredChunk{
			scoredChunk("The provider must notify the Secretary.", 4, 0.9),
			scoredChunk("The provider must notify the Secretary.", 9, 0.85),
			scoredChunk("A different clause entirely.", 2, 0.7),
		},
	}

	citations, err := newTestEngine(repo, &fakeEmbedder{}).Search(context.Background(), "notify", 5, "")
	require.NoError(t, err)
	require.Len(t, citations, 2)
	assert.Equal(t, 0.9, citations[0].Similarity)
}

func TestSearchTruncatesToLimit(t *testing.T) {
	repo := &fakeChunkRepo{
		hybridResults: []*entity.ScoredChunk{
			scoredChunk("clause one", 0, 0.9),
			scoredChunk("clause two", 1, 0.8),
			scoredChunk("clause three", 2, 0.7),
		},
	}

	citations, err := newTestEngine(repo, &fakeEmbedder{}).Search(context.Background(), "clause", 2, "")
	require.NoError(t, err)
	assert.Len(t, citations, 2)
}
