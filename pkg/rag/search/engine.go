// Package search implements tiered retrieval over the chunk store: a hybrid
// vector+lexical query first, pure vector similarity when that fails, and an
// empty result set as the final, non-error tier.
package search

import (
	"context"
	"regexp"
	"strings"

	"regulation-chat-be/internal/entity"
	"regulation-chat-be/internal/pkg/logger"
	"regulation-chat-be/internal/repository/contract"
	"regulation-chat-be/pkg/chunker"
	"regulation-chat-be/pkg/embedding"
	"regulation-chat-be/pkg/titles"
)

const (
	// DefaultLimit is the number of results handed to the caller.
	DefaultLimit = 5

	// hybridThreshold and semanticThreshold are deliberately low. Recall is
	// cheap here; the citation validator and prompt ranking handle precision.
	// The semantic fallback runs looser still, since it only fires when the
	// hybrid tier already failed.
	hybridThreshold   = 0.3
	semanticThreshold = 0.1
)

// Citation is a retrieval result enriched with everything downstream stages
// need: the validator reads Page and ActualPages, the prompt builder reads
// Content and Similarity, presentation reads the display title.
type Citation struct {
	DocumentName  string
	DocumentTitle string
	DocumentType  string
	SectionTitle  string
	Content       string
	Page          chunker.PageRef
	ActualPages   int
	Similarity    float64
}

type Engine struct {
	chunks   contract.ChunkRepository
	embedder embedding.Provider
	titles   *titles.Service
	log      logger.ILogger
}

func NewEngine(chunks contract.ChunkRepository, embedder embedding.Provider, titleService *titles.Service, log logger.ILogger) *Engine {
	return &Engine{
		chunks:   chunks,
		embedder: embedder,
		titles:   titleService,
		log:      log,
	}
}

// Search returns up to limit citations ranked by score descending.
// documentType narrows the corpus when non-empty. An empty result is not an
// error; the caller must treat it as "no relevant context".
func (e *Engine) Search(ctx context.Context, query string, limit int, documentType string) ([]*Citation, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	vector, err := e.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}

	// Request headroom so dedup and validation do not starve the result set.
	candidateLimit := limit * 2

	scored, err := e.chunks.SearchHybridWithScore(ctx, vector, query, candidateLimit, documentType, hybridThreshold)
	if err != nil {
		e.log.Warn("search", "hybrid search failed, falling back to semantic", map[string]interface{}{
			"error": err.Error(),
		})
		scored, err = e.chunks.SearchSimilarWithScore(ctx, vector, candidateLimit, documentType, semanticThreshold)
		if err != nil {
			e.log.Error("search", "semantic fallback failed", map[string]interface{}{
				"error": err.Error(),
			})
			return nil, err
		}
	}

	deduped := dedupeByContent(scored)
	if len(deduped) > limit {
		deduped = deduped[:limit]
	}

	citations := make([]*Citation, 0, len(deduped))
	for _, s := range deduped {
		citations = append(citations, &Citation{
			DocumentName:  s.Chunk.DocumentName,
			DocumentTitle: e.titles.TitleFor(s.Chunk.DocumentName),
			DocumentType:  s.Chunk.DocumentType,
			SectionTitle:  s.Chunk.SectionTitle,
			Content:       s.Chunk.Content,
			Page:          s.Chunk.Page,
			ActualPages:   s.Chunk.ActualPdfPages,
			Similarity:    s.Similarity,
		})
	}
	return citations, nil
}

var punctRe = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// normalizeContent produces the dedup key: lowercased, punctuation stripped,
// whitespace collapsed, truncated. Near-identical chunks from overlapping
// windows map to the same key.
func normalizeContent(content string) string {
	normalized := strings.ToLower(content)
	normalized = punctRe.ReplaceAllString(normalized, "")
	normalized = strings.Join(strings.Fields(normalized), " ")
	if len(normalized) > 100 {
		normalized = normalized[:100]
	}
	return normalized
}

// dedupeByContent keeps the highest-scored instance of each distinct content.
// Input is assumed sorted by score descending, which both store queries
// guarantee.
func dedupeByContent(scored []*entity.ScoredChunk) []*entity.ScoredChunk {
	seen := make(map[string]struct{}, len(scored))
	out := make([]*entity.ScoredChunk, 0, len(scored))
	for _, s := range scored {
		key := normalizeContent(s.Chunk.Content)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
