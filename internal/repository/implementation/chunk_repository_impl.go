package implementation

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"regulation-chat-be/internal/entity"
	"regulation-chat-be/internal/mapper"
	"regulation-chat-be/internal/model"
	"regulation-chat-be/internal/repository/contract"
	"regulation-chat-be/internal/repository/specification"
	"regulation-chat-be/pkg/apperr"
)

type ChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkMapper
}

func NewChunkRepository(db *gorm.DB) contract.ChunkRepository {
	return &ChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkMapper(),
	}
}

func (r *ChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return apperr.Store("chunk bulk insert", err)
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

// DeleteByDocumentName hard-deletes all chunks of a document. Re-ingestion
// replaces a document wholesale; keeping soft-deleted chunk rows around would
// only bloat the vector index.
func (r *ChunkRepositoryImpl) DeleteByDocumentName(ctx context.Context, documentName string) error {
	err := r.db.WithContext(ctx).
		Unscoped().
		Where("document_name = ?", documentName).
		Delete(&model.DocumentChunk{}).Error
	return apperr.Store("chunk delete by document", err)
}

func (r *ChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error) {
	var models []*model.DocumentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperr.Store("chunk find", err)
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Model(&model.DocumentChunk{}).Count(&count).Error; err != nil {
		return 0, apperr.Store("chunk count", err)
	}
	return count, nil
}

func (r *ChunkRepositoryImpl) DistinctDocumentTypes(ctx context.Context) ([]string, error) {
	var types []string
	err := r.db.WithContext(ctx).
		Model(&model.DocumentChunk{}).
		Distinct("document_type").
		Order("document_type ASC").
		Pluck("document_type", &types).Error
	if err != nil {
		return nil, apperr.Store("chunk distinct types", err)
	}
	return types, nil
}

func (r *ChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, documentType string, threshold float64) ([]*entity.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.DocumentChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding_value <=> query) recovers the similarity.
	query := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold)

	if documentType != "" {
		query = query.Where("document_type = ?", documentType)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, apperr.Store("chunk similarity search", err)
	}

	scored := make([]*entity.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &entity.ScoredChunk{
			Chunk:      r.mapper.ToEntity(&res.DocumentChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *ChunkRepositoryImpl) SearchHybridWithScore(ctx context.Context, embedding []float32, queryText string, limit int, documentType string, threshold float64) ([]*entity.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.DocumentChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	// Blend of cosine similarity and lexical rank, weighted 0.7/0.3. The
	// text rank is capped at 1 so the blend stays in [0, 1] and the caller's
	// thresholds keep their meaning.
	const scoreExpr = "0.7 * (1 - (embedding_value <=> ?)) + " +
		"0.3 * LEAST(ts_rank_cd(to_tsvector('english', content), plainto_tsquery('english', ?)), 1.0)"

	query := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, "+scoreExpr+" as similarity", queryVector, queryText).
		Where("deleted_at IS NULL").
		Where(scoreExpr+" >= ?", queryVector, queryText, threshold)

	if documentType != "" {
		query = query.Where("document_type = ?", documentType)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, apperr.Store("chunk hybrid search", err)
	}

	scored := make([]*entity.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &entity.ScoredChunk{
			Chunk:      r.mapper.ToEntity(&res.DocumentChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
