package implementation

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"chatbot-knowledge-be/internal/constant"
	"chatbot-knowledge-be/internal/entity"
	"chatbot-knowledge-be/internal/mapper"
	"chatbot-knowledge-be/internal/model"
	"chatbot-knowledge-be/internal/repository/contract"
	"chatbot-knowledge-be/internal/repository/specification"
)

type KBChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KBChunkMapper
}

func NewKBChunkRepository(db *gorm.DB) contract.KBChunkRepository {
	return &KBChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewKBChunkMapper(),
	}
}

func (r *KBChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KBChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.KBChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

// CreateBulk inserts chunks in batches of ChunkInsertBatchSize rows so a
// large document never produces an oversized statement.
func (r *KBChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.KBChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.KBChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}

	if err := r.db.WithContext(ctx).CreateInBatches(models, constant.ChunkInsertBatchSize).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *KBChunkRepositoryImpl) DeleteByKnowledgeBaseId(ctx context.Context, knowledgeBaseId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("knowledge_base_id = ?", knowledgeBaseId).Delete(&model.KBChunk{}).Error
}

func (r *KBChunkRepositoryImpl) DeleteByChatbotId(ctx context.Context, chatbotId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("chatbot_id = ?", chatbotId).Delete(&model.KBChunk{}).Error
}

func (r *KBChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KBChunk, error) {
	var models []*model.KBChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.KBChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *KBChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.KBChunk{}).Count(&count).Error
	return count, err
}

func (r *KBChunkRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, chatbotId uuid.UUID) ([]*entity.KBChunk, error) {
	if limit <= 0 {
		limit = 5
	}
	var models []*model.KBChunk

	// pgvector cosine distance. Rows with NULL embeddings (quota-skipped
	// documents) are excluded: NULL never matches.
	err := r.db.WithContext(ctx).
		Where("chatbot_id = ?", chatbotId).
		Where("embedding IS NOT NULL").
		Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&models).Error

	if err != nil {
		return nil, err
	}

	entities := make([]*entity.KBChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

// SearchSimilarWithScore returns chunks with similarity scores, filtered by threshold
func (r *KBChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, chatbotId uuid.UUID, threshold float64) ([]*contract.ScoredKBChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query_vector) recovers the similarity.
	type result struct {
		model.KBChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("kb_chunks").
		Select("kb_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("chatbot_id = ?", chatbotId).
		Where("embedding IS NOT NULL").
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredKBChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredKBChunk{
			Chunk:      r.mapper.ToEntity(&res.KBChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
