package contract

import (
	"context"

	"github.com/google/uuid"

	"chatbot-knowledge-be/internal/entity"
	"chatbot-knowledge-be/internal/repository/specification"
)

// ScoredKBChunk wraps a chunk with its similarity score
type ScoredKBChunk struct {
	Chunk      *entity.KBChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type KBChunkRepository interface {
	Create(ctx context.Context, chunk *entity.KBChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.KBChunk) error
	DeleteByKnowledgeBaseId(ctx context.Context, knowledgeBaseId uuid.UUID) error
	DeleteByChatbotId(ctx context.Context, chatbotId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KBChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// Advanced
	SearchSimilar(ctx context.Context, embedding []float32, limit int, chatbotId uuid.UUID) ([]*entity.KBChunk, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, chatbotId uuid.UUID, threshold float64) ([]*ScoredKBChunk, error)
}
