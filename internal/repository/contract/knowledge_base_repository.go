package contract

import (
	"context"

	"github.com/google/uuid"

	"chatbot-knowledge-be/internal/entity"
	"chatbot-knowledge-be/internal/repository/specification"
)

type KnowledgeBaseRepository interface {
	Create(ctx context.Context, kb *entity.KnowledgeBase) error
	Update(ctx context.Context, kb *entity.KnowledgeBase) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.KnowledgeBase, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeBase, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeBase, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// MarkStatus updates the lifecycle columns in one statement so a crash
	// between status and processed writes cannot leave them inconsistent.
	MarkStatus(ctx context.Context, id uuid.UUID, status string, processed bool, errorMessage *string) error
}
