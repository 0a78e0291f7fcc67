package contract

import (
	"context"

	"chatbot-knowledge-be/internal/entity"
	"chatbot-knowledge-be/internal/repository/specification"
)

type UsageRecordRepository interface {
	Create(ctx context.Context, record *entity.UsageRecord) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UsageRecord, error)
	SumTokens(ctx context.Context, specs ...specification.Specification) (int64, error)
}
