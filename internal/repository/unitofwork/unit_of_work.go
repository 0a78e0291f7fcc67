package unitofwork

import (
	"context"

	"chatbot-knowledge-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	KnowledgeBaseRepository() contract.KnowledgeBaseRepository
	KBChunkRepository() contract.KBChunkRepository
	UsageRecordRepository() contract.UsageRecordRepository
}
