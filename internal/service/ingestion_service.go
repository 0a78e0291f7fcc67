package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"chatbot-knowledge-be/internal/constant"
	"chatbot-knowledge-be/internal/dto"
	"chatbot-knowledge-be/internal/entity"
	"chatbot-knowledge-be/internal/pkg/logger"
	"chatbot-knowledge-be/internal/repository/specification"
	"chatbot-knowledge-be/internal/repository/unitofwork"
	"chatbot-knowledge-be/pkg/embedding"
	"chatbot-knowledge-be/pkg/events"
	"chatbot-knowledge-be/pkg/extract"
	pkgnats "chatbot-knowledge-be/pkg/nats"
	"chatbot-knowledge-be/pkg/storage"
	"chatbot-knowledge-be/pkg/textsplitter"
	"chatbot-knowledge-be/pkg/usage"
)

type IIngestionService interface {
	// ProcessPending ingests up to the configured batch of pending
	// documents, oldest first. One document's failure never aborts the
	// others; invalid credentials abort the remaining run.
	ProcessPending(ctx context.Context) (*dto.RunIngestionResponse, error)
	// ProcessDocument ingests a single document by id.
	ProcessDocument(ctx context.Context, id uuid.UUID) error
}

type IngestionOptions struct {
	DocumentBatchSize int
	SplitterOptions   textsplitter.Options
}

type ingestionService struct {
	uowFactory     unitofwork.RepositoryFactory
	objectStorage  storage.ObjectStorage
	extractor      *extract.Extractor
	embedder       *embedding.BatchClient
	ledger         *usage.Ledger
	eventPublisher *pkgnats.Publisher
	logger         logger.ILogger
	opts           IngestionOptions
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	objectStorage storage.ObjectStorage,
	extractor *extract.Extractor,
	embedder *embedding.BatchClient,
	ledger *usage.Ledger,
	eventPublisher *pkgnats.Publisher,
	log logger.ILogger,
	opts IngestionOptions,
) IIngestionService {
	if opts.DocumentBatchSize <= 0 {
		opts.DocumentBatchSize = 5
	}
	return &ingestionService{
		uowFactory:     uowFactory,
		objectStorage:  objectStorage,
		extractor:      extractor,
		embedder:       embedder,
		ledger:         ledger,
		eventPublisher: eventPublisher,
		logger:         log,
		opts:           opts,
	}
}

func (s *ingestionService) ProcessPending(ctx context.Context) (*dto.RunIngestionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.KnowledgeBaseRepository().FindAll(ctx,
		specification.Unprocessed{},
		specification.OrderBy{Field: "created_at"},
		specification.Pagination{Limit: s.opts.DocumentBatchSize},
	)
	if err != nil {
		return nil, fmt.Errorf("select pending documents: %w", err)
	}

	res := &dto.RunIngestionResponse{}
	for _, doc := range docs {
		if err := s.processOne(ctx, doc); err != nil {
			res.Failed++
			s.logger.Error("ingestion", "document failed", map[string]interface{}{
				"knowledge_base_id": doc.Id,
				"error":             err.Error(),
			})
			// Bad credentials fail every remaining document the same way.
			if errors.Is(err, embedding.ErrUnauthorized) {
				return res, err
			}
			continue
		}
		res.Processed++
	}
	return res, nil
}

func (s *ingestionService) ProcessDocument(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.KnowledgeBaseRepository().FindById(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("knowledge base %s not found", id)
	}
	return s.processOne(ctx, doc)
}

// processOne walks a single document through pending → processing →
// processed|error. Every failure is written back to the row so a stuck
// "processing" state only occurs on a crash mid-flight.
func (s *ingestionService) processOne(ctx context.Context, doc *entity.KnowledgeBase) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	kbRepo := uow.KnowledgeBaseRepository()

	if err := kbRepo.MarkStatus(ctx, doc.Id, constant.KnowledgeStatusProcessing, false, nil); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	chunkCount, tokensUsed, err := s.ingest(ctx, doc)
	if err != nil {
		msg := err.Error()
		if markErr := kbRepo.MarkStatus(ctx, doc.Id, constant.KnowledgeStatusError, false, &msg); markErr != nil {
			s.logger.Error("ingestion", "failed to record error status", map[string]interface{}{
				"knowledge_base_id": doc.Id,
				"error":             markErr.Error(),
			})
		}
		s.publishEvent(ctx, events.NewKnowledgeFailed(doc.Id, doc.ChatbotId, msg))
		return err
	}

	if err := kbRepo.MarkStatus(ctx, doc.Id, constant.KnowledgeStatusProcessed, true, nil); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}

	s.logger.Info("ingestion", "document processed", map[string]interface{}{
		"knowledge_base_id": doc.Id,
		"chunks":            chunkCount,
		"tokens":            tokensUsed,
	})
	s.publishEvent(ctx, events.NewKnowledgeProcessed(doc.Id, doc.ChatbotId, chunkCount, tokensUsed))
	return nil
}

func (s *ingestionService) ingest(ctx context.Context, doc *entity.KnowledgeBase) (chunkCount, tokensUsed int, err error) {
	text, err := s.resolveText(ctx, doc)
	if err != nil {
		return 0, 0, err
	}

	chunks := textsplitter.Split(text, s.opts.SplitterOptions)
	if len(chunks) == 0 {
		// Nothing extractable is still a completed ingestion.
		return 0, 0, s.replaceChunks(ctx, doc, nil, nil)
	}

	var vectors [][]float32
	estimated := usage.EstimateTokens(chunks)
	if s.ledger.CheckLimit(ctx, doc.UserId, usage.MetricEmbeddingTokens, estimated) {
		result, embedErr := s.embedder.EmbedBatch(ctx, chunks, func(u embedding.Usage) error {
			// Usage recording failures must not fail the pipeline.
			if recErr := s.ledger.RecordUsage(ctx, doc.UserId, usage.MetricEmbeddingTokens, u.TotalTokens, map[string]interface{}{
				"knowledge_base_id": doc.Id.String(),
			}); recErr != nil {
				s.logger.Error("ingestion", "failed to record usage", map[string]interface{}{
					"knowledge_base_id": doc.Id,
					"error":             recErr.Error(),
				})
			}
			return nil
		})
		if embedErr != nil {
			return 0, 0, fmt.Errorf("generate embeddings: %w", embedErr)
		}
		vectors = result.Embeddings
		tokensUsed = result.Usage.TotalTokens
	} else {
		// Quota exhausted: store searchable-later chunks without vectors
		// and let the document complete.
		s.logger.Warn("ingestion", "embedding quota exceeded, storing chunks without embeddings", map[string]interface{}{
			"knowledge_base_id": doc.Id,
			"user_id":           doc.UserId,
			"estimated_tokens":  estimated,
		})
	}

	if err := s.replaceChunks(ctx, doc, chunks, vectors); err != nil {
		return 0, 0, err
	}
	return len(chunks), tokensUsed, nil
}

// replaceChunks swaps the document's chunk rows in one transaction so a
// re-ingested document never holds two generations of chunks.
func (s *ingestionService) replaceChunks(ctx context.Context, doc *entity.KnowledgeBase, chunks []string, vectors [][]float32) error {
	newChunks := make([]*entity.KBChunk, len(chunks))
	for i, content := range chunks {
		chunk := &entity.KBChunk{
			Id:              uuid.New(),
			ChatbotId:       doc.ChatbotId,
			KnowledgeBaseId: doc.Id,
			Content:         content,
			ChunkIndex:      i,
			SourceURL:       doc.SourceURL,
			Metadata: map[string]interface{}{
				"content_type": doc.ContentType,
			},
		}
		if vectors != nil {
			chunk.Embedding = vectors[i]
		}
		newChunks[i] = chunk
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin chunk transaction: %w", err)
	}
	chunkRepo := uow.KBChunkRepository()

	if err := chunkRepo.DeleteByKnowledgeBaseId(ctx, doc.Id); err != nil {
		uow.Rollback()
		return fmt.Errorf("delete stale chunks: %w", err)
	}
	if err := chunkRepo.CreateBulk(ctx, newChunks); err != nil {
		uow.Rollback()
		return fmt.Errorf("store chunks: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit chunks: %w", err)
	}
	return nil
}

func (s *ingestionService) resolveText(ctx context.Context, doc *entity.KnowledgeBase) (string, error) {
	if doc.FilePath == nil || *doc.FilePath == "" {
		return doc.Content, nil
	}

	if s.objectStorage == nil {
		return "", fmt.Errorf("document references file %s but object storage is not configured", *doc.FilePath)
	}

	raw, err := s.objectStorage.Download(ctx, *doc.FilePath)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", *doc.FilePath, err)
	}

	ext := strings.ToLower(filepath.Ext(*doc.FilePath))
	if doc.Filename != nil && ext == "" {
		ext = strings.ToLower(filepath.Ext(*doc.Filename))
	}
	text, err := s.extractor.ExtractBytes(raw, ext)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return text, nil
}

func (s *ingestionService) publishEvent(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("ingestion", "failed to publish event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}
