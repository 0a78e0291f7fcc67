package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"chatbot-knowledge-be/internal/constant"
	"chatbot-knowledge-be/internal/dto"
	"chatbot-knowledge-be/internal/entity"
	"chatbot-knowledge-be/internal/pkg/logger"
	"chatbot-knowledge-be/internal/repository/specification"
	"chatbot-knowledge-be/internal/repository/unitofwork"
	"chatbot-knowledge-be/pkg/embedding"
)

type IKnowledgeService interface {
	Create(ctx context.Context, req *dto.CreateKnowledgeRequest) (*dto.CreateKnowledgeResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowKnowledgeResponse, error)
	Enqueue(ctx context.Context, id uuid.UUID) (*dto.EnqueueKnowledgeResponse, error)
	Search(ctx context.Context, req *dto.SearchKnowledgeRequest) (*dto.SearchKnowledgeResponse, error)
}

type knowledgeService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	queryEmbedder    embedding.Provider
	logger           logger.ILogger
}

func NewKnowledgeService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	queryEmbedder embedding.Provider,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		queryEmbedder:    queryEmbedder,
		logger:           log,
	}
}

func (s *knowledgeService) Create(ctx context.Context, req *dto.CreateKnowledgeRequest) (*dto.CreateKnowledgeResponse, error) {
	hasFile := req.FilePath != nil && *req.FilePath != ""
	if !hasFile && req.Content == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "either content or file_path is required")
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "text"
	}

	kb := entity.KnowledgeBase{
		Id:          uuid.New(),
		ChatbotId:   req.ChatbotId,
		UserId:      req.UserId,
		Content:     req.Content,
		ContentType: contentType,
		Filename:    req.Filename,
		FilePath:    req.FilePath,
		SourceURL:   req.SourceURL,
		Status:      constant.KnowledgeStatusPending,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.KnowledgeBaseRepository().Create(ctx, &kb); err != nil {
		return nil, fmt.Errorf("create knowledge base: %w", err)
	}

	// New documents are queued right away; a failed enqueue is recovered
	// by the next ingestion run over pending rows.
	if err := s.enqueue(ctx, kb.Id); err != nil {
		s.logger.Warn("knowledge", "failed to enqueue new document", map[string]interface{}{
			"knowledge_base_id": kb.Id,
			"error":             err.Error(),
		})
	}

	return &dto.CreateKnowledgeResponse{Id: kb.Id, Status: kb.Status}, nil
}

func (s *knowledgeService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowKnowledgeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	kb, err := uow.KnowledgeBaseRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if kb == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "knowledge base not found")
	}

	chunkCount, err := uow.KBChunkRepository().Count(ctx, specification.ByKnowledgeBaseId{KnowledgeBaseId: id})
	if err != nil {
		return nil, err
	}

	return &dto.ShowKnowledgeResponse{
		Id:           kb.Id,
		ChatbotId:    kb.ChatbotId,
		ContentType:  kb.ContentType,
		Filename:     kb.Filename,
		SourceURL:    kb.SourceURL,
		Processed:    kb.Processed,
		Status:       kb.Status,
		ErrorMessage: kb.ErrorMessage,
		ChunkCount:   chunkCount,
		CreatedAt:    kb.CreatedAt,
		UpdatedAt:    kb.UpdatedAt,
	}, nil
}

func (s *knowledgeService) Enqueue(ctx context.Context, id uuid.UUID) (*dto.EnqueueKnowledgeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	kb, err := uow.KnowledgeBaseRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if kb == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "knowledge base not found")
	}

	if err := s.enqueue(ctx, id); err != nil {
		return nil, fmt.Errorf("enqueue knowledge base: %w", err)
	}
	return &dto.EnqueueKnowledgeResponse{Id: id, Enqueued: true}, nil
}

func (s *knowledgeService) Search(ctx context.Context, req *dto.SearchKnowledgeRequest) (*dto.SearchKnowledgeResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 5
	}

	res, err := s.queryEmbedder.Embed(ctx, []string{req.Query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(res.Embeddings) != 1 {
		return nil, fmt.Errorf("embed query: expected 1 embedding, got %d", len(res.Embeddings))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.KBChunkRepository().SearchSimilarWithScore(ctx, res.Embeddings[0], limit, req.ChatbotId, req.Threshold)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	results := make([]dto.SearchKnowledgeResult, 0, len(scored))
	for _, sc := range scored {
		results = append(results, dto.SearchKnowledgeResult{
			Id:              sc.Chunk.Id,
			KnowledgeBaseId: sc.Chunk.KnowledgeBaseId,
			Content:         sc.Chunk.Content,
			ChunkIndex:      sc.Chunk.ChunkIndex,
			SourceURL:       sc.Chunk.SourceURL,
			Similarity:      sc.Similarity,
		})
	}
	return &dto.SearchKnowledgeResponse{Results: results}, nil
}

func (s *knowledgeService) enqueue(ctx context.Context, id uuid.UUID) error {
	payload := dto.PublishIngestKnowledgeMessage{KnowledgeBaseId: id}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, payloadJson)
}
