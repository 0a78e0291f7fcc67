package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"chatbot-knowledge-be/internal/dto"
	"chatbot-knowledge-be/internal/pkg/logger"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub           *gochannel.GoChannel
	topicName        string
	ingestionService IIngestionService
	logger           logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	ingestionService IIngestionService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:           pubSub,
		topicName:        topicName,
		ingestionService: ingestionService,
		logger:           log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestKnowledgeMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack malformed messages, retrying cannot fix them.
		msg.Ack()
		return
	}

	cs.logger.Info("consumer", "ingesting knowledge base", map[string]interface{}{
		"knowledge_base_id": payload.KnowledgeBaseId,
	})

	if err := cs.ingestionService.ProcessDocument(ctx, payload.KnowledgeBaseId); err != nil {
		// The orchestrator already persisted the failure on the row, so
		// the message is not redelivered.
		cs.logger.Error("consumer", "ingestion failed", map[string]interface{}{
			"knowledge_base_id": payload.KnowledgeBaseId,
			"error":             err.Error(),
		})
	}
	msg.Ack()
}
