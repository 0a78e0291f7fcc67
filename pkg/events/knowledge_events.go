package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeKnowledgeProcessed = "KNOWLEDGE_PROCESSED"
	TypeKnowledgeFailed    = "KNOWLEDGE_FAILED"
)

// NewKnowledgeProcessed signals that a document finished ingestion.
// chunkCount includes chunks stored without embeddings.
func NewKnowledgeProcessed(knowledgeBaseId, chatbotId uuid.UUID, chunkCount, tokensUsed int) Event {
	return BaseEvent{
		Type: TypeKnowledgeProcessed,
		Data: map[string]interface{}{
			"knowledge_base_id": knowledgeBaseId.String(),
			"chatbot_id":        chatbotId.String(),
			"chunk_count":       chunkCount,
			"tokens_used":       tokensUsed,
		},
		OccurredAt: time.Now(),
	}
}

// NewKnowledgeFailed signals that ingestion of a document gave up.
func NewKnowledgeFailed(knowledgeBaseId, chatbotId uuid.UUID, reason string) Event {
	return BaseEvent{
		Type: TypeKnowledgeFailed,
		Data: map[string]interface{}{
			"knowledge_base_id": knowledgeBaseId.String(),
			"chatbot_id":        chatbotId.String(),
			"reason":            reason,
		},
		OccurredAt: time.Now(),
	}
}
