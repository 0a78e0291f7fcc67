package dto

import "github.com/google/uuid"

// PublishIngestKnowledgeMessage is the queue payload asking the consumer
// to ingest one document.
type PublishIngestKnowledgeMessage struct {
	KnowledgeBaseId uuid.UUID `json:"knowledge_base_id"`
}

type RunIngestionResponse struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

type EnqueueKnowledgeResponse struct {
	Id       uuid.UUID `json:"id"`
	Enqueued bool      `json:"enqueued"`
}
