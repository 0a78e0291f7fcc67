package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateKnowledgeRequest struct {
	ChatbotId   uuid.UUID `json:"chatbot_id" validate:"required"`
	UserId      uuid.UUID `json:"user_id" validate:"required"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
	Filename    *string   `json:"filename"`
	FilePath    *string   `json:"file_path"`
	SourceURL   *string   `json:"source_url"`
}

type CreateKnowledgeResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type ShowKnowledgeResponse struct {
	Id           uuid.UUID  `json:"id"`
	ChatbotId    uuid.UUID  `json:"chatbot_id"`
	ContentType  string     `json:"content_type"`
	Filename     *string    `json:"filename"`
	SourceURL    *string    `json:"source_url"`
	Processed    bool       `json:"processed"`
	Status       string     `json:"status"`
	ErrorMessage *string    `json:"error_message"`
	ChunkCount   int64      `json:"chunk_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type SearchKnowledgeRequest struct {
	ChatbotId uuid.UUID `json:"chatbot_id" validate:"required"`
	Query     string    `json:"query" validate:"required"`
	Limit     int       `json:"limit"`
	Threshold float64   `json:"threshold"`
}

type SearchKnowledgeResult struct {
	Id              uuid.UUID `json:"id"`
	KnowledgeBaseId uuid.UUID `json:"knowledge_base_id"`
	Content         string    `json:"content"`
	ChunkIndex      int       `json:"chunk_index"`
	SourceURL       *string   `json:"source_url"`
	Similarity      float64   `json:"similarity"`
}

type SearchKnowledgeResponse struct {
	Results []SearchKnowledgeResult `json:"results"`
}
