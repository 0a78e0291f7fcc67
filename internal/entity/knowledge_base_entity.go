package entity

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeBase is one uploaded document owned by a chatbot. Ingestion
// mutates Processed/Status/ErrorMessage; rows are never deleted here.
type KnowledgeBase struct {
	Id           uuid.UUID
	ChatbotId    uuid.UUID
	UserId       uuid.UUID
	Content      string
	ContentType  string
	Filename     *string
	FilePath     *string
	SourceURL    *string
	Processed    bool
	Status       string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
