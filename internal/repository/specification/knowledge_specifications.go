package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"chatbot-knowledge-be/internal/constant"
)

// Unprocessed selects documents still waiting for ingestion.
type Unprocessed struct{}

func (s Unprocessed) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("processed = ? AND status = ?", false, constant.KnowledgeStatusPending)
}

// StatusIs filters documents by lifecycle status.
type StatusIs struct {
	Status string
}

func (s StatusIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// OwnedByChatbot scopes rows to one chatbot.
type OwnedByChatbot struct {
	ChatbotId uuid.UUID
}

func (s OwnedByChatbot) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chatbot_id = ?", s.ChatbotId)
}

// ByKnowledgeBaseId scopes chunk rows to one document.
type ByKnowledgeBaseId struct {
	KnowledgeBaseId uuid.UUID
}

func (s ByKnowledgeBaseId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("knowledge_base_id = ?", s.KnowledgeBaseId)
}
