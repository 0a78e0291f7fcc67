package entity

import (
	"time"

	"github.com/google/uuid"
)

// KBChunk is one bounded slice of a document's extracted text, the unit
// of embedding and retrieval. Embedding is nil when generation was
// skipped (quota exhausted). ChunkIndex values for one document form a
// contiguous 0-based sequence in emission order.
type KBChunk struct {
	Id              uuid.UUID
	ChatbotId       uuid.UUID
	KnowledgeBaseId uuid.UUID
	Content         string
	Embedding       []float32
	ChunkIndex      int
	SourceURL       *string
	Metadata        map[string]interface{}
	CreatedAt       time.Time
}
