package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// KBChunk rows are replaced wholesale on re-ingestion: the unique index on
// (knowledge_base_id, chunk_index) guards against concurrent writers
// producing duplicate sequences.
type KBChunk struct {
	Id              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	ChatbotId       uuid.UUID        `gorm:"type:uuid;not null;index"`
	KnowledgeBaseId uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_kb_chunks_doc_seq"`
	Content         string           `gorm:"type:text;not null"`
	Embedding       *pgvector.Vector `gorm:"type:vector(1536)"`
	ChunkIndex      int              `gorm:"not null;uniqueIndex:idx_kb_chunks_doc_seq"`
	SourceURL       *string          `gorm:"type:varchar(2048)"`
	Metadata        datatypes.JSONMap
	CreatedAt       time.Time `gorm:"not null;default:now()"`
}

func (KBChunk) TableName() string {
	return "kb_chunks"
}
