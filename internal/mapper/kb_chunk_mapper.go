package mapper

import (
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"

	"chatbot-knowledge-be/internal/entity"
	"chatbot-knowledge-be/internal/model"
)

type KBChunkMapper struct{}

func NewKBChunkMapper() *KBChunkMapper {
	return &KBChunkMapper{}
}

func (m *KBChunkMapper) ToEntity(mdl *model.KBChunk) *entity.KBChunk {
	if mdl == nil {
		return nil
	}
	var embedding []float32
	if mdl.Embedding != nil {
		embedding = mdl.Embedding.Slice()
	}
	return &entity.KBChunk{
		Id:              mdl.Id,
		ChatbotId:       mdl.ChatbotId,
		KnowledgeBaseId: mdl.KnowledgeBaseId,
		Content:         mdl.Content,
		Embedding:       embedding,
		ChunkIndex:      mdl.ChunkIndex,
		SourceURL:       mdl.SourceURL,
		Metadata:        mdl.Metadata,
		CreatedAt:       mdl.CreatedAt,
	}
}

func (m *KBChunkMapper) ToModel(ent *entity.KBChunk) *model.KBChunk {
	if ent == nil {
		return nil
	}
	var embedding *pgvector.Vector
	if ent.Embedding != nil {
		v := pgvector.NewVector(ent.Embedding)
		embedding = &v
	}
	return &model.KBChunk{
		Id:              ent.Id,
		ChatbotId:       ent.ChatbotId,
		KnowledgeBaseId: ent.KnowledgeBaseId,
		Content:         ent.Content,
		Embedding:       embedding,
		ChunkIndex:      ent.ChunkIndex,
		SourceURL:       ent.SourceURL,
		Metadata:        datatypes.JSONMap(ent.Metadata),
		CreatedAt:       ent.CreatedAt,
	}
}

func (m *KBChunkMapper) ToEntities(models []model.KBChunk) []entity.KBChunk {
	entities := make([]entity.KBChunk, 0, len(models))
	for i := range models {
		entities = append(entities, *m.ToEntity(&models[i]))
	}
	return entities
}

func (m *KBChunkMapper) ToModels(ents []entity.KBChunk) []model.KBChunk {
	models := make([]model.KBChunk, 0, len(ents))
	for i := range ents {
		models = append(models, *m.ToModel(&ents[i]))
	}
	return models
}
