package mapper

import (
	"chatbot-knowledge-be/internal/entity"
	"chatbot-knowledge-be/internal/model"
)

type KnowledgeBaseMapper struct{}

func NewKnowledgeBaseMapper() *KnowledgeBaseMapper {
	return &KnowledgeBaseMapper{}
}

func (m *KnowledgeBaseMapper) ToEntity(mdl *model.KnowledgeBase) *entity.KnowledgeBase {
	if mdl == nil {
		return nil
	}
	return &entity.KnowledgeBase{
		Id:           mdl.Id,
		ChatbotId:    mdl.ChatbotId,
		UserId:       mdl.UserId,
		Content:      mdl.Content,
		ContentType:  mdl.ContentType,
		Filename:     mdl.Filename,
		FilePath:     mdl.FilePath,
		SourceURL:    mdl.SourceURL,
		Processed:    mdl.Processed,
		Status:       mdl.Status,
		ErrorMessage: mdl.ErrorMessage,
		CreatedAt:    mdl.CreatedAt,
		UpdatedAt:    mdl.UpdatedAt,
	}
}

func (m *KnowledgeBaseMapper) ToModel(ent *entity.KnowledgeBase) *model.KnowledgeBase {
	if ent == nil {
		return nil
	}
	return &model.KnowledgeBase{
		Id:           ent.Id,
		ChatbotId:    ent.ChatbotId,
		UserId:       ent.UserId,
		Content:      ent.Content,
		ContentType:  ent.ContentType,
		Filename:     ent.Filename,
		FilePath:     ent.FilePath,
		SourceURL:    ent.SourceURL,
		Processed:    ent.Processed,
		Status:       ent.Status,
		ErrorMessage: ent.ErrorMessage,
		CreatedAt:    ent.CreatedAt,
		UpdatedAt:    ent.UpdatedAt,
	}
}

func (m *KnowledgeBaseMapper) ToEntities(models []model.KnowledgeBase) []entity.KnowledgeBase {
	entities := make([]entity.KnowledgeBase, 0, len(models))
	for i := range models {
		entities = append(entities, *m.ToEntity(&models[i]))
	}
	return entities
}
