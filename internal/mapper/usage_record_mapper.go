package mapper

import (
	"gorm.io/datatypes"

	"chatbot-knowledge-be/internal/entity"
	"chatbot-knowledge-be/internal/model"
)

type UsageRecordMapper struct{}

func NewUsageRecordMapper() *UsageRecordMapper {
	return &UsageRecordMapper{}
}

func (m *UsageRecordMapper) ToEntity(mdl *model.UsageRecord) *entity.UsageRecord {
	if mdl == nil {
		return nil
	}
	return &entity.UsageRecord{
		Id:        mdl.Id,
		UserId:    mdl.UserId,
		Metric:    mdl.Metric,
		Tokens:    mdl.Tokens,
		Period:    mdl.Period,
		Metadata:  mdl.Metadata,
		CreatedAt: mdl.CreatedAt,
	}
}

func (m *UsageRecordMapper) ToModel(ent *entity.UsageRecord) *model.UsageRecord {
	if ent == nil {
		return nil
	}
	return &model.UsageRecord{
		Id:        ent.Id,
		UserId:    ent.UserId,
		Metric:    ent.Metric,
		Tokens:    ent.Tokens,
		Period:    ent.Period,
		Metadata:  datatypes.JSONMap(ent.Metadata),
		CreatedAt: ent.CreatedAt,
	}
}
