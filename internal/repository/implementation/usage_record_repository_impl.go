package implementation

import (
	"context"

	"gorm.io/gorm"

	"chatbot-knowledge-be/internal/entity"
	"chatbot-knowledge-be/internal/mapper"
	"chatbot-knowledge-be/internal/model"
	"chatbot-knowledge-be/internal/repository/contract"
	"chatbot-knowledge-be/internal/repository/specification"
)

type UsageRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UsageRecordMapper
}

func NewUsageRecordRepository(db *gorm.DB) contract.UsageRecordRepository {
	return &UsageRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewUsageRecordMapper(),
	}
}

func (r *UsageRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UsageRecordRepositoryImpl) Create(ctx context.Context, record *entity.UsageRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *UsageRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UsageRecord, error) {
	var models []*model.UsageRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.UsageRecord, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *UsageRecordRepositoryImpl) SumTokens(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var total int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.UsageRecord{}).
		Select("COALESCE(SUM(tokens), 0)").
		Scan(&total).Error
	return total, err
}
