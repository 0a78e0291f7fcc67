package implementation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chatbot-knowledge-be/internal/entity"
	"chatbot-knowledge-be/internal/mapper"
	"chatbot-knowledge-be/internal/model"
	"chatbot-knowledge-be/internal/repository/contract"
	"chatbot-knowledge-be/internal/repository/specification"
)

type KnowledgeBaseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeBaseMapper
}

func NewKnowledgeBaseRepository(db *gorm.DB) contract.KnowledgeBaseRepository {
	return &KnowledgeBaseRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeBaseMapper(),
	}
}

func (r *KnowledgeBaseRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KnowledgeBaseRepositoryImpl) Create(ctx context.Context, kb *entity.KnowledgeBase) error {
	m := r.mapper.ToModel(kb)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*kb = *r.mapper.ToEntity(m)
	return nil
}

func (r *KnowledgeBaseRepositoryImpl) Update(ctx context.Context, kb *entity.KnowledgeBase) error {
	m := r.mapper.ToModel(kb)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*kb = *r.mapper.ToEntity(m)
	return nil
}

func (r *KnowledgeBaseRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.KnowledgeBase{}, id).Error
}

func (r *KnowledgeBaseRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.KnowledgeBase, error) {
	return r.FindOne(ctx, specification.ByID{ID: id})
}

func (r *KnowledgeBaseRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeBase, error) {
	var m model.KnowledgeBase
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *KnowledgeBaseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeBase, error) {
	var models []*model.KnowledgeBase
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.KnowledgeBase, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *KnowledgeBaseRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.KnowledgeBase{}).Count(&count).Error
	return count, err
}

func (r *KnowledgeBaseRepositoryImpl) MarkStatus(ctx context.Context, id uuid.UUID, status string, processed bool, errorMessage *string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":        status,
		"processed":     processed,
		"error_message": errorMessage,
		"updated_at":    &now,
	}
	return r.db.WithContext(ctx).
		Model(&model.KnowledgeBase{}).
		Where("id = ?", id).
		Updates(updates).Error
}
