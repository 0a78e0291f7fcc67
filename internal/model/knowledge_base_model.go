package model

import (
	"time"

	"github.com/google/uuid"
)

type KnowledgeBase struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatbotId    uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;index"`
	Content      string    `gorm:"type:text"`
	ContentType  string    `gorm:"type:varchar(50);not null;default:'text'"`
	Filename     *string   `gorm:"type:varchar(255)"`
	FilePath     *string   `gorm:"type:varchar(512)"`
	SourceURL    *string   `gorm:"type:varchar(2048)"`
	Processed    bool      `gorm:"not null;default:false"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	ErrorMessage *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null;default:now()"`
	UpdatedAt    *time.Time
}

func (KnowledgeBase) TableName() string {
	return "knowledge_base"
}
