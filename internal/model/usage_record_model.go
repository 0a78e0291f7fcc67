package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UsageRecord struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index:idx_usage_user_period"`
	Metric    string    `gorm:"type:varchar(64);not null"`
	Tokens    int       `gorm:"not null"`
	Period    string    `gorm:"type:varchar(7);not null;index:idx_usage_user_period"`
	Metadata  datatypes.JSONMap
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (UsageRecord) TableName() string {
	return "usage_records"
}
