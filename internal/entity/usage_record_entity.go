package entity

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord is one audit row of token consumption, appended per
// successfully embedded sub-batch. Period is the billing window (YYYY-MM).
type UsageRecord struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Metric    string
	Tokens    int
	Period    string
	Metadata  map[string]interface{}
	CreatedAt time.Time
}
