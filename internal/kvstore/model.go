package kvstore

import (
	"time"

	"gorm.io/datatypes"
)

// Entry is one JSON blob addressed by key.
type Entry struct {
	Key       string         `gorm:"primaryKey;size:128"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "preferences"
}
