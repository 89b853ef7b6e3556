package models

import (
	"time"

	"gorm.io/datatypes"
)

// KeyValueEntry backs the Postgres key-value store.
type KeyValueEntry struct {
	Key       string         `json:"key" gorm:"primaryKey;size:255"`
	Value     datatypes.JSON `json:"value" gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (KeyValueEntry) TableName() string {
	return "kv_entries"
}
