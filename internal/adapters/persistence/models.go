package persistence

import (
	"time"
)

// KeyValueModel represents the game_state table. Every persisted entity is
// one row holding a JSON document.
type KeyValueModel struct {
	StorageKey string    `gorm:"column:storage_key;primaryKey;size:255"`
	Value      string    `gorm:"column:value;type:text;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null"`
}

func (KeyValueModel) TableName() string {
	return "game_state"
}
