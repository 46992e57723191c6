package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/outpost-go/internal/domain/savegame"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

var _ savegame.KeyValueStore = (*GormKeyValueStore)(nil)

// GormKeyValueStore implements savegame.KeyValueStore using GORM
type GormKeyValueStore struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormKeyValueStore creates a new GORM key-value store
func NewGormKeyValueStore(db *gorm.DB, clock shared.Clock) *GormKeyValueStore {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormKeyValueStore{db: db, clock: clock}
}

// Get retrieves the value stored under key
func (s *GormKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	var model KeyValueModel
	result := s.db.WithContext(ctx).Where("storage_key = ?", key).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, result.Error)
	}
	return model.Value, true, nil
}

// Set upserts a single key
func (s *GormKeyValueStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	model := KeyValueModel{StorageKey: key, Value: value, UpdatedAt: s.clock.Now()}
	if err := s.upsert(s.db.WithContext(ctx), []KeyValueModel{model}); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes a key; a missing key is not an error
func (s *GormKeyValueStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&KeyValueModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// GetAllKeys lists every key in sorted order
func (s *GormKeyValueStore) GetAllKeys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&KeyValueModel{}).Order("storage_key").Pluck("storage_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// MultiGet returns the stored values for keys; missing keys are omitted
func (s *GormKeyValueStore) MultiGet(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	var models []KeyValueModel
	if err := s.db.WithContext(ctx).Where("storage_key IN ?", keys).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to get %d keys: %w", len(keys), err)
	}
	for _, m := range models {
		out[m.StorageKey] = m.Value
	}
	return out, nil
}

// MultiSet upserts every entry in one transaction
func (s *GormKeyValueStore) MultiSet(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	now := s.clock.Now()
	keys := make([]string, 0, len(entries))
	for k := range entries {
		if k == "" {
			return fmt.Errorf("key cannot be empty")
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	models := make([]KeyValueModel, 0, len(keys))
	for _, k := range keys {
		models = append(models, KeyValueModel{StorageKey: k, Value: entries[k], UpdatedAt: now})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.upsert(tx, models)
	})
	if err != nil {
		return fmt.Errorf("failed to set %d keys: %w", len(models), err)
	}
	return nil
}

// MultiRemove deletes every key in one statement
func (s *GormKeyValueStore) MultiRemove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("storage_key IN ?", keys).Delete(&KeyValueModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete %d keys: %w", len(keys), err)
	}
	return nil
}

// UpdatedAt returns when key was last written
func (s *GormKeyValueStore) UpdatedAt(ctx context.Context, key string) (time.Time, bool, error) {
	var model KeyValueModel
	result := s.db.WithContext(ctx).Select("storage_key", "updated_at").Where("storage_key = ?", key).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to read %s: %w", key, result.Error)
	}
	return model.UpdatedAt, true, nil
}

func (s *GormKeyValueStore) upsert(db *gorm.DB, models []KeyValueModel) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models).Error
}
