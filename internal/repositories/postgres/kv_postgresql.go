package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rebooked/campus-service/internal/models"
	"github.com/rebooked/campus-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KeyValuePostgreSQL stores JSON values in the kv_entries table.
type KeyValuePostgreSQL struct {
	db *gorm.DB
}

func NewKeyValuePostgreSQL(db *gorm.DB) repositories.KeyValueStore {
	return &KeyValuePostgreSQL{db: db}
}

// Migrate creates the kv_entries table when it does not exist.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.KeyValueEntry{})
}

func (k *KeyValuePostgreSQL) Get(ctx context.Context, key string, dest interface{}) error {
	var entry models.KeyValueEntry
	err := k.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repositories.ErrKeyNotFound
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(entry.Value, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// Set upserts the entry so concurrent writers of one key leave the last value.
func (k *KeyValuePostgreSQL) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	entry := models.KeyValueEntry{Key: key, Value: datatypes.JSON(data)}
	return k.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (k *KeyValuePostgreSQL) Delete(ctx context.Context, key string) error {
	return k.db.WithContext(ctx).Where("key = ?", key).Delete(&models.KeyValueEntry{}).Error
}
