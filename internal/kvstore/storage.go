package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store keeps small JSON documents (preferences, business address,
// credentials) that have no table of their own.
type Store interface {
	GetRaw(ctx context.Context, key string) (json.RawMessage, error)
	SetRaw(ctx context.Context, key string, value json.RawMessage) error
	Delete(ctx context.Context, key string) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) GetRaw(ctx context.Context, key string) (json.RawMessage, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return json.RawMessage(entry.Value), nil
}

func (s *gormStore) SetRaw(ctx context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid json", key)
	}

	entry := Entry{Key: key, Value: []byte(value)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *gormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&Entry{}).Error
}

// Get decodes the value stored under key into dst.
func Get(ctx context.Context, s Store, key string, dst any) error {
	raw, err := s.GetRaw(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

// Set encodes value and stores it under key.
func Set(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.SetRaw(ctx, key, raw)
}
