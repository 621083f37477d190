package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Storage interface {
	GetCompany(ctx context.Context) (*CompanySettings, error)
	SaveCompany(ctx context.Context, s *CompanySettings) error
}

type SettingsStorage struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) Storage {
	return &SettingsStorage{
		db: db,
	}
}

func (s *SettingsStorage) GetCompany(ctx context.Context) (*CompanySettings, error) {
	var settings CompanySettings
	err := s.db.WithContext(ctx).Order("created_at").First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errSettingsNotFound
		}
		return nil, err
	}
	return &settings, nil
}

func (s *SettingsStorage) SaveCompany(ctx context.Context, settings *CompanySettings) error {
	return s.db.WithContext(ctx).Save(settings).Error
}
