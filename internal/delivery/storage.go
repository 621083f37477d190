package delivery

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Storage interface {
	ListZones(ctx context.Context, activeOnly bool) ([]Zone, error)
	GetZone(ctx context.Context, id uuid.UUID) (*Zone, error)
	CreateZone(ctx context.Context, zone *Zone) error
	UpdateZone(ctx context.Context, zone *Zone) error
	DeleteZone(ctx context.Context, id uuid.UUID) error
}

type ZoneStorage struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) Storage {
	return &ZoneStorage{
		db: db,
	}
}

func (s *ZoneStorage) ListZones(ctx context.Context, activeOnly bool) ([]Zone, error) {
	query := s.db.WithContext(ctx).Order("radius_km")
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var zones []Zone
	if err := query.Find(&zones).Error; err != nil {
		return []Zone{}, err
	}
	return zones, nil
}

func (s *ZoneStorage) GetZone(ctx context.Context, id uuid.UUID) (*Zone, error) {
	var zone Zone
	err := s.db.WithContext(ctx).First(&zone, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errZoneNotFound
		}
		return nil, err
	}
	return &zone, nil
}

func (s *ZoneStorage) CreateZone(ctx context.Context, zone *Zone) error {
	return s.db.WithContext(ctx).Create(zone).Error
}

func (s *ZoneStorage) UpdateZone(ctx context.Context, zone *Zone) error {
	result := s.db.WithContext(ctx).Model(&Zone{}).Where("id = ?", zone.ID).Updates(map[string]interface{}{
		"name":            zone.Name,
		"radius_km":       zone.RadiusKm,
		"fee":             zone.Fee,
		"min_time":        zone.MinTime,
		"max_time":        zone.MaxTime,
		"active":          zone.Active,
		"description":     zone.Description,
		"min_order_value": zone.MinOrderValue,
		"color":           zone.Color,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errZoneNotFound
	}
	return nil
}

func (s *ZoneStorage) DeleteZone(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&Zone{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errZoneNotFound
	}
	return nil
}
