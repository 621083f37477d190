package promo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Storage interface {
	CreatePromo(ctx context.Context, p *PromoCode) error
	UpdatePromo(ctx context.Context, p *PromoCode) error
	DeletePromo(ctx context.Context, id uuid.UUID) error
	GetPromoByID(ctx context.Context, id uuid.UUID) (*PromoCode, error)
	GetPromoByCode(ctx context.Context, code string) (*PromoCode, error)
	GetPromos(ctx context.Context) ([]PromoCode, error)
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}

type PromoStorage struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) Storage {
	return &PromoStorage{
		db: db,
	}
}

func (s *PromoStorage) CreatePromo(ctx context.Context, p *PromoCode) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *PromoStorage) UpdatePromo(ctx context.Context, p *PromoCode) error {
	result := s.db.WithContext(ctx).Model(&PromoCode{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"code":            p.Code,
		"description":     p.Description,
		"discount_type":   p.DiscountType,
		"discount_value":  p.DiscountValue,
		"min_order_value": p.MinOrderValue,
		"usage_limit":     p.UsageLimit,
		"valid_from":      p.ValidFrom,
		"valid_until":     p.ValidUntil,
		"is_active":       p.IsActive,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPromoNotFound
	}
	return nil
}

func (s *PromoStorage) DeletePromo(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&PromoCode{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPromoNotFound
	}
	return nil
}

func (s *PromoStorage) GetPromoByID(ctx context.Context, id uuid.UUID) (*PromoCode, error) {
	var p PromoCode
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromoNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PromoStorage) GetPromoByCode(ctx context.Context, code string) (*PromoCode, error) {
	var p PromoCode
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromoNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PromoStorage) GetPromos(ctx context.Context) ([]PromoCode, error) {
	var promos []PromoCode
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&promos).Error; err != nil {
		return []PromoCode{}, err
	}
	return promos, nil
}

// IncrementUsage bumps used_count in a single statement that also enforces
// the usage limit.
func (s *PromoStorage) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&PromoCode{}).
		Where("id = ? AND (usage_limit IS NULL OR usage_limit = 0 OR used_count < usage_limit)", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPromoDepleted
	}
	return nil
}
