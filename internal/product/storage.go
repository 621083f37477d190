package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Storage interface {
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetProducts(ctx context.Context, filter Filter) ([]Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
}

type ProductStorage struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) Storage {
	return &ProductStorage{
		db: db,
	}
}

func (s *ProductStorage) CreateProduct(ctx context.Context, p *Product) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *ProductStorage) UpdateProduct(ctx context.Context, p *Product) error {
	result := s.db.WithContext(ctx).Model(&Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":         p.Name,
		"description":  p.Description,
		"price":        p.Price,
		"category":     p.Category,
		"image_url":    p.ImageURL,
		"is_available": p.IsAvailable,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errProductNotFound
	}
	return nil
}

func (s *ProductStorage) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errProductNotFound
	}
	return nil
}

func (s *ProductStorage) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *ProductStorage) GetProducts(ctx context.Context, filter Filter) ([]Product, error) {
	query := s.db.WithContext(ctx).Order("category").Order("name")
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}

	var products []Product
	if err := query.Find(&products).Error; err != nil {
		return []Product{}, err
	}
	return products, nil
}

func (s *ProductStorage) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error) {
	var products []Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return []Product{}, err
	}
	return products, nil
}
