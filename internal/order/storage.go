package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Storage interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrders(ctx context.Context, filter Filter) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status Status) error
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	ReplaceOrders(ctx context.Context, orders []Order) error
}

type OrderStorage struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) Storage {
	return &OrderStorage{
		db: db,
	}
}

func (s *OrderStorage) CreateOrder(ctx context.Context, order *Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

func (s *OrderStorage) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderStorage) GetOrders(ctx context.Context, filter Filter) ([]Order, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var orders []Order
	if err := query.Find(&orders).Error; err != nil {
		return []Order{}, err
	}
	return orders, nil
}

func (s *OrderStorage) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status Status) error {
	result := s.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errOrderNotFound
	}
	return nil
}

func (s *OrderStorage) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	var rows []struct {
		Status Status
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// ReplaceOrders makes orders the whole order table: rows whose id is not in
// the list are deleted and the rest are upserted, in one transaction.
func (s *OrderStorage) ReplaceOrders(ctx context.Context, orders []Order) error {
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if len(ids) > 0 {
			del = del.Where("id NOT IN ?", ids)
		}
		if err := del.Delete(&Order{}).Error; err != nil {
			return err
		}

		if len(orders) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(orders, 100).Error
	})
}
