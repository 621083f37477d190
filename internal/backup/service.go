package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mserebryaakov/delivery-panel/internal/delivery"
	"github.com/mserebryaakov/delivery-panel/internal/kvstore"
	"github.com/mserebryaakov/delivery-panel/internal/order"
	"github.com/mserebryaakov/delivery-panel/internal/product"
	"github.com/mserebryaakov/delivery-panel/internal/promo"
	"github.com/mserebryaakov/delivery-panel/internal/settings"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Products interface {
	GetProducts(ctx context.Context, filter product.Filter) ([]product.Product, error)
}

type Orders interface {
	GetOrders(ctx context.Context, filter order.Filter) ([]order.Order, error)
	RestoreOrders(ctx context.Context, orders []order.Order) (int, error)
}

type Zones interface {
	ListZones(ctx context.Context, activeOnly bool) ([]delivery.Zone, error)
}

type Promos interface {
	GetPromos(ctx context.Context) ([]promo.PromoView, error)
}

type Company interface {
	Company(ctx context.Context) (*settings.CompanySettings, error)
}

type BackupService interface {
	Export(ctx context.Context) (*Backup, error)
	Restore(ctx context.Context, data []byte) (*RestoreResult, error)
}

type backupService struct {
	products Products
	orders   Orders
	zones    Zones
	promos   Promos
	company  Company
	kv       kvstore.Store
	logger   *logrus.Entry
	now      func() time.Time
}

func NewService(products Products, orders Orders, zones Zones, promos Promos, company Company,
	kv kvstore.Store, log *logrus.Entry) BackupService {
	return &backupService{
		products: products,
		orders:   orders,
		zones:    zones,
		promos:   promos,
		company:  company,
		kv:       kv,
		logger:   log,
		now:      time.Now,
	}
}

func (s *backupService) Export(ctx context.Context) (*Backup, error) {
	b := &Backup{
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Version:   Version,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		b.Products, err = s.products.GetProducts(gctx, product.Filter{})
		return err
	})
	g.Go(func() (err error) {
		b.Orders, err = s.orders.GetOrders(gctx, order.Filter{})
		return err
	})
	g.Go(func() (err error) {
		b.DeliveryZones, err = s.zones.ListZones(gctx, false)
		return err
	})
	g.Go(func() (err error) {
		b.PromoCodes, err = s.promos.GetPromos(gctx)
		return err
	})
	g.Go(func() error {
		company, err := s.company.Company(gctx)
		if err != nil {
			if apperror.IsKind(err, apperror.NotFoundAppError) {
				return nil
			}
			return err
		}
		b.Settings = company
		return nil
	})
	g.Go(func() error {
		raw, err := s.kv.GetRaw(gctx, delivery.AddressKey)
		if err != nil {
			if errors.Is(err, kvstore.ErrNotFound) {
				return nil
			}
			return apperror.Server("falha ao carregar endereço", err)
		}
		b.DeliveryAreas = raw
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if b.Products == nil {
		b.Products = []product.Product{}
	}
	if b.Orders == nil {
		b.Orders = []order.Order{}
	}
	if b.DeliveryZones == nil {
		b.DeliveryZones = []delivery.Zone{}
	}
	if b.PromoCodes == nil {
		b.PromoCodes = []promo.PromoView{}
	}

	s.logger.Infof("export: %d products, %d orders, %d zones, %d promo codes",
		len(b.Products), len(b.Orders), len(b.DeliveryZones), len(b.PromoCodes))
	return b, nil
}

func (s *backupService) Restore(ctx context.Context, data []byte) (*RestoreResult, error) {
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, apperror.NewError(apperror.JsonAppError, "arquivo de backup inválido", http.StatusBadRequest, err)
	}
	if strings.TrimSpace(b.Timestamp) == "" || b.Products == nil {
		return nil, apperror.Validation("arquivo de backup inválido")
	}

	res := &RestoreResult{}

	address, err := addressBlob(b.DeliveryAreas)
	if err != nil {
		return nil, apperror.Validation("endereço do backup inválido")
	}
	if address != nil {
		if err := s.kv.SetRaw(ctx, delivery.AddressKey, address); err != nil {
			return nil, apperror.Server("falha ao restaurar endereço", err)
		}
		res.BusinessAddress = true
	}

	// A present "orders" list, even an empty one, replaces the order book.
	if b.Orders != nil {
		n, err := s.orders.RestoreOrders(ctx, b.Orders)
		if err != nil {
			return nil, err
		}
		res.Orders = n
		res.OrdersReplaced = true
	}

	res.Message = "Backup restaurado com sucesso! Recarregue a página para ver os dados."
	s.logger.Infof("restored backup from %s: %d orders (replaced %t), address %t",
		b.Timestamp, res.Orders, res.OrdersReplaced, res.BusinessAddress)
	return res, nil
}

// addressBlob accepts the address as an object or as a JSON string holding
// the object, which is how older backups carry it.
func addressBlob(raw json.RawMessage) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		raw = json.RawMessage(s)
	}

	if !json.Valid(raw) {
		return nil, errors.New("invalid address json")
	}
	return raw, nil
}
