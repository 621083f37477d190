package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/internal/delivery"
	"github.com/mserebryaakov/delivery-panel/internal/notify"
	"github.com/mserebryaakov/delivery-panel/internal/order"
	"github.com/mserebryaakov/delivery-panel/internal/product"
	"github.com/mserebryaakov/delivery-panel/internal/promo"
	"github.com/mserebryaakov/delivery-panel/internal/settings"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Catalog interface {
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]product.Product, error)
	Menu(ctx context.Context) ([]product.Category, error)
}

type Zones interface {
	ActiveZone(ctx context.Context, id uuid.UUID) (*delivery.Zone, error)
}

type Company interface {
	Company(ctx context.Context) (*settings.CompanySettings, error)
	Preferences(ctx context.Context) (settings.Preferences, error)
	CompanyName(ctx context.Context) string
}

type Promos interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*promo.PromoCode, error)
	Redeem(ctx context.Context, promo *promo.PromoCode) error
}

type Orders interface {
	CreateOrder(ctx context.Context, order *order.Order) (*order.Order, error)
}

type CartNotifier interface {
	CartOrder(ctx context.Context, lines []notify.Line, subtotal, deliveryFee, total decimal.Decimal) (notify.Link, error)
}

type CheckoutService interface {
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
	Checkout(ctx context.Context, req Request) (*Result, error)
	Menu(ctx context.Context) (*Menu, error)
	WhatsAppOrder(ctx context.Context, items []CartItem) (*WhatsAppOrder, error)
}

type checkoutService struct {
	catalog  Catalog
	zones    Zones
	company  Company
	promos   Promos
	orders   Orders
	notifier CartNotifier
	logger   *logrus.Entry
}

func NewService(catalog Catalog, zones Zones, company Company, promos Promos, orders Orders,
	notifier CartNotifier, log *logrus.Entry) CheckoutService {
	return &checkoutService{
		catalog:  catalog,
		zones:    zones,
		company:  company,
		promos:   promos,
		orders:   orders,
		notifier: notifier,
		logger:   log,
	}
}

// quoted carries what Quote computed plus the promo that has to be redeemed
// if the order goes through.
type quoted struct {
	Quote
	promo *promo.PromoCode
}

func (s *checkoutService) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	q, err := s.quote(ctx, req)
	if err != nil {
		return nil, err
	}
	return &q.Quote, nil
}

func (s *checkoutService) Checkout(ctx context.Context, req Request) (*Result, error) {
	if !req.PaymentMethod.Valid() {
		return nil, apperror.Validation("forma de pagamento inválida")
	}

	q, err := s.quote(ctx, req.quote())
	if err != nil {
		return nil, err
	}

	if q.promo != nil {
		if err := s.promos.Redeem(ctx, q.promo); err != nil {
			return nil, err
		}
	}

	newOrder := &order.Order{
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		Items:           q.Items,
		Subtotal:        q.Subtotal,
		DeliveryFee:     q.DeliveryFee,
		Discount:        q.Discount,
		ZoneID:          q.ZoneID,
		TotalAmount:     q.Total,
		PaymentMethod:   req.PaymentMethod,
	}
	if q.PromoCode != "" {
		code := q.PromoCode
		newOrder.PromoCode = &code
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		newOrder.Notes = &notes
	}

	created, err := s.orders.CreateOrder(ctx, newOrder)
	if err != nil {
		if q.promo != nil {
			s.logger.Warnf("promo %s redeemed but order was not created: %v", q.promo.Code, err)
		}
		return nil, err
	}

	return &Result{Order: created, Notification: notify.OrderPlaced()}, nil
}

func (s *checkoutService) Menu(ctx context.Context) (*Menu, error) {
	categories, err := s.catalog.Menu(ctx)
	if err != nil {
		return nil, err
	}

	header := MenuHeader{Name: s.company.CompanyName(ctx)}
	if prefs, err := s.company.Preferences(ctx); err == nil {
		header.Logo = prefs.CompanyLogo
	} else {
		s.logger.Warnf("menu without preferences: %v", err)
	}

	company, err := s.company.Company(ctx)
	switch {
	case err == nil:
		header.WhatsappNumber = company.WhatsappNumber
		header.DeliveryFee = company.DeliveryFee
		header.MinimumOrder = company.MinimumOrder
	case !apperror.IsKind(err, apperror.NotFoundAppError):
		return nil, err
	}

	return &Menu{Company: header, Categories: categories}, nil
}

// WhatsAppOrder prices the cart with the flat company fee and builds the
// wa.me link the customer sends to the business.
func (s *checkoutService) WhatsAppOrder(ctx context.Context, items []CartItem) (*WhatsAppOrder, error) {
	q, err := s.quote(ctx, QuoteRequest{Items: items})
	if err != nil {
		return nil, err
	}

	lines := make([]notify.Line, 0, len(q.Items))
	for _, it := range q.Items {
		lines = append(lines, notify.Line{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}

	link, err := s.notifier.CartOrder(ctx, lines, q.Subtotal, q.DeliveryFee, q.Total)
	if err != nil {
		if errors.Is(err, notify.ErrNoBusinessPhone) {
			return nil, apperror.NewError(apperror.ConflictAppError,
				"Número do WhatsApp não configurado", http.StatusConflict, err)
		}
		return nil, apperror.Server("falha ao montar mensagem", err)
	}

	return &WhatsAppOrder{Totals: q.Totals, Link: link}, nil
}

func (s *checkoutService) quote(ctx context.Context, req QuoteRequest) (*quoted, error) {
	items, lines, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	subtotal := Calculate(lines, nil, decimal.Zero).Subtotal

	q := &quoted{Quote: Quote{Items: items}}

	fee := decimal.Zero
	if req.ZoneID != nil {
		zone, err := s.zones.ActiveZone(ctx, *req.ZoneID)
		if err != nil {
			return nil, err
		}
		fee = zone.Fee
		q.ZoneID = &zone.ID
		q.MinTime = zone.MinTime
		q.MaxTime = zone.MaxTime
		q.MinimumOrder = zone.MinOrderValue
	}

	company, err := s.company.Company(ctx)
	switch {
	case err == nil:
		if req.ZoneID == nil && company.DeliveryFee.Valid {
			fee = company.DeliveryFee.Decimal
		}
		if !q.MinimumOrder.Valid {
			q.MinimumOrder = company.MinimumOrder
		}
	case !apperror.IsKind(err, apperror.NotFoundAppError):
		return nil, err
	}

	if q.MinimumOrder.Valid && subtotal.LessThan(q.MinimumOrder.Decimal) {
		return nil, apperror.Validation(fmt.Sprintf("Pedido mínimo não atingido: o valor mínimo para pedidos é R$ %s",
			strings.Replace(q.MinimumOrder.Decimal.StringFixed(2), ".", ",", 1)))
	}

	var discount *promo.Discount
	if code := promo.NormalizeCode(req.PromoCode); code != "" {
		p, err := s.promos.Validate(ctx, code, subtotal)
		if err != nil {
			return nil, err
		}
		d := p.Discount()
		discount = &d
		q.promo = p
		q.PromoCode = p.Code
	}

	q.Totals = Calculate(lines, discount, fee)
	return q, nil
}

// resolveItems prices the cart from the catalog; client prices are never
// trusted.
func (s *checkoutService) resolveItems(ctx context.Context, cart []CartItem) ([]order.Item, []Line, error) {
	if len(cart) == 0 {
		return nil, nil, apperror.Validation("o carrinho está vazio")
	}

	ids := make([]uuid.UUID, 0, len(cart))
	for _, it := range cart {
		if it.Quantity <= 0 {
			return nil, nil, apperror.Validation("quantidade inválida")
		}
		ids = append(ids, it.ProductID)
	}

	products, err := s.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	items := make([]order.Item, 0, len(cart))
	lines := make([]Line, 0, len(cart))
	for _, it := range cart {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, nil, apperror.Validation("produto não encontrado: " + it.ProductID.String())
		}
		if !p.IsAvailable {
			return nil, nil, apperror.Validation("produto indisponível: " + p.Name)
		}
		id := p.ID
		items = append(items, order.Item{ProductID: &id, Name: p.Name, Quantity: it.Quantity, Price: p.Price})
		lines = append(lines, Line{Price: p.Price, Quantity: it.Quantity})
	}
	return items, lines, nil
}
