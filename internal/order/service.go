package order

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/internal/notify"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Notifier turns order events into panel feedback and outbound messages.
type Notifier interface {
	StatusChanged(ctx context.Context, o notify.OrderView, status string) notify.Notification
	NewOrder(ctx context.Context, o notify.OrderView) notify.Notification
}

// PrinterSettings supplies the receipt paper and header.
type PrinterSettings interface {
	PrinterWidth(ctx context.Context) int
	CompanyName(ctx context.Context) string
}

type OrderService interface {
	CreateOrder(ctx context.Context, order *Order) (*Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrders(ctx context.Context, filter Filter) ([]Order, error)
	History(ctx context.Context, tab string, limit int) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*StatusChange, error)
	Stats(ctx context.Context) (*Stats, error)
	Receipt(ctx context.Context, id uuid.UUID, copies, widthMm int) (string, error)
	RestoreOrders(ctx context.Context, orders []Order) (int, error)
}

type orderService struct {
	storage  Storage
	notifier Notifier
	printer  PrinterSettings
	logger   *logrus.Entry
	now      func() time.Time
}

func NewService(storage Storage, notifier Notifier, printer PrinterSettings, log *logrus.Entry) OrderService {
	return &orderService{
		storage:  storage,
		notifier: notifier,
		printer:  printer,
		logger:   log,
		now:      time.Now,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, order *Order) (*Order, error) {
	if strings.TrimSpace(order.CustomerName) == "" || strings.TrimSpace(order.CustomerPhone) == "" ||
		strings.TrimSpace(order.CustomerAddress) == "" {
		return nil, apperror.Validation("nome, telefone e endereço são obrigatórios")
	}
	if len(order.Items) == 0 {
		return nil, apperror.Validation("o pedido precisa de pelo menos um item")
	}
	if !order.PaymentMethod.Valid() {
		return nil, apperror.Validation("forma de pagamento inválida")
	}

	newOrder := *order
	newOrder.ID = uuid.New()
	newOrder.OrderNumber = NumberFor(newOrder.ID)
	newOrder.Status = StatusPending
	newOrder.CreatedAt = s.now()

	if err := s.storage.CreateOrder(ctx, &newOrder); err != nil {
		return nil, apperror.Server("falha ao criar pedido", err)
	}

	s.logger.Infof("order %s created for %s, total %s", newOrder.OrderNumber, newOrder.CustomerName, newOrder.TotalAmount.StringFixed(2))
	return &newOrder, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	order, err := s.storage.GetOrderByID(ctx, id)
	if err != nil {
		return nil, orderError(err)
	}
	return order, nil
}

func (s *orderService) GetOrders(ctx context.Context, filter Filter) ([]Order, error) {
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, apperror.Validation("status inválido: " + string(st))
		}
	}

	orders, err := s.storage.GetOrders(ctx, filter)
	if err != nil {
		return nil, apperror.Server("falha ao listar pedidos", err)
	}
	return orders, nil
}

func (s *orderService) History(ctx context.Context, tab string, limit int) ([]Order, error) {
	statuses, ok := historyTabs[tab]
	if !ok {
		return nil, apperror.Validation("aba inválida: use received, sent ou cancelled")
	}
	return s.GetOrders(ctx, Filter{Statuses: statuses, Limit: limit})
}

// UpdateStatus stores the new status and only then builds the notification.
// Any status may follow any other one.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*StatusChange, error) {
	if !status.Valid() {
		return nil, apperror.Validation("status inválido: " + string(status))
	}

	order, err := s.storage.GetOrderByID(ctx, id)
	if err != nil {
		return nil, orderError(err)
	}

	if err := s.storage.UpdateOrderStatus(ctx, id, status); err != nil {
		return nil, orderError(err)
	}

	previous := order.Status
	order.Status = status
	order.UpdatedAt = s.now()

	s.logger.Infof("order %s: %s -> %s", order.OrderNumber, previous, status)

	return &StatusChange{
		Order:        order,
		Notification: s.notifier.StatusChanged(ctx, order.View(), string(status)),
	}, nil
}

func (s *orderService) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.storage.CountByStatus(ctx)
	if err != nil {
		return nil, apperror.Server("falha ao calcular estatísticas", err)
	}

	delivered, err := s.storage.GetOrders(ctx, Filter{Statuses: []Status{StatusDelivered}})
	if err != nil {
		return nil, apperror.Server("falha ao calcular estatísticas", err)
	}

	recent, err := s.storage.GetOrders(ctx, Filter{Limit: dashboardRecent})
	if err != nil {
		return nil, apperror.Server("falha ao calcular estatísticas", err)
	}

	stats := &Stats{
		Counts:        map[Status]int64{},
		Revenue:       decimal.Zero,
		AverageTicket: decimal.Zero,
		TopProducts:   topProducts(delivered, dashboardTopProducts),
		RecentOrders:  recent,
	}
	for _, st := range Statuses {
		stats.Counts[st] = counts[st]
		stats.TotalOrders += counts[st]
	}

	for _, o := range delivered {
		stats.Revenue = stats.Revenue.Add(o.TotalAmount)
	}
	if len(delivered) > 0 {
		stats.AverageTicket = stats.Revenue.Div(decimal.NewFromInt(int64(len(delivered)))).Round(2)
	}

	return stats, nil
}

func (s *orderService) Receipt(ctx context.Context, id uuid.UUID, copies, widthMm int) (string, error) {
	order, err := s.storage.GetOrderByID(ctx, id)
	if err != nil {
		return "", orderError(err)
	}

	if widthMm != 58 && widthMm != 80 {
		widthMm = s.printer.PrinterWidth(ctx)
	}

	html, err := RenderReceipt(order, copies, widthMm, s.printer.CompanyName(ctx))
	if err != nil {
		return "", apperror.Server("falha ao gerar comprovante", err)
	}
	return html, nil
}

// RestoreOrders replaces the order book with the orders of a backup. Missing
// ids and numbers are generated; totals are not recomputed.
func (s *orderService) RestoreOrders(ctx context.Context, orders []Order) (int, error) {
	restored := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.ID == uuid.Nil {
			o.ID = uuid.New()
		}
		if o.OrderNumber == "" {
			o.OrderNumber = NumberFor(o.ID)
		}
		if !o.Status.Valid() {
			o.Status = StatusPending
		}
		if o.CreatedAt.IsZero() {
			o.CreatedAt = s.now()
		}
		restored = append(restored, o)
	}

	if err := s.storage.ReplaceOrders(ctx, restored); err != nil {
		return 0, apperror.Server("falha ao restaurar pedidos", err)
	}

	s.logger.Infof("%d orders restored", len(restored))
	return len(restored), nil
}

func topProducts(orders []Order, limit int) []ProductStat {
	byName := map[string]*ProductStat{}
	for _, o := range orders {
		for _, it := range o.Items {
			stat, ok := byName[it.Name]
			if !ok {
				stat = &ProductStat{Name: it.Name, Revenue: decimal.Zero}
				byName[it.Name] = stat
			}
			stat.Quantity += it.Quantity
			stat.Revenue = stat.Revenue.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}

	stats := make([]ProductStat, 0, len(byName))
	for _, st := range byName {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Quantity != stats[j].Quantity {
			return stats[i].Quantity > stats[j].Quantity
		}
		return stats[i].Name < stats[j].Name
	})

	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

func orderError(err error) error {
	if errors.Is(err, errOrderNotFound) {
		return apperror.NotFound("pedido não encontrado", err)
	}
	return apperror.Server("falha ao acessar pedido", err)
}
