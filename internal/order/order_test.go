package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/internal/notify"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]Order
	updateErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{orders: map[uuid.UUID]Order{}}
}

func (m *memoryStorage) CreateOrder(ctx context.Context, order *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = *order
	return nil
}

func (m *memoryStorage) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, errOrderNotFound
	}
	return &o, nil
}

func (m *memoryStorage) GetOrders(ctx context.Context, filter Filter) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders := []Order{}
	for _, o := range m.orders {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, o.Status) {
			continue
		}
		if !filter.Since.IsZero() && o.CreatedAt.Before(filter.Since) {
			continue
		}
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	if filter.Limit > 0 && len(orders) > filter.Limit {
		orders = orders[:filter.Limit]
	}
	return orders, nil
}

func (m *memoryStorage) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	o, ok := m.orders[id]
	if !ok {
		return errOrderNotFound
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

func (m *memoryStorage) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[Status]int64{}
	for _, o := range m.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func (m *memoryStorage) ReplaceOrders(ctx context.Context, orders []Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = make(map[uuid.UUID]Order, len(orders))
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return nil
}

func containsStatus(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type recordingNotifier struct {
	mu       sync.Mutex
	statuses []string
	created  []string
}

func (n *recordingNotifier) StatusChanged(ctx context.Context, o notify.OrderView, status string) notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, o.Number+":"+status)
	p, _ := notify.Present(status)
	return notify.Notification{Sound: p.Cue, Toast: notify.Toast{Title: p.ToastTitle, Description: p.Describe(o.Number)}, Links: []notify.Link{}}
}

func (n *recordingNotifier) NewOrder(ctx context.Context, o notify.OrderView) notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, o.Number)
	return notify.Notification{Sound: notify.CueNewOrder, Links: []notify.Link{}}
}

type fixedPrinter struct {
	width int
}

func (p fixedPrinter) PrinterWidth(ctx context.Context) int  { return p.width }
func (p fixedPrinter) CompanyName(ctx context.Context) string { return "Frango Assado" }

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleOrder() *Order {
	return &Order{
		CustomerName:    "Maria",
		CustomerPhone:   "(11) 98765-4321",
		CustomerAddress: "Rua das Flores, 10",
		Items: []Item{
			{Name: "Pizza", Quantity: 1, Price: dec("25.90")},
			{Name: "Refrigerante", Quantity: 2, Price: dec("5.50")},
		},
		Subtotal:      dec("36.90"),
		DeliveryFee:   dec("5.00"),
		Discount:      decimal.Zero,
		TotalAmount:   dec("41.90"),
		PaymentMethod: PaymentPix,
	}
}

func newTestService() (*orderService, *memoryStorage, *recordingNotifier) {
	storage := newMemoryStorage()
	notifier := &recordingNotifier{}
	svc := NewService(storage, notifier, fixedPrinter{width: 80}, testLog()).(*orderService)
	return svc, storage, notifier
}

func TestNumberFor(t *testing.T) {
	id := uuid.MustParse("1a2b3c4d-5e6f-4000-8000-000000000000")
	assert.Equal(t, "ORD-1A2B3C4D", NumberFor(id))
}

func TestCreateOrder(t *testing.T) {
	svc, storage, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, sampleOrder())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, NumberFor(created.ID), created.OrderNumber)
	assert.Equal(t, StatusPending, created.Status)
	assert.Len(t, storage.orders, 1)

	bad := sampleOrder()
	bad.PaymentMethod = "boleto"
	_, err = svc.CreateOrder(ctx, bad)
	assert.True(t, apperror.IsKind(err, apperror.ValidationAppError))

	empty := sampleOrder()
	empty.Items = nil
	_, err = svc.CreateOrder(ctx, empty)
	assert.True(t, apperror.IsKind(err, apperror.ValidationAppError))
}

func TestUpdateStatusPersistsThenNotifies(t *testing.T) {
	svc, storage, notifier := newTestService()
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, sampleOrder())
	require.NoError(t, err)

	change, err := svc.UpdateStatus(ctx, created.ID, StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, change.Order.Status)
	assert.Equal(t, notify.CueOrderProcessing, change.Notification.Sound)
	assert.Equal(t, StatusProcessing, storage.orders[created.ID].Status)
	assert.Equal(t, []string{created.OrderNumber + ":processing"}, notifier.statuses)
}

func TestUpdateStatusFailureDoesNotNotify(t *testing.T) {
	svc, storage, notifier := newTestService()
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, sampleOrder())
	require.NoError(t, err)

	storage.updateErr = errors.New("connection reset")
	_, err = svc.UpdateStatus(ctx, created.ID, StatusDelivered)
	assert.True(t, apperror.IsKind(err, apperror.ServerAppError))
	assert.Empty(t, notifier.statuses)
	assert.Equal(t, StatusPending, storage.orders[created.ID].Status)
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, sampleOrder())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, created.ID, StatusDelivered)
	require.NoError(t, err)

	change, err := svc.UpdateStatus(ctx, created.ID, StatusPending)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, change.Order.Status)
	assert.Len(t, notifier.statuses, 2)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, uuid.New(), Status("shipped"))
	assert.True(t, apperror.IsKind(err, apperror.ValidationAppError))

	_, err = svc.UpdateStatus(ctx, uuid.New(), StatusDelivered)
	assert.True(t, apperror.IsKind(err, apperror.NotFoundAppError))
	assert.Empty(t, notifier.statuses)
}

func TestHistoryTabs(t *testing.T) {
	svc, storage, _ := newTestService()
	ctx := context.Background()

	for _, st := range []Status{StatusPending, StatusProcessing, StatusDelivered, StatusCancelled, StatusDelivered} {
		o := sampleOrder()
		o.ID = uuid.New()
		o.OrderNumber = NumberFor(o.ID)
		o.Status = st
		o.CreatedAt = time.Now()
		storage.orders[o.ID] = *o
	}

	sent, err := svc.History(ctx, TabSent, 0)
	require.NoError(t, err)
	assert.Len(t, sent, 3)

	received, err := svc.History(ctx, TabReceived, 0)
	require.NoError(t, err)
	assert.Len(t, received, 1)

	_, err = svc.History(ctx, "archived", 0)
	assert.True(t, apperror.IsKind(err, apperror.ValidationAppError))
}

func TestStats(t *testing.T) {
	svc, storage, _ := newTestService()
	ctx := context.Background()

	add := func(st Status, total string, items ...Item) {
		o := Order{ID: uuid.New(), Status: st, TotalAmount: dec(total), Items: items, CreatedAt: time.Now()}
		storage.orders[o.ID] = o
	}
	add(StatusDelivered, "40", Item{Name: "Pizza", Quantity: 2, Price: dec("20")})
	add(StatusDelivered, "25", Item{Name: "Pizza", Quantity: 1, Price: dec("20")}, Item{Name: "Suco", Quantity: 1, Price: dec("5")})
	add(StatusCancelled, "99", Item{Name: "Lasanha", Quantity: 9, Price: dec("11")})
	add(StatusPending, "10", Item{Name: "Suco", Quantity: 2, Price: dec("5")})

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.Counts[StatusDelivered])
	assert.Equal(t, int64(0), stats.Counts[StatusProcessing])
	assert.Equal(t, "65.00", stats.Revenue.StringFixed(2))
	assert.Equal(t, "32.50", stats.AverageTicket.StringFixed(2))
	require.Len(t, stats.TopProducts, 2)
	assert.Equal(t, "Pizza", stats.TopProducts[0].Name)
	assert.Equal(t, 3, stats.TopProducts[0].Quantity)
	assert.Equal(t, "60.00", stats.TopProducts[0].Revenue.StringFixed(2))
	assert.Len(t, stats.RecentOrders, 4)
}

func TestRenderReceipt(t *testing.T) {
	o := sampleOrder()
	o.OrderNumber = "ORD-1A2B3C4D"
	o.CreatedAt = time.Date(2024, 5, 10, 19, 30, 0, 0, time.UTC)

	html, err := RenderReceipt(o, 2, 58, "Frango <Assado>")
	require.NoError(t, err)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "size: 58mm auto")
	assert.Equal(t, 1, strings.Count(html, "VIA CLIENTE"))
	assert.Equal(t, 1, strings.Count(html, "VIA ENTREGADOR"))
	assert.Equal(t, 1, strings.Count(html, "receipt page-break"))
	assert.Contains(t, html, "PEDIDO #ORD-1A2B3C4D")
	assert.Contains(t, html, "10/05/2024 19:30:00")
	assert.Contains(t, html, "Pix")
	assert.Contains(t, html, "2x Refrigerante - R$ 11.00")
	assert.Contains(t, html, "TOTAL: R$ 41.90")
	assert.Contains(t, html, "Taxa de entrega: R$ 5.00")
	assert.Contains(t, html, "Frango &lt;Assado&gt;")

	single, err := RenderReceipt(o, 0, 80, "")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(single, "VIA CLIENTE"))
	assert.NotContains(t, single, "VIA ENTREGADOR")
	assert.NotContains(t, single, "page-break\"")
}

func TestReceiptWidthFallback(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, sampleOrder())
	require.NoError(t, err)

	html, err := svc.Receipt(ctx, created.ID, 1, 100)
	require.NoError(t, err)
	assert.Contains(t, html, "size: 80mm auto")
	assert.Contains(t, html, "Frango Assado")
}

func TestRestoreOrders(t *testing.T) {
	svc, storage, _ := newTestService()
	ctx := context.Background()

	stale := uuid.New()
	storage.orders[stale] = Order{ID: stale, OrderNumber: "ORD-NEW", Status: StatusPending}

	existing := uuid.New()
	n, err := svc.RestoreOrders(ctx, []Order{
		{ID: existing, OrderNumber: "ORD-OLD", Status: StatusDelivered, TotalAmount: dec("10")},
		{CustomerName: "Sem id", Status: "weird"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "ORD-OLD", storage.orders[existing].OrderNumber)
	assert.Len(t, storage.orders, 2)
	assert.NotContains(t, storage.orders, stale)

	for id, o := range storage.orders {
		if id == existing {
			continue
		}
		assert.Equal(t, NumberFor(id), o.OrderNumber)
		assert.Equal(t, StatusPending, o.Status)
	}
}

func TestRestoreEmptyClearsOrders(t *testing.T) {
	svc, storage, _ := newTestService()
	id := uuid.New()
	storage.orders[id] = Order{ID: id, OrderNumber: "ORD-NEW", Status: StatusPending}

	n, err := svc.RestoreOrders(context.Background(), []Order{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, storage.orders)
}

func TestWatcherNotifiesOnce(t *testing.T) {
	storage := newMemoryStorage()
	notifier := &recordingNotifier{}
	now := time.Date(2024, 5, 10, 19, 30, 0, 0, time.UTC)

	w := NewWatcher(storage, notifier, testLog(), time.Second, time.Minute, 2)
	w.now = func() time.Time { return now }

	put := func(number string, st Status, age time.Duration) {
		o := Order{ID: uuid.New(), OrderNumber: number, Status: st, CreatedAt: now.Add(-age)}
		storage.orders[o.ID] = o
	}
	put("ORD-A", StatusPending, 10*time.Second)
	put("ORD-B", StatusPending, 5*time.Second)
	put("ORD-OLD", StatusPending, 10*time.Minute)
	put("ORD-DONE", StatusDelivered, 5*time.Second)

	ctx := context.Background()
	require.NoError(t, w.Poll(ctx))
	require.NoError(t, w.Poll(ctx))

	assert.Equal(t, []string{"ORD-A", "ORD-B"}, notifier.created)

	alerts := w.Drain()
	require.Len(t, alerts, 2)
	assert.Equal(t, "ORD-A", alerts[0].Order.OrderNumber)
	assert.Equal(t, notify.CueNewOrder, alerts[0].Notification.Sound)
	assert.Empty(t, w.Drain())

	put("ORD-C", StatusPending, 3*time.Second)
	put("ORD-D", StatusPending, 2*time.Second)
	put("ORD-E", StatusPending, time.Second)
	require.NoError(t, w.Poll(ctx))

	alerts = w.Drain()
	require.Len(t, alerts, 2)
	assert.Equal(t, "ORD-D", alerts[0].Order.OrderNumber)
	assert.Equal(t, "ORD-E", alerts[1].Order.OrderNumber)
}

func TestWatcherRunStopsOnCancel(t *testing.T) {
	w := NewWatcher(newMemoryStorage(), &recordingNotifier{}, testLog(), 10*time.Millisecond, time.Minute, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestHandlerUpdateStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _, _ := newTestService()
	created, err := svc.CreateOrder(context.Background(), sampleOrder())
	require.NoError(t, err)

	router := gin.New()
	NewHandler(svc, NewWatcher(newMemoryStorage(), &recordingNotifier{}, testLog(), time.Second, time.Minute, 10), testLog()).
		Register(router.Group("/api"))

	send := func(id, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/orders/"+id+"/status", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	w := send(created.ID.String(), `{"status":"cancelled"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Order        Order               `json:"order"`
		Notification notify.Notification `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, StatusCancelled, got.Order.Status)
	assert.Equal(t, notify.CueOrderCancelled, got.Notification.Sound)

	assert.Equal(t, http.StatusBadRequest, send(created.ID.String(), `{"status":"lost"}`).Code)
	assert.Equal(t, http.StatusBadRequest, send("123", `{"status":"pending"}`).Code)
	assert.Equal(t, http.StatusNotFound, send(uuid.NewString(), `{"status":"pending"}`).Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/"+created.ID.String()+"/receipt?copies=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "VIA ENTREGADOR")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/alerts", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
