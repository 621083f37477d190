package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/internal/delivery"
	"github.com/mserebryaakov/delivery-panel/internal/kvstore"
	"github.com/mserebryaakov/delivery-panel/internal/order"
	"github.com/mserebryaakov/delivery-panel/internal/product"
	"github.com/mserebryaakov/delivery-panel/internal/promo"
	"github.com/mserebryaakov/delivery-panel/internal/settings"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducts struct {
	products []product.Product
}

func (f *fakeProducts) GetProducts(ctx context.Context, filter product.Filter) ([]product.Product, error) {
	return f.products, nil
}

type fakeOrders struct {
	orders   []order.Order
	restored []order.Order
	calls    int
}

func (f *fakeOrders) GetOrders(ctx context.Context, filter order.Filter) ([]order.Order, error) {
	return f.orders, nil
}

func (f *fakeOrders) RestoreOrders(ctx context.Context, orders []order.Order) (int, error) {
	f.calls++
	f.restored = append(f.restored, orders...)
	f.orders = append([]order.Order{}, orders...)
	return len(orders), nil
}

type fakeZones struct{}

func (fakeZones) ListZones(ctx context.Context, activeOnly bool) ([]delivery.Zone, error) {
	return []delivery.Zone{{ID: uuid.New(), Name: "Centro", RadiusKm: decimal.NewFromInt(3), Fee: decimal.NewFromInt(8)}}, nil
}

type fakePromos struct{}

func (fakePromos) GetPromos(ctx context.Context) ([]promo.PromoView, error) {
	return nil, nil
}

type fakeCompany struct {
	company *settings.CompanySettings
}

func (f fakeCompany) Company(ctx context.Context) (*settings.CompanySettings, error) {
	if f.company == nil {
		return nil, apperror.NotFound("configurações da empresa não encontradas", nil)
	}
	return f.company, nil
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

var now = time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)

func newTestService(orders *fakeOrders, kv kvstore.Store) *backupService {
	products := &fakeProducts{products: []product.Product{
		{ID: uuid.New(), Name: "X-Frango", Price: decimal.RequireFromString("25.90"), IsAvailable: true},
	}}
	s := NewService(products, orders, fakeZones{}, fakePromos{}, fakeCompany{}, kv, testLog()).(*backupService)
	s.now = func() time.Time { return now }
	return s
}

func sampleOrders() []order.Order {
	id := uuid.New()
	return []order.Order{{
		ID:              id,
		OrderNumber:     order.NumberFor(id),
		CustomerName:    "Maria",
		CustomerPhone:   "11987654321",
		CustomerAddress: "Rua A, 10",
		Items:           []order.Item{{Name: "X-Frango", Quantity: 1, Price: decimal.RequireFromString("25.90")}},
		Subtotal:        decimal.RequireFromString("25.90"),
		DeliveryFee:     decimal.RequireFromString("5"),
		TotalAmount:     decimal.RequireFromString("30.90"),
		PaymentMethod:   order.PaymentPix,
		Status:          order.StatusDelivered,
		CreatedAt:       now.Add(-time.Hour),
	}}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "store-chicken-backup-2024-06-01-14-30.json", FileName(now))
}

func TestExportRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	source := newTestService(&fakeOrders{orders: sampleOrders()}, kvstore.NewMemory())
	address := delivery.Address{Street: "Rua das Flores", Number: "100", City: "Campinas", State: "SP"}
	require.NoError(t, kvstore.Set(ctx, source.kv, delivery.AddressKey, address))

	b, err := source.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T14:30:00Z", b.Timestamp)
	assert.Equal(t, Version, b.Version)
	assert.Len(t, b.DeliveryZones, 1)
	assert.NotNil(t, b.PromoCodes)
	assert.Nil(t, b.Settings)

	data, err := json.Marshal(b)
	require.NoError(t, err)

	targetOrders := &fakeOrders{}
	target := newTestService(targetOrders, kvstore.NewMemory())
	res, err := target.Restore(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Orders)
	assert.True(t, res.BusinessAddress)

	var restored delivery.Address
	require.NoError(t, kvstore.Get(ctx, target.kv, delivery.AddressKey, &restored))
	assert.Equal(t, address, restored)

	require.Len(t, targetOrders.restored, 1)
	got := targetOrders.restored[0]
	assert.Equal(t, b.Orders[0].OrderNumber, got.OrderNumber)
	assert.Equal(t, "30.90", got.TotalAmount.StringFixed(2))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "X-Frango", got.Items[0].Name)
}

func TestExportWithoutAddress(t *testing.T) {
	b, err := newTestService(&fakeOrders{}, kvstore.NewMemory()).Export(context.Background())
	require.NoError(t, err)

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"deliveryAreas":null`)
	assert.Contains(t, string(data), `"orders":[]`)
}

func TestRestoreRequiresTimestampAndProducts(t *testing.T) {
	s := newTestService(&fakeOrders{}, kvstore.NewMemory())
	ctx := context.Background()

	_, err := s.Restore(ctx, []byte(`{"products":[]}`))
	assert.True(t, apperror.IsKind(err, apperror.ValidationAppError))

	_, err = s.Restore(ctx, []byte(`{"timestamp":"2024-06-01T14:30:00Z"}`))
	assert.True(t, apperror.IsKind(err, apperror.ValidationAppError))

	_, err = s.Restore(ctx, []byte(`not json`))
	assert.True(t, apperror.IsKind(err, apperror.JsonAppError))

	res, err := s.Restore(ctx, []byte(`{"timestamp":"2024-06-01T14:30:00Z","products":[]}`))
	require.NoError(t, err)
	assert.Zero(t, res.Orders)
	assert.False(t, res.OrdersReplaced)
	assert.False(t, res.BusinessAddress)
}

func TestRestoreDropsOrdersCreatedAfterExport(t *testing.T) {
	ctx := context.Background()
	orders := &fakeOrders{orders: sampleOrders()}
	s := newTestService(orders, kvstore.NewMemory())

	b, err := s.Export(ctx)
	require.NoError(t, err)
	data, err := json.Marshal(b)
	require.NoError(t, err)

	later := sampleOrders()[0]
	orders.orders = append(orders.orders, later)

	res, err := s.Restore(ctx, data)
	require.NoError(t, err)
	assert.True(t, res.OrdersReplaced)
	require.Len(t, orders.orders, 1)
	assert.Equal(t, b.Orders[0].ID, orders.orders[0].ID)
}

func TestRestoreEmptyOrdersReplaces(t *testing.T) {
	orders := &fakeOrders{orders: sampleOrders()}
	s := newTestService(orders, kvstore.NewMemory())

	res, err := s.Restore(context.Background(), []byte(`{"timestamp":"2024-06-01T14:30:00Z","products":[],"orders":[]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, orders.calls)
	assert.True(t, res.OrdersReplaced)
	assert.Empty(t, orders.orders)
}

func TestValidFileName(t *testing.T) {
	assert.True(t, ValidFileName("store-chicken-backup-2024-06-01-14-30.json"))
	assert.True(t, ValidFileName("copia store-chicken-backup.json"))
	assert.False(t, ValidFileName("store-chicken-backup.txt"))
	assert.False(t, ValidFileName("orders.json"))
}

func TestRestoreAddressAsString(t *testing.T) {
	s := newTestService(&fakeOrders{}, kvstore.NewMemory())
	ctx := context.Background()

	data := `{"timestamp":"2024-06-01T14:30:00.000Z","products":[],` +
		`"deliveryAreas":"{\"street\":\"Rua B\",\"number\":\"5\",\"city\":\"Campinas\",\"state\":\"SP\",\"postalCode\":\"13000-000\"}"}`
	res, err := s.Restore(ctx, []byte(data))
	require.NoError(t, err)
	assert.True(t, res.BusinessAddress)

	var restored delivery.Address
	require.NoError(t, kvstore.Get(ctx, s.kv, delivery.AddressKey, &restored))
	assert.Equal(t, "Rua B", restored.Street)
	assert.Equal(t, "13000-000", restored.ZipCode)
}

func TestBackupHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	orders := &fakeOrders{orders: sampleOrders()}
	s := newTestService(orders, kvstore.NewMemory())

	r := gin.New()
	NewHandler(s, testLog()).Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/backup/export", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "store-chicken-backup-")
	exported := w.Body.Bytes()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", FileName(now))
	require.NoError(t, err)
	_, err = fw.Write(exported)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/backup/restore", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, orders.restored, 1)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/backup/restore", bytes.NewReader([]byte(`{}`))))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body.Reset()
	mw = multipart.NewWriter(&body)
	fw, err = mw.CreateFormFile("file", "pedidos.txt")
	require.NoError(t, err)
	_, err = fw.Write(exported)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req = httptest.NewRequest(http.MethodPost, "/backup/restore", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "arquivo de backup")
	assert.Equal(t, 1, orders.calls)
}
