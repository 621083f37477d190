package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	phone    string
	phoneErr error
	flags    Flags
	flagsErr error
}

func (s *fakeSource) BusinessPhone(ctx context.Context) (string, error) {
	return s.phone, s.phoneErr
}

func (s *fakeSource) NotificationFlags(ctx context.Context) (Flags, error) {
	return s.flags, s.flagsErr
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func sampleOrder() OrderView {
	return OrderView{
		Number:          "ORD-1A2B3C4D",
		CustomerName:    "Maria",
		CustomerPhone:   "(11) 98765-4321",
		CustomerAddress: "Rua das Flores, 10",
		Items: []Line{
			{Name: "Pizza Calabresa", Quantity: 2, Price: decimal.RequireFromString("39.90")},
		},
		Total:         decimal.RequireFromString("84.80"),
		PaymentMethod: "pix",
		CreatedAt:     time.Date(2024, 5, 10, 19, 30, 0, 0, time.UTC),
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(11) 98765-4321", "5511987654321"},
		{"1133334444", "551133334444"},
		{"+55 11 98765-4321", "5511987654321"},
		{"98765", "98765"},
		{"", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizePhone(tc.in, DefaultCountryCode), tc.in)
	}
}

func TestWhatsAppURLEncodesSpacesAsPercent20(t *testing.T) {
	got := WhatsAppURL("5511987654321", "Olá mundo & cia")
	assert.Equal(t, "https://wa.me/5511987654321?text=Ol%C3%A1%20mundo%20%26%20cia", got)
	assert.NotContains(t, got, "+")
}

func TestPresentations(t *testing.T) {
	p, ok := Present("processing")
	require.True(t, ok)
	assert.Equal(t, CueOrderProcessing, p.Cue)
	assert.Equal(t, "O pedido ORD-1 saiu para entrega", p.Describe("ORD-1"))

	_, ok = Present("refunded")
	assert.False(t, ok)
	assert.Equal(t, "refunded", StatusLabel("refunded"))
	assert.Equal(t, "Entregue", StatusLabel("delivered"))
	assert.Equal(t, "Não informado", PaymentLabel(""))
}

func TestStatusChangedProcessingBuildsDeliveryLink(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(&fakeSource{phone: "11 3333-4444", flags: AllEnabled()}, testLog(), Options{}, sender)

	got := n.StatusChanged(context.Background(), sampleOrder(), "processing")

	assert.Equal(t, CueOrderProcessing, got.Sound)
	assert.Equal(t, "Pedido Saiu para Entrega", got.Toast.Title)
	require.Len(t, got.Links, 1)
	link := got.Links[0]
	assert.Equal(t, AudienceCustomer, link.Audience)
	assert.Equal(t, "5511987654321", link.Phone)
	assert.True(t, strings.HasPrefix(link.URL, "https://wa.me/5511987654321?text="))
	assert.Contains(t, link.Text, "PEDIDO SAIU PARA ENTREGA")
	assert.Contains(t, link.Text, "R$ 84.80")
	assert.Contains(t, link.Text, "Pix")
	assert.Contains(t, link.Text, "11 3333-4444")

	require.Len(t, sender.msgs, 2)
	assert.Equal(t, "status.processing", sender.msgs[0].Event)
	assert.Equal(t, "message.customer", sender.msgs[1].Event)
	assert.False(t, sender.msgs[1].OccurredAt.IsZero())
}

func TestStatusChangedRespectsFlags(t *testing.T) {
	flags := AllEnabled()
	flags.Sound = false
	flags.Delivery = false
	n := NewNotifier(&fakeSource{phone: "11 3333-4444", flags: flags}, testLog(), Options{})

	got := n.StatusChanged(context.Background(), sampleOrder(), "processing")

	assert.Empty(t, got.Sound)
	assert.Empty(t, got.Links)
	assert.Equal(t, "Pedido Saiu para Entrega", got.Toast.Title)
}

func TestStatusChangedWithoutBusinessPhoneHasNoLinks(t *testing.T) {
	n := NewNotifier(&fakeSource{phoneErr: errors.New("not configured"), flags: AllEnabled()}, testLog(), Options{})

	got := n.StatusChanged(context.Background(), sampleOrder(), "processing")

	assert.Equal(t, CueOrderProcessing, got.Sound)
	assert.Empty(t, got.Links)
}

func TestStatusChangedDeliveredAndCancelled(t *testing.T) {
	n := NewNotifier(&fakeSource{phone: "11 3333-4444", flags: AllEnabled()}, testLog(), Options{})

	delivered := n.StatusChanged(context.Background(), sampleOrder(), "delivered")
	assert.Equal(t, CueOrderDelivered, delivered.Sound)
	assert.Equal(t, "O pedido ORD-1A2B3C4D foi entregue", delivered.Toast.Description)
	assert.Empty(t, delivered.Links)

	cancelled := n.StatusChanged(context.Background(), sampleOrder(), "cancelled")
	assert.Equal(t, CueOrderCancelled, cancelled.Sound)
	assert.Empty(t, cancelled.Links)
}

func TestFlagsErrorFallsBackToEnabled(t *testing.T) {
	n := NewNotifier(&fakeSource{phone: "11 3333-4444", flagsErr: errors.New("db down")}, testLog(), Options{})

	got := n.StatusChanged(context.Background(), sampleOrder(), "delivered")
	assert.Equal(t, CueOrderDelivered, got.Sound)
}

func TestNewOrderLinks(t *testing.T) {
	sender := &recordingSender{err: errors.New("gateway down")}
	n := NewNotifier(&fakeSource{phone: "11 3333-4444", flags: AllEnabled()}, testLog(), Options{}, sender)

	got := n.NewOrder(context.Background(), sampleOrder())

	assert.Equal(t, CueNewOrder, got.Sound)
	assert.Equal(t, "Pedido ORD-1A2B3C4D de Maria", got.Toast.Description)
	require.Len(t, got.Links, 2)
	assert.Equal(t, AudienceCustomer, got.Links[0].Audience)
	assert.Contains(t, got.Links[0].Text, "CONFIRMAÇÃO DE PEDIDO")
	assert.Contains(t, got.Links[0].Text, "2x Pizza Calabresa - R$ 79.80")
	assert.Equal(t, AudienceBusiness, got.Links[1].Audience)
	assert.Equal(t, "551133334444", got.Links[1].Phone)
	assert.Contains(t, got.Links[1].Text, "10/05/2024 19:30:00")

	// sender errors never reach the caller
	assert.Len(t, sender.msgs, 3)
}

func TestNewOrderWithoutAutoConfirm(t *testing.T) {
	flags := AllEnabled()
	flags.AutoConfirm = false
	n := NewNotifier(&fakeSource{phone: "11 3333-4444", flags: flags}, testLog(), Options{})

	got := n.NewOrder(context.Background(), sampleOrder())

	require.Len(t, got.Links, 1)
	assert.Equal(t, AudienceBusiness, got.Links[0].Audience)
}

func TestCartOrder(t *testing.T) {
	n := NewNotifier(&fakeSource{phone: "11 3333-4444", flags: AllEnabled()}, testLog(), Options{})
	lines := []Line{{Name: "Coca-Cola", Quantity: 2, Price: decimal.RequireFromString("5.95")}}

	link, err := n.CartOrder(context.Background(), lines,
		decimal.RequireFromString("11.90"), decimal.Zero, decimal.RequireFromString("11.90"))
	require.NoError(t, err)
	assert.Equal(t, "551133334444", link.Phone)
	assert.Contains(t, link.Text, "2x Coca-Cola - R$ 11.90")
	assert.NotContains(t, link.Text, "Taxa de Entrega")

	link, err = n.CartOrder(context.Background(), lines,
		decimal.RequireFromString("11.90"), decimal.RequireFromString("5"), decimal.RequireFromString("16.90"))
	require.NoError(t, err)
	assert.Contains(t, link.Text, "Taxa de Entrega:* R$ 5.00")

	_, err = NewNotifier(&fakeSource{}, testLog(), Options{}).CartOrder(context.Background(), lines,
		decimal.Zero, decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, ErrNoBusinessPhone)
}

func TestWhatsAppSender(t *testing.T) {
	var got struct {
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	var auth string
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewWhatsAppSender(srv.URL, "secret", testLog())

	require.NoError(t, s.Send(context.Background(), Message{Event: "created"}))
	assert.Equal(t, 0, calls)

	require.NoError(t, s.Send(context.Background(), Message{Event: "message.customer", Phone: "5511987654321", Text: "oi"}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "5511987654321", got.Phone)
	assert.Equal(t, "oi", got.Message)
}

func TestWhatsAppSenderNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWhatsAppSender(srv.URL, "secret", testLog()).
		Send(context.Background(), Message{Phone: "5511987654321", Text: "oi"})
	assert.Error(t, err)
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "order.status.delivered", RoutingKey(Message{Event: "status.delivered"}))
	assert.Equal(t, "order.created", RoutingKey(Message{Event: "created"}))
}
