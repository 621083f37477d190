package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/internal/notify"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var Statuses = []Status{StatusPending, StatusProcessing, StatusDelivered, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentPix    PaymentMethod = "pix"
	PaymentCredit PaymentMethod = "credit"
	PaymentDebit  PaymentMethod = "debit"
)

var PaymentMethods = []PaymentMethod{PaymentCash, PaymentPix, PaymentCredit, PaymentDebit}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentPix, PaymentCredit, PaymentDebit:
		return true
	}
	return false
}

type Item struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Order struct {
	ID              uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber     string                    `gorm:"uniqueIndex;not null" json:"order_number"`
	CustomerName    string                    `gorm:"not null" json:"customer_name"`
	CustomerPhone   string                    `gorm:"not null" json:"customer_phone"`
	CustomerAddress string                    `gorm:"not null" json:"customer_address"`
	Items           datatypes.JSONSlice[Item] `gorm:"type:jsonb;not null" json:"items"`
	Subtotal        decimal.Decimal           `gorm:"type:numeric(10,2);not null" json:"subtotal"`
	DeliveryFee     decimal.Decimal           `gorm:"type:numeric(10,2);not null" json:"delivery_fee"`
	Discount        decimal.Decimal           `gorm:"type:numeric(10,2);not null" json:"discount"`
	PromoCode       *string                   `json:"promo_code"`
	ZoneID          *uuid.UUID                `gorm:"type:uuid" json:"zone_id"`
	TotalAmount     decimal.Decimal           `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	PaymentMethod   PaymentMethod             `gorm:"not null" json:"payment_method"`
	Status          Status                    `gorm:"index;not null" json:"status"`
	Notes           *string                   `json:"notes"`
	CreatedAt       time.Time                 `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

// NumberFor derives the short display code of an order from its id.
func NumberFor(id uuid.UUID) string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

func (o *Order) View() notify.OrderView {
	lines := make([]notify.Line, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, notify.Line{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}

	var notes string
	if o.Notes != nil {
		notes = *o.Notes
	}

	return notify.OrderView{
		Number:          o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		Items:           lines,
		Total:           o.TotalAmount,
		PaymentMethod:   string(o.PaymentMethod),
		Notes:           notes,
		CreatedAt:       o.CreatedAt,
	}
}

type Filter struct {
	Statuses []Status
	Since    time.Time
	Limit    int
}

// StatusChange is an updated order plus what the panel should do about it.
type StatusChange struct {
	Order        *Order              `json:"order"`
	Notification notify.Notification `json:"notification"`
}

type StatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

type ProductStat struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type Stats struct {
	Counts        map[Status]int64 `json:"counts"`
	TotalOrders   int64            `json:"total_orders"`
	Revenue       decimal.Decimal  `json:"revenue"`
	AverageTicket decimal.Decimal  `json:"average_ticket"`
	TopProducts   []ProductStat    `json:"top_products"`
	RecentOrders  []Order          `json:"recent_orders"`
}

// History tabs of the panel.
const (
	TabReceived  = "received"
	TabSent      = "sent"
	TabCancelled = "cancelled"
)

var historyTabs = map[string][]Status{
	TabReceived:  {StatusPending},
	TabSent:      {StatusProcessing, StatusDelivered},
	TabCancelled: {StatusCancelled},
}
