package checkout

import (
	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/internal/notify"
	"github.com/mserebryaakov/delivery-panel/internal/order"
	"github.com/mserebryaakov/delivery-panel/internal/product"
	"github.com/shopspring/decimal"
)

type CartItem struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=99"`
}

type QuoteRequest struct {
	Items     []CartItem `json:"items" binding:"required,min=1,dive"`
	ZoneID    *uuid.UUID `json:"zone_id"`
	PromoCode string     `json:"promo_code" binding:"max=32"`
}

type Request struct {
	CustomerName    string              `json:"customer_name" binding:"required,notblank,max=120"`
	CustomerPhone   string              `json:"customer_phone" binding:"required,phone"`
	CustomerAddress string              `json:"customer_address" binding:"required,notblank,max=300"`
	Items           []CartItem          `json:"items" binding:"required,min=1,dive"`
	PaymentMethod   order.PaymentMethod `json:"payment_method" binding:"required,oneof=cash pix credit debit"`
	ZoneID          *uuid.UUID          `json:"zone_id"`
	PromoCode       string              `json:"promo_code" binding:"max=32"`
	Notes           string              `json:"notes" binding:"max=500"`
}

func (r Request) quote() QuoteRequest {
	return QuoteRequest{Items: r.Items, ZoneID: r.ZoneID, PromoCode: r.PromoCode}
}

type Quote struct {
	Totals
	Items        []order.Item        `json:"items"`
	PromoCode    string              `json:"promo_code,omitempty"`
	ZoneID       *uuid.UUID          `json:"zone_id,omitempty"`
	MinTime      int                 `json:"min_time,omitempty"`
	MaxTime      int                 `json:"max_time,omitempty"`
	MinimumOrder decimal.NullDecimal `json:"minimum_order"`
}

type Result struct {
	Order        *order.Order        `json:"order"`
	Notification notify.Notification `json:"notification"`
}

type MenuHeader struct {
	Name           string              `json:"name"`
	Logo           string              `json:"logo,omitempty"`
	WhatsappNumber string              `json:"whatsapp_number,omitempty"`
	DeliveryFee    decimal.NullDecimal `json:"delivery_fee"`
	MinimumOrder   decimal.NullDecimal `json:"minimum_order"`
}

type Menu struct {
	Company    MenuHeader         `json:"company"`
	Categories []product.Category `json:"categories"`
}

type WhatsAppRequest struct {
	Items []CartItem `json:"items" binding:"required,min=1,dive"`
}

type WhatsAppOrder struct {
	Totals
	Link notify.Link `json:"link"`
}

type PaymentOption struct {
	Value order.PaymentMethod `json:"value"`
	Label string              `json:"label"`
}

func PaymentOptions() []PaymentOption {
	options := make([]PaymentOption, 0, len(order.PaymentMethods))
	for _, m := range order.PaymentMethods {
		options = append(options, PaymentOption{Value: m, Label: notify.PaymentLabel(string(m))})
	}
	return options
}
