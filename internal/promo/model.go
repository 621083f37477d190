package promo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	Percentage DiscountType = "percentage"
	Fixed      DiscountType = "fixed"
)

var hundred = decimal.NewFromInt(100)

// Discount is an explicit discount rule: a percentage (0..100) of the
// subtotal or a fixed amount.
type Discount struct {
	Type  DiscountType    `json:"type" binding:"required,oneof=percentage fixed"`
	Value decimal.Decimal `json:"value"`
}

func (d Discount) Valid() bool {
	switch d.Type {
	case Percentage:
		return !d.Value.IsNegative() && d.Value.LessThanOrEqual(hundred)
	case Fixed:
		return !d.Value.IsNegative()
	default:
		return false
	}
}

// Amount is the discount applied to subtotal, never above the subtotal and
// rounded to cents.
func (d Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() || !d.Valid() {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch d.Type {
	case Percentage:
		amount = subtotal.Mul(d.Value).Div(hundred)
	case Fixed:
		amount = d.Value
	}

	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	return amount.Round(2)
}

type State string

const (
	StateActive   State = "active"
	StateInactive State = "inactive"
	StateExpired  State = "expired"
	StateDepleted State = "depleted"
)

func (s State) Label() string {
	switch s {
	case StateActive:
		return "Ativo"
	case StateInactive:
		return "Inativo"
	case StateExpired:
		return "Expirado"
	case StateDepleted:
		return "Esgotado"
	default:
		return "Desconhecido"
	}
}

type PromoCode struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	Code          string              `gorm:"uniqueIndex;not null" json:"code"`
	Description   *string             `json:"description"`
	DiscountType  DiscountType        `gorm:"not null" json:"discount_type"`
	DiscountValue decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"discount_value"`
	MinOrderValue decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"min_order_value"`
	UsageLimit    *int                `json:"usage_limit"`
	UsedCount     int                 `gorm:"not null" json:"used_count"`
	ValidFrom     *time.Time          `json:"valid_from"`
	ValidUntil    *time.Time          `json:"valid_until"`
	IsActive      bool                `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (PromoCode) TableName() string {
	return "promotional_codes"
}

func (p PromoCode) Discount() Discount {
	return Discount{Type: p.DiscountType, Value: p.DiscountValue}
}

// Depleted reports whether a limited code has been used up. A nil or zero
// limit means unlimited.
func (p PromoCode) Depleted() bool {
	return p.UsageLimit != nil && *p.UsageLimit > 0 && p.UsedCount >= *p.UsageLimit
}

// State checks inactive, then expired, then depleted.
func (p PromoCode) State(now time.Time) State {
	if !p.IsActive {
		return StateInactive
	}
	if p.ValidUntil != nil && p.ValidUntil.Before(now) {
		return StateExpired
	}
	if p.Depleted() {
		return StateDepleted
	}
	return StateActive
}

type PromoView struct {
	PromoCode
	Status      State  `json:"status"`
	StatusLabel string `json:"status_label"`
}

type PromoInput struct {
	Code          string              `json:"code" binding:"required,notblank,max=32"`
	Description   *string             `json:"description"`
	DiscountType  DiscountType        `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue decimal.Decimal     `json:"discount_value"`
	MinOrderValue decimal.NullDecimal `json:"min_order_value"`
	UsageLimit    *int                `json:"usage_limit" binding:"omitempty,min=0"`
	ValidFrom     *time.Time          `json:"valid_from"`
	ValidUntil    *time.Time          `json:"valid_until"`
	IsActive      *bool               `json:"is_active"`
}

type ValidateRequest struct {
	Code     string          `json:"code" binding:"required,notblank"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type ValidateResponse struct {
	Code          string          `json:"code"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Discount      decimal.Decimal `json:"discount"`
}
