package delivery

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Zone struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string              `gorm:"not null" json:"name"`
	RadiusKm      decimal.Decimal     `gorm:"type:numeric(6,2);not null" json:"radius_km"`
	Fee           decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"fee"`
	MinTime       int                 `gorm:"not null" json:"min_time"`
	MaxTime       int                 `gorm:"not null" json:"max_time"`
	Active        bool                `gorm:"not null" json:"active"`
	Description   *string             `json:"description"`
	MinOrderValue decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"min_order_value"`
	Color         *string             `json:"color"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (Zone) TableName() string {
	return "delivery_zones"
}

// ZoneInput is a create/update request. Fee and times left out are filled
// from the radius estimate.
type ZoneInput struct {
	Name          string              `json:"name" binding:"required"`
	RadiusKm      decimal.Decimal     `json:"radius_km"`
	Fee           decimal.NullDecimal `json:"fee"`
	MinTime       *int                `json:"min_time"`
	MaxTime       *int                `json:"max_time"`
	Active        *bool               `json:"active"`
	Description   *string             `json:"description"`
	MinOrderValue decimal.NullDecimal `json:"min_order_value"`
	Color         *string             `json:"color" binding:"omitempty,hexcolor"`
}

// Address is the business location, kept in the key-value store with the
// same keys the panel has always used.
type Address struct {
	Street       string `json:"street" binding:"required,notblank"`
	Number       string `json:"number" binding:"required,notblank"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city" binding:"required,notblank"`
	State        string `json:"state" binding:"required,notblank"`
	ZipCode      string `json:"zipCode"`
	Complement   string `json:"complement,omitempty"`
}

const AddressKey = "businessAddress"

// UnmarshalJSON also takes the CEP under "postalCode" or "postal_code", the
// names older panels and backups used.
func (a *Address) UnmarshalJSON(data []byte) error {
	type plain Address
	aux := struct {
		*plain
		PostalCode      string `json:"postalCode"`
		PostalCodeSnake string `json:"postal_code"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if a.ZipCode == "" {
		a.ZipCode = aux.PostalCode
	}
	if a.ZipCode == "" {
		a.ZipCode = aux.PostalCodeSnake
	}
	return nil
}

func (a Address) Complete() bool {
	return strings.TrimSpace(a.Street) != "" && strings.TrimSpace(a.Number) != "" &&
		strings.TrimSpace(a.City) != "" && strings.TrimSpace(a.State) != ""
}

func (a Address) String() string {
	var b strings.Builder
	b.WriteString(a.Street + ", " + a.Number)
	if a.Complement != "" {
		b.WriteString(" " + a.Complement)
	}
	if a.Neighborhood != "" {
		b.WriteString(", " + a.Neighborhood)
	}
	b.WriteString(" - " + a.City + " - " + a.State)
	if a.ZipCode != "" {
		b.WriteString(", " + a.ZipCode)
	}
	return b.String()
}
