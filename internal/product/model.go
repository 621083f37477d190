package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Category    *string         `gorm:"index" json:"category"`
	ImageURL    *string         `json:"image_url"`
	IsAvailable bool            `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ProductInput struct {
	Name        string          `json:"name" binding:"required,notblank"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    *string         `json:"category"`
	ImageURL    *string         `json:"image_url" binding:"omitempty,url"`
	IsAvailable *bool           `json:"is_available"`
}

type Filter struct {
	Category      string
	AvailableOnly bool
}

// Category groups the menu; products without one land in "Outros".
type Category struct {
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

const UncategorizedName = "Outros"
