package settings

import (
	"time"

	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/internal/notify"
	"github.com/shopspring/decimal"
)

// CompanySettings is a single row holding the business contact and the
// flat delivery rules used when no zone is picked.
type CompanySettings struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	WhatsappNumber string              `gorm:"not null" json:"whatsapp_number"`
	CompanyName    *string             `json:"company_name"`
	CompanyAddress *string             `json:"company_address"`
	DeliveryFee    decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"delivery_fee"`
	MinimumOrder   decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"minimum_order"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func (CompanySettings) TableName() string {
	return "company_settings"
}

type CompanyInput struct {
	WhatsappNumber string              `json:"whatsapp_number" binding:"required,phone"`
	CompanyName    *string             `json:"company_name"`
	CompanyAddress *string             `json:"company_address"`
	DeliveryFee    decimal.NullDecimal `json:"delivery_fee"`
	MinimumOrder   decimal.NullDecimal `json:"minimum_order"`
}

// Preferences are the operator's panel settings kept in the key-value store.
type Preferences struct {
	Notifications notify.Flags `json:"notifications"`
	PrinterWidth  int          `json:"printer_width"`
	PrinterHeight int          `json:"printer_height"`
	CompanyName   string       `json:"company_name"`
	CompanyLogo   string       `json:"company_logo,omitempty"`
}

// PreferencesUpdate changes only the fields that are present.
type PreferencesUpdate struct {
	SoundEnabled    *bool   `json:"sound_enabled"`
	WhatsappEnabled *bool   `json:"whatsapp_enabled"`
	AutoConfirm     *bool   `json:"auto_confirm"`
	DeliveryEnabled *bool   `json:"delivery_enabled"`
	PrinterWidth    *int    `json:"printer_width" binding:"omitempty,oneof=58 80"`
	PrinterHeight   *int    `json:"printer_height" binding:"omitempty,min=0"`
	CompanyName     *string `json:"company_name" binding:"omitempty,max=120"`
	CompanyLogo     *string `json:"company_logo"`
}

const (
	keySound         = "notification-sound-enabled"
	keyWhatsapp      = "notification-whatsapp-enabled"
	keyAutoConfirm   = "notification-auto-confirm"
	keyDelivery      = "notification-delivery-enabled"
	keyPrinterWidth  = "printerWidth"
	keyPrinterHeight = "printerHeight"
	keyCompanyName   = "companyName"
	keyCompanyLogo   = "companyLogo"
)

const (
	DefaultCompanyName = "Entrega Rápida"
	maxLogoBytes       = 5 * 1024 * 1024
)
