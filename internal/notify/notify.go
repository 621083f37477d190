package notify

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type NotifyLogHook struct{}

func (h *NotifyLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Notify: " + entry.Message
	return nil
}

func (h *NotifyLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Cue names the audio file the panel plays.
type Cue string

const (
	CueNewOrder        Cue = "new-order"
	CueOrderProcessing Cue = "order-processing"
	CueOrderDelivered  Cue = "order-delivered"
	CueOrderCancelled  Cue = "order-cancelled"
)

type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Audience string

const (
	AudienceCustomer Audience = "customer"
	AudienceBusiness Audience = "business"
)

// Link is a pre-filled wa.me deep link the panel opens in a new tab.
type Link struct {
	Audience Audience `json:"audience"`
	Purpose  string   `json:"purpose"`
	Phone    string   `json:"phone"`
	Text     string   `json:"text"`
	URL      string   `json:"url"`
}

// Notification is what the panel has to do after an order event.
type Notification struct {
	Sound Cue    `json:"sound,omitempty"`
	Toast Toast  `json:"toast"`
	Links []Link `json:"links"`
}

type Line struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderView is the part of an order the messages talk about.
type OrderView struct {
	Number          string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Items           []Line
	Total           decimal.Decimal
	PaymentMethod   string
	Notes           string
	CreatedAt       time.Time
}

// Flags are the operator's notification switches. Missing switches are on.
type Flags struct {
	Sound       bool `json:"sound"`
	Whatsapp    bool `json:"whatsapp"`
	AutoConfirm bool `json:"auto_confirm"`
	Delivery    bool `json:"delivery"`
}

func AllEnabled() Flags {
	return Flags{Sound: true, Whatsapp: true, AutoConfirm: true, Delivery: true}
}
