package notify

import (
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var ErrNoBusinessPhone = errors.New("número do WhatsApp não configurado")

// Source supplies the business contact and the operator's switches.
type Source interface {
	BusinessPhone(ctx context.Context) (string, error)
	NotificationFlags(ctx context.Context) (Flags, error)
}

// Sender pushes a message out of the process. Senders ignore messages they
// cannot carry.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	Event       string    `json:"event"`
	OrderNumber string    `json:"order_number,omitempty"`
	Status      string    `json:"status,omitempty"`
	Audience    Audience  `json:"audience,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Text        string    `json:"text,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Options struct {
	CountryCode    string
	CurrencySymbol string
	SendTimeout    time.Duration
}

type Notifier struct {
	source      Source
	senders     []Sender
	log         *logrus.Entry
	countryCode string
	currency    string
	sendTimeout time.Duration
	now         func() time.Time
}

func NewNotifier(source Source, log *logrus.Entry, opts Options, senders ...Sender) *Notifier {
	if opts.CountryCode == "" {
		opts.CountryCode = DefaultCountryCode
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "R$"
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}

	return &Notifier{
		source:      source,
		senders:     senders,
		log:         log,
		countryCode: opts.CountryCode,
		currency:    opts.CurrencySymbol,
		sendTimeout: opts.SendTimeout,
		now:         time.Now,
	}
}

// StatusChanged builds the panel feedback for an order that just moved to
// status and forwards the event to the configured senders.
func (n *Notifier) StatusChanged(ctx context.Context, o OrderView, status string) Notification {
	notification := Notification{Links: []Link{}}

	p, ok := Present(status)
	if !ok {
		notification.Toast = Toast{
			Title:       "Status atualizado",
			Description: fmt.Sprintf("O pedido %s foi atualizado", o.Number),
		}
		return notification
	}

	flags := n.flags(ctx)
	business := n.businessPhone(ctx)

	notification.Toast = Toast{Title: p.ToastTitle, Description: p.Describe(o.Number)}
	if flags.Sound {
		notification.Sound = p.Cue
	}

	messages := []Message{{Event: "status." + status, OrderNumber: o.Number, Status: status}}

	if status == "processing" && flags.Delivery && o.CustomerPhone != "" && business != "" {
		if link, ok := n.orderLink(deliveryTmpl, AudienceCustomer, "delivery", o.CustomerPhone, o, business); ok {
			notification.Links = append(notification.Links, link)
			messages = append(messages, linkMessage(link, o.Number, status))
		}
	}

	n.dispatch(ctx, messages)
	return notification
}

// NewOrder builds the alert for a freshly placed order: confirmation to the
// customer and a heads-up to the business number.
func (n *Notifier) NewOrder(ctx context.Context, o OrderView) Notification {
	notification := Notification{
		Toast: Toast{
			Title:       "🔔 Novo Pedido Recebido!",
			Description: fmt.Sprintf("Pedido %s de %s", o.Number, o.CustomerName),
		},
		Links: []Link{},
	}

	flags := n.flags(ctx)
	if flags.Sound {
		notification.Sound = CueNewOrder
	}

	messages := []Message{{Event: "created", OrderNumber: o.Number, Status: "pending"}}

	business := n.businessPhone(ctx)
	if business != "" {
		if flags.Whatsapp && flags.AutoConfirm && o.CustomerPhone != "" {
			if link, ok := n.orderLink(confirmationTmpl, AudienceCustomer, "confirmation", o.CustomerPhone, o, business); ok {
				notification.Links = append(notification.Links, link)
				messages = append(messages, linkMessage(link, o.Number, "pending"))
			}
		}

		if link, ok := n.orderLink(businessTmpl, AudienceBusiness, "new-order", business, o, business); ok {
			notification.Links = append(notification.Links, link)
			messages = append(messages, linkMessage(link, o.Number, "pending"))
		}
	}

	n.dispatch(ctx, messages)
	return notification
}

// CartOrder builds the customer's "order through WhatsApp" link from the
// public menu.
func (n *Notifier) CartOrder(ctx context.Context, lines []Line, subtotal, deliveryFee, total decimal.Decimal) (Link, error) {
	business := n.businessPhone(ctx)
	if business == "" {
		return Link{}, ErrNoBusinessPhone
	}

	text, err := render(cartTmpl, cartData{
		Lines:       lines,
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Total:       total,
		Currency:    n.currency,
	})
	if err != nil {
		return Link{}, err
	}

	return n.link(AudienceBusiness, "cart", business, text), nil
}

// OrderPlaced is the feedback shown to the customer after checkout.
func OrderPlaced() Notification {
	return Notification{
		Sound: CueNewOrder,
		Toast: Toast{
			Title:       "Pedido realizado!",
			Description: "Seu pedido foi enviado com sucesso.",
		},
		Links: []Link{},
	}
}

func (n *Notifier) orderLink(t *template.Template, audience Audience, purpose, phone string, o OrderView, contact string) (Link, bool) {
	text, err := render(t, orderData{Order: o, Currency: n.currency, Contact: contact})
	if err != nil {
		n.log.Errorf("order %s: %v", o.Number, err)
		return Link{}, false
	}
	return n.link(audience, purpose, phone, text), true
}

func (n *Notifier) link(audience Audience, purpose, phone, text string) Link {
	digits := NormalizePhone(phone, n.countryCode)
	return Link{
		Audience: audience,
		Purpose:  purpose,
		Phone:    digits,
		Text:     text,
		URL:      WhatsAppURL(digits, text),
	}
}

func (n *Notifier) flags(ctx context.Context) Flags {
	flags, err := n.source.NotificationFlags(ctx)
	if err != nil {
		n.log.Warnf("notification flags unavailable, using defaults - %v", err)
		return AllEnabled()
	}
	return flags
}

func (n *Notifier) businessPhone(ctx context.Context) string {
	phone, err := n.source.BusinessPhone(ctx)
	if err != nil {
		n.log.Debugf("business phone unavailable - %v", err)
		return ""
	}
	return phone
}

func (n *Notifier) dispatch(ctx context.Context, messages []Message) {
	if len(n.senders) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, n.sendTimeout)
	defer cancel()

	occurredAt := n.now()
	for _, msg := range messages {
		msg.OccurredAt = occurredAt
		for _, s := range n.senders {
			if err := s.Send(ctx, msg); err != nil {
				n.log.Errorf("send %s for order %s: %v", msg.Event, msg.OrderNumber, err)
			}
		}
	}
}

func linkMessage(link Link, orderNumber, status string) Message {
	return Message{
		Event:       "message." + string(link.Audience),
		OrderNumber: orderNumber,
		Status:      status,
		Audience:    link.Audience,
		Phone:       link.Phone,
		Text:        link.Text,
	}
}
