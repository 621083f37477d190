package notify

import "fmt"

// Presentation is how the panel shows an order status.
type Presentation struct {
	Label      string
	Cue        Cue
	ToastTitle string
	verb       string
}

func (p Presentation) Describe(orderNumber string) string {
	return fmt.Sprintf("O pedido %s %s", orderNumber, p.verb)
}

var presentations = map[string]Presentation{
	"pending": {
		Label:      "Aguardando",
		Cue:        CueNewOrder,
		ToastTitle: "Novo Pedido Recebido",
		verb:       "está aguardando",
	},
	"processing": {
		Label:      "Saiu para entrega",
		Cue:        CueOrderProcessing,
		ToastTitle: "Pedido Saiu para Entrega",
		verb:       "saiu para entrega",
	},
	"delivered": {
		Label:      "Entregue",
		Cue:        CueOrderDelivered,
		ToastTitle: "Pedido Entregue",
		verb:       "foi entregue",
	},
	"cancelled": {
		Label:      "Cancelado",
		Cue:        CueOrderCancelled,
		ToastTitle: "Pedido Cancelado",
		verb:       "foi cancelado",
	},
}

func Present(status string) (Presentation, bool) {
	p, ok := presentations[status]
	return p, ok
}

// StatusLabel falls back to the raw status for unknown values.
func StatusLabel(status string) string {
	if p, ok := presentations[status]; ok {
		return p.Label
	}
	return status
}

func PaymentLabel(method string) string {
	switch method {
	case "cash":
		return "Dinheiro"
	case "pix":
		return "Pix"
	case "credit":
		return "Cartão de Crédito"
	case "debit":
		return "Cartão de Débito"
	default:
		return "Não informado"
	}
}
