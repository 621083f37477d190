package notify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"
)

var funcs = template.FuncMap{
	"money": func(currency string, v decimal.Decimal) string {
		return currency + " " + v.StringFixed(2)
	},
	"payment": PaymentLabel,
	"items": func(currency string, lines []Line) string {
		out := make([]string, 0, len(lines))
		for _, l := range lines {
			out = append(out, fmt.Sprintf("%dx %s - %s %s", l.Quantity, l.Name, currency, l.Subtotal().StringFixed(2)))
		}
		return strings.Join(out, "\n")
	},
	"positive": func(v decimal.Decimal) bool {
		return v.IsPositive()
	},
}

var (
	confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(
		`🍕 *CONFIRMAÇÃO DE PEDIDO* - {{.Order.Number}}

Olá {{.Order.CustomerName}}!

✅ *Seu pedido foi RECEBIDO com sucesso!*

📝 *Itens confirmados:*
{{items .Currency .Order.Items}}

💰 *Total:* {{money .Currency .Order.Total}}
💳 *Forma de pagamento:* {{payment .Order.PaymentMethod}}
📍 *Endereço de entrega:* {{.Order.CustomerAddress}}
{{- if .Order.Notes}}
📋 *Observações:* {{.Order.Notes}}
{{- end}}

⏱️ *Tempo estimado:* 30-45 minutos
📞 *Contato:* {{.Contact}}

Obrigado pela preferência! 🙏`))

	deliveryTmpl = template.Must(template.New("delivery").Funcs(funcs).Parse(
		`🚚 *PEDIDO SAIU PARA ENTREGA* - {{.Order.Number}}

Olá {{.Order.CustomerName}}!

🛵 *Seu pedido está a caminho!*

📍 *Endereço de entrega:* {{.Order.CustomerAddress}}
⏱️ *Tempo estimado:* 15-20 minutos
💰 *Total a pagar:* {{money .Currency .Order.Total}}
💳 *Forma de pagamento:* {{payment .Order.PaymentMethod}}

Aguarde nosso entregador! 📞 *Contato:* {{.Contact}}

Obrigado pela preferência! 🙏`))

	businessTmpl = template.Must(template.New("business").Funcs(funcs).Parse(
		`🔔 *NOVO PEDIDO RECEBIDO* - {{.Order.Number}}

👤 *Cliente:* {{.Order.CustomerName}}
📞 *Telefone:* {{.Order.CustomerPhone}}
📍 *Endereço:* {{.Order.CustomerAddress}}

📝 *Itens:*
{{items .Currency .Order.Items}}

💰 *Total:* {{money .Currency .Order.Total}}
💳 *Pagamento:* {{payment .Order.PaymentMethod}}
{{- if .Order.Notes}}
📋 *Observações:* {{.Order.Notes}}
{{- end}}

⏰ *Horário do pedido:* {{.Order.CreatedAt.Format "02/01/2006 15:04:05"}}

⚡ *AÇÃO NECESSÁRIA:* Confirmar recebimento do pedido`))

	cartTmpl = template.Must(template.New("cart").Funcs(funcs).Parse(
		`🛒 *NOVO PEDIDO*

📋 *Itens:*
{{items .Currency .Lines}}

💰 *Subtotal:* {{money .Currency .Subtotal}}
{{if positive .DeliveryFee}}🚚 *Taxa de Entrega:* {{money .Currency .DeliveryFee}}
{{end}}💵 *Total:* {{money .Currency .Total}}

Gostaria de finalizar este pedido!`))
)

type orderData struct {
	Order    OrderView
	Currency string
	Contact  string
}

type cartData struct {
	Lines       []Line
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
	Currency    string
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
