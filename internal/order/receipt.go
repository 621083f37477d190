package order

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/mserebryaakov/delivery-panel/internal/notify"
	"github.com/shopspring/decimal"
)

const maxReceiptCopies = 5

var receiptFuncs = template.FuncMap{
	"money": func(v decimal.Decimal) string {
		return "R$ " + v.StringFixed(2)
	},
	"positive": func(v decimal.Decimal) bool {
		return v.IsPositive()
	},
	"subtotal": func(it Item) decimal.Decimal {
		return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
	},
}

var receiptTmpl = template.Must(template.New("receipt").Funcs(receiptFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Pedido {{.Order.OrderNumber}}</title>
<style>
@page { size: {{.WidthMm}}mm auto; margin: 0; }
@media print {
  body { margin: 0; }
  .page-break { page-break-after: always; }
}
body { width: {{.WidthMm}}mm; font-family: monospace; font-size: {{.FontPx}}px; line-height: 1.4; margin: 0 auto; padding: 2mm; box-sizing: border-box; }
.header { text-align: center; margin-bottom: 12px; }
.order-info { margin-bottom: 10px; }
.items { margin-bottom: 10px; }
.total { font-weight: bold; margin-top: 8px; }
.footer { margin-top: 12px; text-align: center; }
p { margin: 2px 0; }
</style>
</head>
<body>
{{- range .Copies}}
<div class="receipt{{if .Break}} page-break{{end}}">
  <div class="header">
    {{- if $.Company}}
    <h3>{{$.Company}}</h3>
    {{- end}}
    <h2>PEDIDO #{{$.Order.OrderNumber}}</h2>
    <p>{{.Label}}</p>
    <p>{{$.Order.CreatedAt.Format "02/01/2006 15:04:05"}}</p>
  </div>
  <div class="order-info">
    <p><strong>Cliente:</strong> {{$.Order.CustomerName}}</p>
    {{- if $.Order.CustomerPhone}}
    <p><strong>Telefone:</strong> {{$.Order.CustomerPhone}}</p>
    {{- end}}
    {{- if $.Order.CustomerAddress}}
    <p><strong>Endereço:</strong> {{$.Order.CustomerAddress}}</p>
    {{- end}}
    <p><strong>Pagamento:</strong> {{$.Payment}}</p>
  </div>
  <div class="items">
    <h3>ITENS:</h3>
    {{- range $.Order.Items}}
    <p>{{.Quantity}}x {{.Name}} - {{money (subtotal .)}}</p>
    {{- end}}
  </div>
  <div class="total">
    {{- if or (positive $.Order.DeliveryFee) (positive $.Order.Discount)}}
    <p>Subtotal: {{money $.Order.Subtotal}}</p>
    {{- end}}
    {{- if positive $.Order.Discount}}
    <p>Desconto: -{{money $.Order.Discount}}</p>
    {{- end}}
    {{- if positive $.Order.DeliveryFee}}
    <p>Taxa de entrega: {{money $.Order.DeliveryFee}}</p>
    {{- end}}
    <p>TOTAL: {{money $.Order.TotalAmount}}</p>
  </div>
  {{- if $.Notes}}
  <p><strong>Observações:</strong> {{$.Notes}}</p>
  {{- end}}
  <div class="footer">
    <p>Obrigado pela preferência!</p>
  </div>
</div>
{{- end}}
</body>
</html>
`))

type receiptCopy struct {
	Label string
	Break bool
}

type receiptData struct {
	Order   *Order
	Company string
	Payment string
	Notes   string
	WidthMm int
	FontPx  int
	Copies  []receiptCopy
}

// RenderReceipt prints copies of order on paper widthMm wide (58 or 80).
// The first copy goes to the customer, the others to the courier.
func RenderReceipt(order *Order, copies, widthMm int, company string) (string, error) {
	if copies < 1 {
		copies = 1
	}
	if copies > maxReceiptCopies {
		copies = maxReceiptCopies
	}

	font := 12
	if widthMm == 58 {
		font = 10
	}

	data := receiptData{
		Order:   order,
		Company: company,
		Payment: notify.PaymentLabel(string(order.PaymentMethod)),
		WidthMm: widthMm,
		FontPx:  font,
	}
	if order.Notes != nil {
		data.Notes = *order.Notes
	}

	for i := 0; i < copies; i++ {
		label := "VIA ENTREGADOR"
		if i == 0 {
			label = "VIA CLIENTE"
		}
		data.Copies = append(data.Copies, receiptCopy{Label: label, Break: i < copies-1})
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render receipt %s: %w", order.OrderNumber, err)
	}
	return buf.String(), nil
}
