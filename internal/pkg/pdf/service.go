// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/sale"
)

// Service generates printable PDF receipts for completed sales
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// receiptData is the template model for a receipt
type receiptData struct {
	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
	ReceiptNumber  string
	SaleDate       string
	PaymentMethod  string
	CustomerName   string
	Items          []receiptItem
	Subtotal       string
	Discount       string
	Tax            string
	Total          string
	Voided         bool
}

type receiptItem struct {
	Name     string
	Quantity int
	Price    string
	Total    string
}

// GenerateReceipt renders a sale as a PDF receipt
func (s *Service) GenerateReceipt(sl *sale.Sale) ([]byte, error) {
	html, err := s.renderHTML(sl)
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt html: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA5)
	pdfg.MarginTop.Set(10)
	pdfg.MarginBottom.Set(10)
	pdfg.MarginLeft.Set(10)
	pdfg.MarginRight.Set(10)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.DisableSmartShrinking.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to generate receipt pdf: %w", err)
	}

	return pdfg.Bytes(), nil
}

func (s *Service) renderHTML(sl *sale.Sale) ([]byte, error) {
	data := receiptData{
		CompanyName:    s.config.Company.Name,
		CompanyAddress: s.config.Company.Address,
		CompanyPhone:   s.config.Company.Phone,
		ReceiptNumber:  sl.ReceiptNumber,
		SaleDate:       sl.SaleDate.Format("2006-01-02 15:04"),
		PaymentMethod:  string(sl.PaymentMethod),
		CustomerName:   sl.CustomerName,
		Subtotal:       formatCents(sl.Subtotal),
		Discount:       formatCents(sl.Discount),
		Tax:            formatCents(sl.Tax),
		Total:          formatCents(sl.Total),
		Voided:         sl.Status == sale.SaleStatusVoided,
	}
	for _, item := range sl.Items {
		data.Items = append(data.Items, receiptItem{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Price:    formatCents(item.Price),
			Total:    formatCents(item.Total),
		})
	}

	tmpl, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatCents renders an amount in cents as a decimal string
func formatCents(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: monospace; font-size: 12px; margin: 0; }
  .header { text-align: center; margin-bottom: 12px; }
  .header h1 { font-size: 16px; margin: 0 0 4px 0; }
  .meta { margin-bottom: 12px; }
  table { width: 100%; border-collapse: collapse; }
  th, td { text-align: left; padding: 2px 4px; }
  th { border-bottom: 1px solid #000; }
  td.num, th.num { text-align: right; }
  .totals { margin-top: 8px; border-top: 1px solid #000; }
  .totals td { padding-top: 2px; }
  .grand { font-weight: bold; border-top: 1px solid #000; }
  .voided { text-align: center; font-size: 20px; font-weight: bold; margin: 10px 0; }
  .footer { text-align: center; margin-top: 16px; }
</style>
</head>
<body>
  <div class="header">
    <h1>{{.CompanyName}}</h1>
    <div>{{.CompanyAddress}}</div>
    <div>{{.CompanyPhone}}</div>
  </div>
  {{if .Voided}}<div class="voided">*** VOIDED ***</div>{{end}}
  <div class="meta">
    <div>Receipt: {{.ReceiptNumber}}</div>
    <div>Date: {{.SaleDate}}</div>
    <div>Payment: {{.PaymentMethod}}</div>
    {{if .CustomerName}}<div>Customer: {{.CustomerName}}</div>{{end}}
  </div>
  <table>
    <tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
    {{range .Items}}
    <tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.Price}}</td><td class="num">{{.Total}}</td></tr>
    {{end}}
  </table>
  <table class="totals">
    <tr><td>Subtotal</td><td class="num">{{.Subtotal}}</td></tr>
    <tr><td>Discount</td><td class="num">-{{.Discount}}</td></tr>
    <tr><td>Tax</td><td class="num">{{.Tax}}</td></tr>
    <tr class="grand"><td>Total</td><td class="num">{{.Total}}</td></tr>
  </table>
  <div class="footer">Thank you for your purchase!</div>
</body>
</html>`
