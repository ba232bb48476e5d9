// Package pdf implementa la representación gráfica (PDF) de una factura procesada.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Proveedor + Tax ID  │  N° Factura + Fechas         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PROVEEDOR: Dirección                                        │
//	│  CLIENTE: Nombre + Dirección                                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Importe                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Impuestos / TOTAL                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: Estado + confianza OCR + QR                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ocr-invoice-api/internal/application/invoicing"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
)

var _ invoicing.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

const dateLayout = "2006-01-02"

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa invoicing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, invoice *entity.Invoice) ([]byte, error) {
	if invoice == nil {
		return nil, fmt.Errorf("pdf: factura nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Invoice "+invoice.InvoiceNumber, true).
		WithAuthor(invoice.VendorName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partyRow("VENDOR", invoice.VendorName, invoice.VendorAddress))
	if invoice.CustomerName != nil || invoice.CustomerAddress != nil {
		m.AddRows(partyRow("BILL TO", deref(invoice.CustomerName, "-"), invoice.CustomerAddress))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(invoice.Items, invoice.Currency) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(invoice))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(invoice))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// QRPayload contenido del QR: número|total|moneda|id.
func QRPayload(invoice *entity.Invoice) string {
	return strings.Join([]string{
		invoice.InvoiceNumber,
		invoice.TotalAmount.StringFixed(2),
		invoice.Currency,
		invoice.ID,
	}, "|")
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: proveedor + tax id (izq) y N° factura + fechas (der).
func headerRow(invoice *entity.Invoice) core.Row {
	taxID := "Tax ID: " + deref(invoice.VendorTaxID, "-")
	dates := "Date: " + invoice.InvoiceDate.Format(dateLayout)
	if invoice.DueDate != nil {
		dates += "   Due: " + invoice.DueDate.Format(dateLayout)
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(invoice.VendorName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(taxID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New(dates, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// partyRow: bloque de proveedor o cliente.
func partyRow(title, name string, address *string) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(deref(address, "-"), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qty", 1, align.Center),
		h("Description", 6, align.Left),
		h("Unit price", 2, align.Right),
		h("Amount", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableItemRows: una fila por línea; sin líneas, una fila informativa.
func tableItemRows(items []entity.LineItem, currency string) []core.Row {
	if len(items) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(text.New(
			"No line items extracted",
			props.Text{Size: 8, Align: align.Center, Top: 1, Color: colorGray},
		)))}
	}
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				it.Quantity.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(6).Add(text.New(
				it.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				formatMoney(it.UnitPrice, currency),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				formatMoney(it.Amount, currency),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(invoice *entity.Invoice) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top,
		})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	optional := func(d *decimal.Decimal) string {
		if d == nil {
			return "-"
		}
		return formatMoney(*d, invoice.Currency)
	}

	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1),
			label("Tax:", 7),
			text.New("TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Right: 2, Top: 14,
			}),
		),
		col.New(3).Add(
			value(optional(invoice.Subtotal), 1),
			value(optional(invoice.TaxAmount), 7),
			text.New(formatMoney(invoice.TotalAmount, invoice.Currency), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Right: 1, Top: 14,
			}),
		),
	)
}

// footerRow: estado, confianza OCR y QR de verificación.
func footerRow(invoice *entity.Invoice) core.Row {
	status := "Status: " + invoice.Status
	if invoice.ProcessedAt != nil {
		status += "   Processed: " + invoice.ProcessedAt.UTC().Format("2006-01-02 15:04 MST")
	}
	confidence := "OCR confidence: -"
	if invoice.ConfidenceScore != nil {
		confidence = "OCR confidence: " + invoice.ConfidenceScore.StringFixed(1) + "%"
	}

	return row.New(40).Add(
		col.New(4).Add(code.NewQr(QRPayload(invoice), props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(8).Add(
			text.New(status, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New(confidence, props.Text{Size: 8, Top: 10, Left: 3, Color: colorGray}),
			text.New("Invoice ID: "+invoice.ID, props.Text{Size: 7, Top: 16, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func deref(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}

// formatMoney importe con dos decimales, separador de miles y código de moneda.
// Ej: 1234567.5 USD → "1,234,567.50 USD"
func formatMoney(d decimal.Decimal, currency string) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "." + frac + " " + currency
}
