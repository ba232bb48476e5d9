// Package xlsx exporta listados de facturas a hojas de cálculo (excelize).
package xlsx

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/ocr-invoice-api/internal/application/invoicing"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
	"github.com/jhoicas/ocr-invoice-api/pkg/logger"
)

var _ invoicing.InvoiceSheetExporter = (*Exporter)(nil)

// SheetName nombre de la hoja generada.
const SheetName = "Invoices"

// Headers columnas de la hoja, en orden.
var Headers = []string{
	"Invoice Number",
	"Invoice Date",
	"Due Date",
	"Vendor",
	"Vendor Tax ID",
	"Customer",
	"Subtotal",
	"Tax",
	"Total",
	"Currency",
	"Status",
	"Items",
	"Confidence",
	"Invoice ID",
}

// Exporter implementa invoicing.InvoiceSheetExporter.
type Exporter struct {
	log zerolog.Logger
}

// NewExporter construye el exportador.
func NewExporter(log zerolog.Logger) *Exporter {
	return &Exporter{log: log}
}

// ExportInvoices devuelve un libro XLSX con una fila por factura.
func (e *Exporter) ExportInvoices(ctx context.Context, invoices []*entity.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo cabecera: %w", err)
	}
	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo importes: %w", err)
	}

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}
	_ = f.SetCellStyle(SheetName, "A1", "N1", headerStyle)

	row := 2
	for _, inv := range invoices {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}
		write(1, inv.InvoiceNumber)
		write(2, inv.InvoiceDate.Format("2006-01-02"))
		if inv.DueDate != nil {
			write(3, inv.DueDate.Format("2006-01-02"))
		}
		write(4, inv.VendorName)
		write(5, str(inv.VendorTaxID))
		write(6, str(inv.CustomerName))
		if inv.Subtotal != nil {
			write(7, inv.Subtotal.InexactFloat64())
		}
		if inv.TaxAmount != nil {
			write(8, inv.TaxAmount.InexactFloat64())
		}
		write(9, inv.TotalAmount.InexactFloat64())
		write(10, inv.Currency)
		write(11, inv.Status)
		write(12, len(inv.Items))
		write(13, optional(inv.ConfidenceScore))
		write(14, inv.ID)
		row++
	}
	if row > 2 {
		end, _ := excelize.CoordinatesToCellName(9, row-1)
		_ = f.SetCellStyle(SheetName, "G2", end, moneyStyle)
	}

	_ = f.SetColWidth(SheetName, "A", "A", 20) // número
	_ = f.SetColWidth(SheetName, "B", "C", 12) // fechas
	_ = f.SetColWidth(SheetName, "D", "F", 28) // partes
	_ = f.SetColWidth(SheetName, "G", "I", 14) // importes
	_ = f.SetColWidth(SheetName, "J", "M", 11)
	_ = f.SetColWidth(SheetName, "N", "N", 38) // id

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.FromContext(ctx, e.log).Info().
		Int("rows", len(invoices)).
		Msg("export.xlsx.ok")
	return buf.Bytes(), nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(d *decimal.Decimal) any {
	if d == nil {
		return ""
	}
	return d.InexactFloat64()
}
