// Package mapping reconcilia los campos libres de un registro OCR con el esquema
// canónico de factura: resolución de alias, normalización de valores y extracción
// de líneas de detalle.
package mapping

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ocr-invoice-api/internal/domain"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/ocr"
	"github.com/jhoicas/ocr-invoice-api/pkg/logger"
)

// Mapper transforma registros OCR en borradores de factura. Sin estado; seguro para
// uso concurrente.
type Mapper struct {
	log zerolog.Logger
}

// NewMapper construye el mapper. log se usa cuando el contexto no trae logger propio.
func NewMapper(log zerolog.Logger) *Mapper {
	return &Mapper{log: log}
}

// MapToInvoice resuelve todos los campos canónicos. Si falta o es inválido algún campo
// requerido devuelve *domain.MappingError con todos los campos fallidos.
func (m *Mapper) MapToInvoice(ctx context.Context, in ocr.Record) (*entity.InvoiceDraft, error) {
	log := logger.FromContext(ctx, m.log)
	fields := &in.ExtractedFields

	log.Info().
		Str("stage", "mapping").
		Int("field_count", fields.Len()).
		Bool("has_raw_text", in.RawText != nil).
		Msg("mapping-start")

	fieldErrors := make(map[string]string)

	invoiceNumber := resolveText(fields, FieldInvoiceNumber)
	if invoiceNumber == "" {
		fieldErrors[FieldInvoiceNumber] = "Invoice number is required but not found in OCR data"
	}

	rawDate, _ := ResolveField(fields, FieldInvoiceDate)
	invoiceDate, ok := ParseDate(rawDate)
	if !ok {
		fieldErrors[FieldInvoiceDate] = fmt.Sprintf("Invoice date is required but not found or invalid: %s", describeRaw(rawDate))
	}

	vendorName := resolveText(fields, FieldVendorName)
	if vendorName == "" {
		fieldErrors[FieldVendorName] = "Vendor name is required but not found in OCR data"
	}

	rawTotal, _ := ResolveField(fields, FieldTotalAmount)
	totalAmount, ok := ParseDecimal(rawTotal)
	if !ok || !totalAmount.GreaterThan(decimal.Zero) {
		fieldErrors[FieldTotalAmount] = fmt.Sprintf("Total amount is required and must be positive: %s", describeRaw(rawTotal))
	}

	if len(fieldErrors) > 0 {
		return nil, m.fail(log, fieldErrors)
	}

	draft := entity.InvoiceDraft{
		InvoiceNumber:   invoiceNumber,
		InvoiceDate:     invoiceDate,
		VendorName:      vendorName,
		VendorAddress:   optionalText(fields, FieldVendorAddress),
		VendorTaxID:     optionalText(fields, FieldVendorTaxID),
		CustomerName:    optionalText(fields, FieldCustomerName),
		CustomerAddress: optionalText(fields, FieldCustomerAddress),
		Subtotal:        optionalDecimal(fields, FieldSubtotal),
		TaxAmount:       optionalDecimal(fields, FieldTaxAmount),
		TotalAmount:     totalAmount,
		Currency:        entity.DefaultCurrency,
		RawOCRText:      in.RawText,
		Items:           ExtractLineItems(fields),
	}
	if raw, ok := ResolveField(fields, FieldDueDate); ok {
		if due, ok := ParseDate(raw); ok {
			draft.DueDate = &due
		}
	}
	if currency := resolveText(fields, FieldCurrency); currency != "" {
		draft.Currency = strings.ToUpper(strings.TrimSpace(currency))
	}
	if in.ConfidenceScore != nil {
		score := decimal.NewFromFloat(*in.ConfidenceScore)
		draft.ConfidenceScore = &score
	}

	result, err := entity.NewInvoiceDraft(draft)
	if err != nil {
		for _, fe := range entity.FieldErrors(err) {
			fieldErrors[fe.Field] = fe.Reason
		}
		if len(fieldErrors) == 0 {
			fieldErrors["invoice"] = err.Error()
		}
		return nil, m.fail(log, fieldErrors)
	}

	log.Info().
		Str("stage", "mapping").
		Str("invoice_number", result.InvoiceNumber).
		Int("item_count", len(result.Items)).
		Msg("mapping-success")
	return result, nil
}

func (m *Mapper) fail(log *zerolog.Logger, fieldErrors map[string]string) error {
	log.Error().
		Str("stage", "mapping").
		Interface("field_errors", fieldErrors).
		Msg("mapping-error")
	return domain.NewMappingError(fieldErrors)
}

// resolveText devuelve el texto del campo, o "" si no existe o es null.
func resolveText(fields *ocr.Fields, field string) string {
	v, ok := ResolveField(fields, field)
	if !ok {
		return ""
	}
	return v.Text()
}

func optionalText(fields *ocr.Fields, field string) *string {
	s := resolveText(fields, field)
	if s == "" {
		return nil
	}
	return &s
}

func optionalDecimal(fields *ocr.Fields, field string) *decimal.Decimal {
	v, ok := ResolveField(fields, field)
	if !ok {
		return nil
	}
	d, ok := ParseDecimal(v)
	if !ok {
		return nil
	}
	return &d
}

// describeRaw representa el valor intentado para los mensajes de error.
func describeRaw(v ocr.Value) string {
	if v.IsNull() {
		return "None"
	}
	return v.Text()
}
