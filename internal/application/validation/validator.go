// Package validation aplica las reglas de negocio a un borrador de factura antes de
// persistirlo. Las reglas duras bloquean; las blandas solo generan advertencias.
package validation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ocr-invoice-api/internal/domain"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
	"github.com/jhoicas/ocr-invoice-api/pkg/logger"
)

// Límites de las reglas de negocio.
var (
	MinInvoiceAmount = decimal.RequireFromString("0.01")
	MaxInvoiceAmount = decimal.RequireFromString("999999999.99")

	// Tolerancia entre total y subtotal + impuestos.
	amountTolerance = decimal.RequireFromString("0.02")
	// Impuesto "alto": más de la mitad del subtotal.
	highTaxRatio = decimal.RequireFromString("0.5")
	// Confianza OCR por debajo de la cual se advierte.
	lowConfidence = decimal.NewFromInt(70)
)

const (
	MaxInvoiceAgeDays   = 1825
	maxFutureDays       = 7
	maxPaymentTermsDays = 365
)

// SupportedCurrencies monedas aceptadas, en el orden en que se reportan.
var SupportedCurrencies = []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CNY"}

// Result resultado de una validación superada.
type Result struct {
	Warnings []string
}

// Validator valida borradores de factura. Sin estado mutable; seguro para uso concurrente.
type Validator struct {
	log zerolog.Logger
	now func() time.Time
}

// NewValidator construye el validador con el reloj del sistema.
func NewValidator(log zerolog.Logger) *Validator {
	return &Validator{log: log, now: time.Now}
}

// WithClock devuelve una copia del validador que usa now como reloj.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	cp := *v
	cp.now = now
	return &cp
}

// Validate evalúa todas las reglas. Si alguna regla dura falla devuelve
// *domain.ValidationError con errores y advertencias; si no, las advertencias.
// El borrador no se modifica.
func (v *Validator) Validate(ctx context.Context, draft *entity.InvoiceDraft) (*Result, error) {
	log := logger.FromContext(ctx, v.log)
	log.Info().
		Str("stage", "validation").
		Str("invoice_number", draft.InvoiceNumber).
		Msg("validation-start")

	var errs, warnings []string
	now := v.now().UTC()

	// Número de factura
	if !hasMinLenAndAlnum(draft.InvoiceNumber, 3) {
		errs = append(errs, "Invoice number contains invalid characters or format")
	}

	// Fechas
	if draft.InvoiceDate.Before(now.AddDate(0, 0, -MaxInvoiceAgeDays)) {
		warnings = append(warnings, fmt.Sprintf("Invoice date is more than %d days old", MaxInvoiceAgeDays))
	}
	if draft.InvoiceDate.After(now.AddDate(0, 0, maxFutureDays)) {
		warnings = append(warnings, "Invoice date is in the future")
	}
	if draft.DueDate != nil {
		if draft.DueDate.Before(draft.InvoiceDate) {
			errs = append(errs, "Due date cannot be before invoice date")
		}
		if draft.DueDate.Sub(draft.InvoiceDate) > maxPaymentTermsDays*24*time.Hour {
			warnings = append(warnings, "Due date is more than 1 year after invoice date")
		}
	}

	// Importes
	if draft.TotalAmount.LessThan(MinInvoiceAmount) {
		errs = append(errs, fmt.Sprintf("Total amount must be at least %s", MinInvoiceAmount.StringFixed(2)))
	}
	if draft.TotalAmount.GreaterThan(MaxInvoiceAmount) {
		errs = append(errs, fmt.Sprintf("Total amount cannot exceed %s", MaxInvoiceAmount.StringFixed(2)))
	}
	// Las reglas de cuadre solo aplican con subtotal e impuesto informados y distintos de cero.
	bothAmounts := draft.Subtotal != nil && !draft.Subtotal.IsZero() &&
		draft.TaxAmount != nil && !draft.TaxAmount.IsZero()
	if bothAmounts {
		calculated := draft.Subtotal.Add(*draft.TaxAmount)
		diff := draft.TotalAmount.Sub(calculated).Abs()
		if diff.GreaterThan(amountTolerance) {
			warnings = append(warnings, fmt.Sprintf(
				"Total amount (%s) doesn't match subtotal + tax (%s). Difference: %s",
				draft.TotalAmount.StringFixed(2), calculated.StringFixed(2), diff.StringFixed(2),
			))
		}
	}
	if draft.Subtotal != nil && draft.Subtotal.IsNegative() {
		errs = append(errs, "Subtotal cannot be negative")
	}
	if draft.TaxAmount != nil && draft.TaxAmount.IsNegative() {
		errs = append(errs, "Tax amount cannot be negative")
	}
	if bothAmounts && draft.TaxAmount.GreaterThan(draft.Subtotal.Mul(highTaxRatio)) {
		warnings = append(warnings, "Tax amount seems unusually high (>50% of subtotal)")
	}

	// Moneda
	if !isSupportedCurrency(draft.Currency) {
		errs = append(errs, fmt.Sprintf("Currency '%s' is not supported. Valid currencies: %s",
			draft.Currency, strings.Join(SupportedCurrencies, ", ")))
	}

	// Proveedor
	if !hasMinLenAndAlnum(draft.VendorName, 2) {
		errs = append(errs, "Vendor name is too short or contains only special characters")
	}

	// Confianza OCR
	if draft.ConfidenceScore != nil && draft.ConfidenceScore.LessThan(lowConfidence) {
		warnings = append(warnings, fmt.Sprintf("Low OCR confidence score: %s%%", draft.ConfidenceScore.String()))
	}

	if len(errs) > 0 {
		log.Error().
			Str("stage", "validation").
			Str("invoice_number", draft.InvoiceNumber).
			Strs("errors", errs).
			Strs("warnings", warnings).
			Msg("validation-error")
		return nil, &domain.ValidationError{Errors: errs, Warnings: warnings}
	}

	log.Info().
		Str("stage", "validation").
		Str("invoice_number", draft.InvoiceNumber).
		Int("warning_count", len(warnings)).
		Strs("warnings", warnings).
		Msg("validation-success")
	return &Result{Warnings: warnings}, nil
}

// hasMinLenAndAlnum: longitud recortada >= min y al menos un carácter alfanumérico.
func hasMinLenAndAlnum(s string, min int) bool {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < min {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isSupportedCurrency(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}
