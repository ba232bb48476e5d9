package entity

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una factura persistida.
const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusProcessed = "processed"
	InvoiceStatusFailed    = "failed"
)

// InvoiceStatuses lista ordenada de estados válidos.
var InvoiceStatuses = []string{InvoiceStatusPending, InvoiceStatusProcessed, InvoiceStatusFailed}

// IsValidInvoiceStatus indica si s es un estado conocido.
func IsValidInvoiceStatus(s string) bool {
	for _, st := range InvoiceStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Límites de columnas de almacenamiento.
const (
	MaxInvoiceNumberLen = 100
	MaxVendorNameLen    = 255
	MaxVendorTaxIDLen   = 50
	MaxCustomerNameLen  = 255
	DefaultCurrency     = "USD"
)

// InvoiceDraft factura canónica resultante del mapeo OCR, aún no persistida.
// Los opcionales ausentes son nil.
type InvoiceDraft struct {
	InvoiceNumber   string
	InvoiceDate     time.Time
	DueDate         *time.Time
	VendorName      string
	VendorAddress   *string
	VendorTaxID     *string
	CustomerName    *string
	CustomerAddress *string
	Subtotal        *decimal.Decimal
	TaxAmount       *decimal.Decimal
	TotalAmount     decimal.Decimal
	Currency        string
	RawOCRText      *string
	ConfidenceScore *decimal.Decimal
	Items           []LineItem
}

// FieldError error de construcción asociado a un campo del borrador.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewInvoiceDraft valida los invariantes de construcción y devuelve el borrador.
// Los errores se acumulan con errors.Join; cada uno es un *FieldError.
func NewInvoiceDraft(d InvoiceDraft) (*InvoiceDraft, error) {
	var errs []error
	if d.DueDate != nil && d.DueDate.Before(d.InvoiceDate) {
		errs = append(errs, &FieldError{Field: "due_date", Reason: "Due date cannot be before invoice date"})
	}
	if err := maxLen("invoice_number", d.InvoiceNumber, MaxInvoiceNumberLen); err != nil {
		errs = append(errs, err)
	}
	if err := maxLen("vendor_name", d.VendorName, MaxVendorNameLen); err != nil {
		errs = append(errs, err)
	}
	if d.VendorTaxID != nil {
		if err := maxLen("vendor_tax_id", *d.VendorTaxID, MaxVendorTaxIDLen); err != nil {
			errs = append(errs, err)
		}
	}
	if d.CustomerName != nil {
		if err := maxLen("customer_name", *d.CustomerName, MaxCustomerNameLen); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &d, nil
}

// FieldErrors extrae los *FieldError contenidos en err (simple o unido con errors.Join).
func FieldErrors(err error) []*FieldError {
	if err == nil {
		return nil
	}
	var out []*FieldError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, FieldErrors(e)...)
		}
		return out
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		out = append(out, fe)
	}
	return out
}

func maxLen(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return &FieldError{Field: field, Reason: fmt.Sprintf("must be at most %d characters", limit)}
	}
	return nil
}

// Invoice factura persistida: borrador + identidad, estado y marcas de tiempo.
type Invoice struct {
	ID string
	InvoiceDraft
	Status       string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ProcessedAt  *time.Time
}
