package mapping

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/ocr-invoice-api/internal/domain/ocr"
)

// Campos canónicos de la factura.
const (
	FieldInvoiceNumber   = "invoice_number"
	FieldInvoiceDate     = "invoice_date"
	FieldDueDate         = "due_date"
	FieldVendorName      = "vendor_name"
	FieldVendorAddress   = "vendor_address"
	FieldVendorTaxID     = "vendor_tax_id"
	FieldCustomerName    = "customer_name"
	FieldCustomerAddress = "customer_address"
	FieldSubtotal        = "subtotal"
	FieldTaxAmount       = "tax_amount"
	FieldTotalAmount     = "total_amount"
	FieldCurrency        = "currency"
)

// FieldAliases grafías OCR aceptadas por campo canónico, en orden de prioridad.
// Solo lectura.
var FieldAliases = map[string][]string{
	FieldInvoiceNumber:   {"invoice_number", "invoice_no", "inv_no", "number", "invoice#"},
	FieldInvoiceDate:     {"invoice_date", "date", "inv_date", "bill_date", "issue_date"},
	FieldDueDate:         {"due_date", "payment_due", "due", "payment_date"},
	FieldVendorName:      {"vendor_name", "vendor", "supplier", "from", "seller", "company"},
	FieldVendorAddress:   {"vendor_address", "vendor_addr", "from_address", "supplier_address"},
	FieldVendorTaxID:     {"vendor_tax_id", "tax_id", "vat_number", "ein", "tin"},
	FieldCustomerName:    {"customer_name", "customer", "bill_to", "client", "buyer"},
	FieldCustomerAddress: {"customer_address", "customer_addr", "billing_address", "bill_to_address"},
	FieldSubtotal:        {"subtotal", "sub_total", "amount", "net_amount"},
	FieldTaxAmount:       {"tax_amount", "tax", "vat", "sales_tax"},
	FieldTotalAmount:     {"total_amount", "total", "grand_total", "amount_due", "balance_due"},
	FieldCurrency:        {"currency", "curr", "currency_code"},
}

var keyStripper = strings.NewReplacer("_", "", " ", "")

// NormalizeKey pasa a minúsculas y elimina guiones bajos y espacios.
func NormalizeKey(s string) string {
	return keyStripper.Replace(cases.Lower(language.Und).String(s))
}

// Resolve devuelve el valor de la primera clave de fields que coincide con algún alias,
// comparando ambos normalizados. Los alias se prueban en orden; para un mismo alias gana
// la primera clave en orden de inserción.
func Resolve(fields *ocr.Fields, aliases []string) (ocr.Value, bool) {
	entries := fields.Entries()
	if len(entries) == 0 {
		return ocr.Value{}, false
	}
	normalized := make([]string, len(entries))
	for i, e := range entries {
		normalized[i] = NormalizeKey(e.Key)
	}
	for _, alias := range aliases {
		target := NormalizeKey(alias)
		for i, key := range normalized {
			if key == target {
				return entries[i].Value, true
			}
		}
	}
	return ocr.Value{}, false
}

// ResolveField resuelve un campo canónico con su tabla de alias.
func ResolveField(fields *ocr.Fields, field string) (ocr.Value, bool) {
	return Resolve(fields, FieldAliases[field])
}
