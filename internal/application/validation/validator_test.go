package validation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ocr-invoice-api/internal/application/validation"
	"github.com/jhoicas/ocr-invoice-api/internal/domain"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newValidator() *validation.Validator {
	return validation.NewValidator(zerolog.Nop()).WithClock(func() time.Time { return fixedNow })
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// validDraft borrador que no dispara ninguna regla.
func validDraft() *entity.InvoiceDraft {
	due := day(2025, 6, 30)
	return &entity.InvoiceDraft{
		InvoiceNumber: "INV-001",
		InvoiceDate:   day(2025, 5, 30),
		DueDate:       &due,
		VendorName:    "ACME Corp",
		Subtotal:      dec("100.00"),
		TaxAmount:     dec("10.00"),
		TotalAmount:   decimal.RequireFromString("110.00"),
		Currency:      "USD",
	}
}

func validate(t *testing.T, d *entity.InvoiceDraft) (*validation.Result, *domain.ValidationError) {
	t.Helper()
	res, err := newValidator().Validate(context.Background(), d)
	if err == nil {
		return res, nil
	}
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr), "error inesperado: %v", err)
	return nil, vErr
}

// ──────────────────────────────────────────────────────────────────────────────
// Reglas duras
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_BorradorValidoSinAdvertencias(t *testing.T) {
	res, vErr := validate(t, validDraft())
	require.Nil(t, vErr)
	assert.Empty(t, res.Warnings)
}

func TestValidate_NumeroDeFactura(t *testing.T) {
	for _, n := range []string{"", "  ", "AB", "---", " A1 "} {
		d := validDraft()
		d.InvoiceNumber = n
		_, vErr := validate(t, d)
		require.NotNil(t, vErr, "número %q debe fallar", n)
		assert.Contains(t, vErr.Errors, "Invoice number contains invalid characters or format")
	}
	for _, n := range []string{"A12", "#-9", "Nº1"} {
		d := validDraft()
		d.InvoiceNumber = n
		_, vErr := validate(t, d)
		assert.Nil(t, vErr, "número %q debe pasar", n)
	}
}

func TestValidate_VencimientoAnteriorAFecha(t *testing.T) {
	d := validDraft()
	due := d.InvoiceDate.AddDate(0, 0, -1)
	d.DueDate = &due
	_, vErr := validate(t, d)
	require.NotNil(t, vErr)
	assert.Contains(t, vErr.Errors, "Due date cannot be before invoice date")
}

func TestValidate_RangoDeTotal(t *testing.T) {
	cases := map[string]string{
		"0.00":          "Total amount must be at least 0.01",
		"0.009":         "Total amount must be at least 0.01",
		"-10":           "Total amount must be at least 0.01",
		"1000000000.00": "Total amount cannot exceed 999999999.99",
	}
	for total, msg := range cases {
		d := validDraft()
		d.Subtotal, d.TaxAmount = nil, nil
		d.TotalAmount = decimal.RequireFromString(total)
		_, vErr := validate(t, d)
		require.NotNil(t, vErr, total)
		assert.Contains(t, vErr.Errors, msg)
	}

	for _, total := range []string{"0.01", "999999999.99"} {
		d := validDraft()
		d.Subtotal, d.TaxAmount = nil, nil
		d.TotalAmount = decimal.RequireFromString(total)
		_, vErr := validate(t, d)
		assert.Nil(t, vErr, total)
	}
}

func TestValidate_SubtotalEImpuestoNegativos(t *testing.T) {
	d := validDraft()
	d.Subtotal = dec("-1")
	d.TaxAmount = dec("-2")
	_, vErr := validate(t, d)
	require.NotNil(t, vErr)
	assert.Contains(t, vErr.Errors, "Subtotal cannot be negative")
	assert.Contains(t, vErr.Errors, "Tax amount cannot be negative")
}

func TestValidate_MonedaNoSoportada(t *testing.T) {
	d := validDraft()
	d.Currency = "XYZ"
	_, vErr := validate(t, d)
	require.NotNil(t, vErr)
	require.Len(t, vErr.Errors, 1)
	assert.Equal(t, "Currency 'XYZ' is not supported. Valid currencies: USD, EUR, GBP, CAD, AUD, JPY, CNY", vErr.Errors[0])
	assert.Contains(t, vErr.Error(), "XYZ")
}

func TestValidate_MonedaSinDistinguirMayusculas(t *testing.T) {
	d := validDraft()
	d.Currency = "eur"
	_, vErr := validate(t, d)
	assert.Nil(t, vErr)
}

func TestValidate_NombreDeProveedor(t *testing.T) {
	for _, n := range []string{"", "A", " ** ", "--"} {
		d := validDraft()
		d.VendorName = n
		_, vErr := validate(t, d)
		require.NotNil(t, vErr, "proveedor %q debe fallar", n)
		assert.Contains(t, vErr.Errors, "Vendor name is too short or contains only special characters")
	}
	d := validDraft()
	d.VendorName = "3M"
	_, vErr := validate(t, d)
	assert.Nil(t, vErr)
}

func TestValidate_AcumulaTodosLosErroresYAdvertencias(t *testing.T) {
	d := validDraft()
	d.InvoiceNumber = "X"
	d.VendorName = "!"
	d.Currency = "ABC"
	d.ConfidenceScore = dec("10")
	_, vErr := validate(t, d)
	require.NotNil(t, vErr)
	assert.Len(t, vErr.Errors, 3)
	assert.Equal(t, []string{"Low OCR confidence score: 10%"}, vErr.Warnings)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reglas blandas
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_TotalNoCuadra(t *testing.T) {
	d := validDraft()
	d.Subtotal = dec("100.00")
	d.TaxAmount = dec("10.00")
	d.TotalAmount = decimal.RequireFromString("120.00")

	res, vErr := validate(t, d)
	require.Nil(t, vErr)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "Total amount (120.00) doesn't match subtotal + tax (110.00). Difference: 10.00", res.Warnings[0])
	assert.Contains(t, res.Warnings[0], "110.00")
}

func TestValidate_ToleranciaDeDosCentavos(t *testing.T) {
	d := validDraft()
	d.TotalAmount = decimal.RequireFromString("110.02")
	res, vErr := validate(t, d)
	require.Nil(t, vErr)
	assert.Empty(t, res.Warnings)
}

func TestValidate_ImpuestoAlto(t *testing.T) {
	d := validDraft()
	d.Subtotal = dec("100")
	d.TaxAmount = dec("60")
	d.TotalAmount = decimal.RequireFromString("160")
	res, vErr := validate(t, d)
	require.Nil(t, vErr)
	assert.Equal(t, []string{"Tax amount seems unusually high (>50% of subtotal)"}, res.Warnings)
}

func TestValidate_ImportesEnCeroNoDisparanReglasDeCuadre(t *testing.T) {
	d := validDraft()
	d.Subtotal = dec("0")
	d.TaxAmount = dec("5")
	d.TotalAmount = decimal.RequireFromString("5")
	res, vErr := validate(t, d)
	require.Nil(t, vErr)
	assert.Empty(t, res.Warnings, "subtotal cero no genera impuesto alto")

	d = validDraft()
	d.TaxAmount = dec("0")
	d.TotalAmount = decimal.RequireFromString("150")
	res, vErr = validate(t, d)
	require.Nil(t, vErr)
	assert.Empty(t, res.Warnings, "impuesto cero omite el cuadre del total")
}

func TestValidate_AdvertenciasDeFechas(t *testing.T) {
	old := validDraft()
	old.InvoiceDate = fixedNow.AddDate(0, 0, -1826)
	old.DueDate = nil
	res, vErr := validate(t, old)
	require.Nil(t, vErr)
	assert.Equal(t, []string{"Invoice date is more than 1825 days old"}, res.Warnings)

	future := validDraft()
	future.InvoiceDate = fixedNow.AddDate(0, 0, 8)
	future.DueDate = nil
	res, vErr = validate(t, future)
	require.Nil(t, vErr)
	assert.Equal(t, []string{"Invoice date is in the future"}, res.Warnings)

	nearFuture := validDraft()
	nearFuture.InvoiceDate = fixedNow.AddDate(0, 0, 6)
	nearFuture.DueDate = nil
	res, vErr = validate(t, nearFuture)
	require.Nil(t, vErr)
	assert.Empty(t, res.Warnings)

	longTerms := validDraft()
	due := longTerms.InvoiceDate.AddDate(0, 0, 366)
	longTerms.DueDate = &due
	res, vErr = validate(t, longTerms)
	require.Nil(t, vErr)
	assert.Equal(t, []string{"Due date is more than 1 year after invoice date"}, res.Warnings)
}

func TestValidate_ConfianzaBaja(t *testing.T) {
	d := validDraft()
	d.ConfidenceScore = dec("65.5")
	res, vErr := validate(t, d)
	require.Nil(t, vErr)
	assert.Equal(t, []string{"Low OCR confidence score: 65.5%"}, res.Warnings)

	d.ConfidenceScore = dec("70")
	res, vErr = validate(t, d)
	require.Nil(t, vErr)
	assert.Empty(t, res.Warnings)
}

// ──────────────────────────────────────────────────────────────────────────────
// Inmutabilidad
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_NoModificaElBorrador(t *testing.T) {
	d := validDraft()
	d.Currency = "usd"
	d.InvoiceNumber = "  INV-9  "
	d.Items = []entity.LineItem{{Description: "x", Quantity: decimal.NewFromInt(1)}}
	snapshot := *d
	items := append([]entity.LineItem(nil), d.Items...)

	_, vErr := validate(t, d)
	require.Nil(t, vErr)
	assert.Equal(t, snapshot, *d)
	assert.Equal(t, items, d.Items)
}
