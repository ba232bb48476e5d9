package mapping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ocr-invoice-api/internal/application/mapping"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/ocr"
)

func fieldsOf(kv ...any) *ocr.Fields {
	f := ocr.NewFields()
	for i := 0; i+1 < len(kv); i += 2 {
		key := kv[i].(string)
		switch v := kv[i+1].(type) {
		case ocr.Value:
			f.Set(key, v)
		case string:
			f.Set(key, ocr.Str(v))
		case int:
			f.Set(key, ocr.Int(int64(v)))
		case float64:
			f.Set(key, ocr.Float(v))
		default:
			panic("tipo no soportado en fieldsOf")
		}
	}
	return f
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "invno", mapping.NormalizeKey("Inv_No"))
	assert.Equal(t, "invno", mapping.NormalizeKey("inv no"))
	assert.Equal(t, "invno", mapping.NormalizeKey("INVNO"))
	assert.Equal(t, "invoice#", mapping.NormalizeKey("Invoice #"))
}

func TestResolve_VariantesDeAlias(t *testing.T) {
	for _, key := range []string{"Inv_No", "inv no", "INVNO", "invoice_number", "Invoice Number", "INVOICE#", "number"} {
		t.Run(key, func(t *testing.T) {
			v, ok := mapping.ResolveField(fieldsOf(key, "INV-001"), mapping.FieldInvoiceNumber)
			require.True(t, ok)
			assert.Equal(t, "INV-001", v.Text())
		})
	}
}

func TestResolve_TodosLosAliasDeLaTabla(t *testing.T) {
	for field, aliases := range mapping.FieldAliases {
		for _, alias := range aliases {
			v, ok := mapping.ResolveField(fieldsOf(alias, "x"), field)
			require.True(t, ok, "%s debe resolver con %q", field, alias)
			assert.Equal(t, "x", v.Text())
		}
	}
}

func TestResolve_PrioridadDeAlias(t *testing.T) {
	// "date" aparece antes en el mapa pero "invoice_date" tiene mayor prioridad.
	f := fieldsOf("date", "2024-02-01", "invoice_date", "2024-01-01")
	v, ok := mapping.ResolveField(f, mapping.FieldInvoiceDate)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", v.Text())
}

func TestResolve_EmpateGanaPrimeraClaveInsertada(t *testing.T) {
	f := fieldsOf("Vendor Name", "Primero", "vendor_name", "Segundo", "VENDORNAME", "Tercero")
	v, ok := mapping.ResolveField(f, mapping.FieldVendorName)
	require.True(t, ok)
	assert.Equal(t, "Primero", v.Text())
}

func TestResolve_SinCoincidencia(t *testing.T) {
	_, ok := mapping.ResolveField(fieldsOf("foo", "bar"), mapping.FieldCurrency)
	assert.False(t, ok)

	_, ok = mapping.Resolve(ocr.NewFields(), []string{"x"})
	assert.False(t, ok)

	_, ok = mapping.Resolve(nil, []string{"x"})
	assert.False(t, ok)
}
