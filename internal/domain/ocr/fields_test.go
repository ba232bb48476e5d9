package ocr_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ocr-invoice-api/internal/domain/ocr"
)

func TestRecord_DecodificaConservandoOrden(t *testing.T) {
	payload := `{
		"raw_text": "INVOICE 001",
		"confidence_score": 87.5,
		"extracted_fields": {
			"Total": "1,234.56",
			"invoice_no": 1001,
			"vendor": {"name": "ACME", "city": "Bogotá"},
			"items": [{"desc": "Widget", "qty": 2}, "ruido", null],
			"paid": false,
			"note": null
		}
	}`

	var rec ocr.Record
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))

	require.NotNil(t, rec.RawText)
	assert.Equal(t, "INVOICE 001", *rec.RawText)
	require.NotNil(t, rec.ConfidenceScore)
	assert.Equal(t, 87.5, *rec.ConfidenceScore)

	keys := make([]string, 0, rec.ExtractedFields.Len())
	for _, e := range rec.ExtractedFields.Entries() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"Total", "invoice_no", "vendor", "items", "paid", "note"}, keys)

	num, _ := rec.ExtractedFields.Get("invoice_no")
	d, ok := num.AsNumber()
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromInt(1001)))

	vendor, _ := rec.ExtractedFields.Get("vendor")
	obj, ok := vendor.AsObject()
	require.True(t, ok)
	name, _ := obj.Get("name")
	assert.Equal(t, "ACME", name.Text())

	items, _ := rec.ExtractedFields.Get("items")
	list, ok := items.AsList()
	require.True(t, ok)
	require.Len(t, list, 3)
	assert.Equal(t, ocr.KindObject, list[0].Kind())
	assert.Equal(t, ocr.KindString, list[1].Kind())
	assert.True(t, list[2].IsNull())

	note, ok := rec.ExtractedFields.Get("note")
	assert.True(t, ok)
	assert.True(t, note.IsNull())
}

func TestFields_NumerosConservanPrecision(t *testing.T) {
	var f ocr.Fields
	require.NoError(t, json.Unmarshal([]byte(`{"amount": 0.1, "big": 12345678901234567890.12}`), &f))

	v, _ := f.Get("amount")
	assert.Equal(t, "0.1", v.Text())
	v, _ = f.Get("big")
	assert.Equal(t, "12345678901234567890.12", v.Text())
}

func TestFields_ClaveRepetidaConservaPosicionYUltimoValor(t *testing.T) {
	var f ocr.Fields
	require.NoError(t, json.Unmarshal([]byte(`{"a": 1, "b": 2, "a": 3}`), &f))

	require.Equal(t, 2, f.Len())
	assert.Equal(t, "a", f.Entries()[0].Key)
	v, _ := f.Get("a")
	assert.Equal(t, "3", v.Text())
}

func TestFields_RechazaNoObjeto(t *testing.T) {
	var f ocr.Fields
	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &f))
}

func TestFields_MarshalJSONRespetaOrden(t *testing.T) {
	f := ocr.NewFields(
		ocr.Field{Key: "z", Value: ocr.Str("último")},
		ocr.Field{Key: "a", Value: ocr.List(ocr.Int(1), ocr.Bool(true), ocr.Null())},
	)
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"último","a":[1,true,null]}`, string(b))
}

func TestValue_IsEmpty(t *testing.T) {
	cases := []struct {
		name  string
		value ocr.Value
		empty bool
	}{
		{"null", ocr.Null(), true},
		{"texto vacío", ocr.Str(""), true},
		{"texto", ocr.Str("x"), false},
		{"cero", ocr.Int(0), true},
		{"número", ocr.Float(1.5), false},
		{"lista vacía", ocr.List(), true},
		{"lista", ocr.List(ocr.Int(1)), false},
		{"objeto vacío", ocr.Object(ocr.NewFields()), true},
		{"false", ocr.Bool(false), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.empty, tc.value.IsEmpty())
		})
	}
}
