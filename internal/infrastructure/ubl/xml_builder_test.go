package ubl_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
	"github.com/jhoicas/ocr-invoice-api/internal/infrastructure/ubl"
)

func sampleInvoice() *entity.Invoice {
	sub := decimal.RequireFromString("1000")
	tax := decimal.RequireFromString("100")
	due := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	addr := "123 Main St"
	customer := "Globex"
	return &entity.Invoice{
		ID: "6f1c2a9e-1111-4c1a-9d3e-000000000001",
		InvoiceDraft: entity.InvoiceDraft{
			InvoiceNumber: "INV-2025-001",
			InvoiceDate:   time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			DueDate:       &due,
			VendorName:    "ACME & Sons",
			VendorAddress: &addr,
			CustomerName:  &customer,
			Subtotal:      &sub,
			TaxAmount:     &tax,
			TotalAmount:   decimal.RequireFromString("1100"),
			Currency:      "EUR",
			Items: []entity.LineItem{
				{Description: "Widget", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(500), Amount: decimal.NewFromInt(1000)},
			},
		},
		Status: entity.InvoiceStatusProcessed,
	}
}

func TestBuild_Estructura(t *testing.T) {
	out, err := ubl.NewXMLBuilderService().Build(sampleInvoice())
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "Invoice", root.Tag)

	assert.Equal(t, "INV-2025-001", root.FindElement("./cbc:ID").Text())
	assert.Equal(t, "2025-01-15", root.FindElement("./cbc:IssueDate").Text())
	assert.Equal(t, "2025-02-15", root.FindElement("./cbc:DueDate").Text())
	assert.Equal(t, "EUR", root.FindElement("./cbc:DocumentCurrencyCode").Text())
	assert.Equal(t, "ACME & Sons", root.FindElement("./cac:AccountingSupplierParty/cac:Party/cac:PartyName/cbc:Name").Text())
	assert.Equal(t, "Globex", root.FindElement("./cac:AccountingCustomerParty/cac:Party/cac:PartyName/cbc:Name").Text())

	payable := root.FindElement("./cac:LegalMonetaryTotal/cbc:PayableAmount")
	require.NotNil(t, payable)
	assert.Equal(t, "1100.00", payable.Text())
	assert.Equal(t, "EUR", payable.SelectAttrValue("currencyID", ""))

	lines := root.FindElements("./cac:InvoiceLine")
	require.Len(t, lines, 1)
	assert.Equal(t, "Widget", lines[0].FindElement("./cac:Item/cbc:Description").Text())
}

func TestBuild_OmiteOpcionales(t *testing.T) {
	inv := sampleInvoice()
	inv.DueDate, inv.CustomerName, inv.TaxAmount, inv.Items = nil, nil, nil, nil

	out, err := ubl.NewXMLBuilderService().Build(inv)
	require.NoError(t, err)
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.Root()
	assert.Nil(t, root.FindElement("./cbc:DueDate"))
	assert.Nil(t, root.FindElement("./cac:AccountingCustomerParty"))
	assert.Nil(t, root.FindElement("./cac:TaxTotal"))
	assert.Empty(t, root.FindElements("./cac:InvoiceLine"))
}

func TestDigest_Determinista(t *testing.T) {
	b := ubl.NewXMLBuilderService()
	first, err := b.Build(sampleInvoice())
	require.NoError(t, err)
	second, err := b.Build(sampleInvoice())
	require.NoError(t, err)

	d1, err := b.Digest(first)
	require.NoError(t, err)
	d2, err := b.Digest(second)
	require.NoError(t, err)
	assert.Len(t, d1, 64)
	assert.Equal(t, d1, d2)

	other := sampleInvoice()
	other.TotalAmount = decimal.RequireFromString("1100.01")
	third, err := b.Build(other)
	require.NoError(t, err)
	d3, err := b.Digest(third)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}

func TestDigest_IgnoraSerializacion(t *testing.T) {
	b := ubl.NewXMLBuilderService()
	d1, err := b.Digest([]byte(`<?xml version="1.0"?><a x="1" y="2"><b></b></a>`))
	require.NoError(t, err)
	d2, err := b.Digest([]byte(`<a y="2" x="1"><b/></a>`))
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestDigest_XMLInvalido(t *testing.T) {
	_, err := ubl.NewXMLBuilderService().Digest([]byte("no es xml"))
	assert.Error(t, err)
}
