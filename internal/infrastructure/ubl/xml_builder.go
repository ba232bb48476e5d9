// Package ubl genera una representación UBL 2.1 de la factura procesada y su digest
// canónico (C14N + SHA-256), usado como ETag del documento.
package ubl

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/ocr-invoice-api/internal/application/invoicing"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
)

var _ invoicing.InvoiceXMLBuilder = (*XMLBuilderService)(nil)

// Namespaces UBL 2.1.
const (
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	dateLayout = "2006-01-02"
	// Código UN/ECE rec 20 para "unidad".
	unitCode = "C62"
)

// XMLBuilderService construye el XML UBL de una factura.
type XMLBuilderService struct{}

// NewXMLBuilderService crea el servicio.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build genera el documento Invoice. Los opcionales ausentes se omiten.
func (s *XMLBuilderService) Build(inv *entity.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, fmt.Errorf("ubl: factura nil")
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", NsInvoice)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)

	cbc(root, "UBLVersionID", "2.1")
	cbc(root, "ID", inv.InvoiceNumber)
	if inv.ID != "" {
		cbc(root, "UUID", inv.ID)
	}
	cbc(root, "IssueDate", inv.InvoiceDate.Format(dateLayout))
	if inv.DueDate != nil {
		cbc(root, "DueDate", inv.DueDate.Format(dateLayout))
	}
	if inv.RawOCRText != nil && *inv.RawOCRText != "" {
		cbc(root, "Note", *inv.RawOCRText)
	}
	cbc(root, "DocumentCurrencyCode", inv.Currency)
	cbc(root, "LineCountNumeric", strconv.Itoa(len(inv.Items)))

	// cac:AccountingSupplierParty
	supplier := root.CreateElement("cac:AccountingSupplierParty")
	writeParty(supplier, inv.VendorName, inv.VendorAddress, inv.VendorTaxID)

	// cac:AccountingCustomerParty
	if inv.CustomerName != nil || inv.CustomerAddress != nil {
		customer := root.CreateElement("cac:AccountingCustomerParty")
		name := ""
		if inv.CustomerName != nil {
			name = *inv.CustomerName
		}
		writeParty(customer, name, inv.CustomerAddress, nil)
	}

	// cac:TaxTotal
	if inv.TaxAmount != nil {
		taxTotal := root.CreateElement("cac:TaxTotal")
		amount(taxTotal, "TaxAmount", *inv.TaxAmount, inv.Currency)
	}

	// cac:LegalMonetaryTotal
	monetary := root.CreateElement("cac:LegalMonetaryTotal")
	if inv.Subtotal != nil {
		amount(monetary, "LineExtensionAmount", *inv.Subtotal, inv.Currency)
		amount(monetary, "TaxExclusiveAmount", *inv.Subtotal, inv.Currency)
	}
	amount(monetary, "TaxInclusiveAmount", inv.TotalAmount, inv.Currency)
	amount(monetary, "PayableAmount", inv.TotalAmount, inv.Currency)

	// cac:InvoiceLine
	for i, it := range inv.Items {
		line := root.CreateElement("cac:InvoiceLine")
		cbc(line, "ID", strconv.Itoa(i+1))
		qty := cbc(line, "InvoicedQuantity", it.Quantity.String())
		qty.CreateAttr("unitCode", unitCode)
		amount(line, "LineExtensionAmount", it.Amount, inv.Currency)
		item := line.CreateElement("cac:Item")
		cbc(item, "Description", it.Description)
		price := line.CreateElement("cac:Price")
		amount(price, "PriceAmount", it.UnitPrice, inv.Currency)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("ubl: serializar: %w", err)
	}
	return out, nil
}

// Digest devuelve el SHA-256 (hex) de la forma canónica C14N del documento.
// Dos documentos que solo difieren en la serialización producen el mismo digest.
func (s *XMLBuilderService) Digest(xmlDoc []byte) (string, error) {
	canonical, err := canonicalizeXML(xmlDoc)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalizeXML aplica C14N al elemento raíz; la declaración XML queda fuera del digest.
func canonicalizeXML(data []byte) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("ubl: parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("ubl: documento sin elemento raíz")
	}
	rootOnly := etree.NewDocument()
	rootOnly.SetRoot(root.Copy())
	body, err := rootOnly.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("ubl: serializar raíz: %w", err)
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Entity = map[string]string{}
	out, err := c14n.Canonicalize(dec)
	if err != nil {
		return nil, fmt.Errorf("ubl: canonicalizar: %w", err)
	}
	return out, nil
}

func writeParty(parent *etree.Element, name string, address, taxID *string) {
	party := parent.CreateElement("cac:Party")
	partyName := party.CreateElement("cac:PartyName")
	cbc(partyName, "Name", name)
	if address != nil && *address != "" {
		postal := party.CreateElement("cac:PostalAddress")
		addrLine := postal.CreateElement("cac:AddressLine")
		cbc(addrLine, "Line", *address)
	}
	if taxID != nil && *taxID != "" {
		scheme := party.CreateElement("cac:PartyTaxScheme")
		cbc(scheme, "CompanyID", *taxID)
	}
}

func cbc(parent *etree.Element, local, value string) *etree.Element {
	el := parent.CreateElement("cbc:" + local)
	el.SetText(value)
	return el
}

func amount(parent *etree.Element, local string, value decimal.Decimal, currency string) {
	el := cbc(parent, local, value.StringFixed(2))
	el.CreateAttr("currencyID", currency)
}
