package invoicing

import (
	"context"

	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/repository"
)

// InvoiceTxRunner ejecuta fn dentro de una transacción con el repositorio atado a ella.
// Si fn devuelve error se hace rollback.
type InvoiceTxRunner interface {
	RunInvoice(ctx context.Context, fn func(repo repository.InvoiceRepository) error) error
}

// InvoicePDFGenerator genera la representación gráfica (PDF) de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice) ([]byte, error)
}

// InvoiceXMLBuilder genera el XML UBL de una factura y su digest canónico.
type InvoiceXMLBuilder interface {
	Build(invoice *entity.Invoice) ([]byte, error)
	Digest(xmlDoc []byte) (string, error)
}

// InvoiceSheetExporter exporta un listado de facturas a hoja de cálculo.
type InvoiceSheetExporter interface {
	ExportInvoices(ctx context.Context, invoices []*entity.Invoice) ([]byte, error)
}
