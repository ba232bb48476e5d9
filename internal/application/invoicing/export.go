package invoicing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ocr-invoice-api/internal/domain"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/repository"
	"github.com/jhoicas/ocr-invoice-api/pkg/logger"
)

// Tope de filas por exportación XLSX.
const maxExportRows = 10000

// XMLDocument XML UBL con su digest canónico (hex SHA-256).
type XMLDocument struct {
	Content []byte
	Digest  string
}

// ExportUseCase genera PDF, XML UBL y XLSX a partir de facturas persistidas.
type ExportUseCase struct {
	repo  repository.InvoiceRepository
	pdf   InvoicePDFGenerator
	xml   InvoiceXMLBuilder
	sheet InvoiceSheetExporter
	log   zerolog.Logger
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(
	repo repository.InvoiceRepository,
	pdf InvoicePDFGenerator,
	xml InvoiceXMLBuilder,
	sheet InvoiceSheetExporter,
	log zerolog.Logger,
) *ExportUseCase {
	return &ExportUseCase{repo: repo, pdf: pdf, xml: xml, sheet: sheet, log: log}
}

// PDF devuelve el PDF de la factura y su número (para el nombre del archivo).
func (uc *ExportUseCase) PDF(ctx context.Context, id string) ([]byte, string, error) {
	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	out, err := uc.pdf.GenerateInvoicePDF(ctx, inv)
	if err != nil {
		logger.FromContext(ctx, uc.log).Error().Err(err).Str("invoice_id", id).Msg("export-pdf-error")
		return nil, "", fmt.Errorf("generar pdf: %w", err)
	}
	return out, inv.InvoiceNumber, nil
}

// XML devuelve el documento UBL y su digest.
func (uc *ExportUseCase) XML(ctx context.Context, id string) (*XMLDocument, error) {
	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := uc.xml.Build(inv)
	if err != nil {
		logger.FromContext(ctx, uc.log).Error().Err(err).Str("invoice_id", id).Msg("export-xml-error")
		return nil, fmt.Errorf("generar xml: %w", err)
	}
	digest, err := uc.xml.Digest(content)
	if err != nil {
		logger.FromContext(ctx, uc.log).Error().Err(err).Str("invoice_id", id).Msg("export-xml-error")
		return nil, fmt.Errorf("digest xml: %w", err)
	}
	return &XMLDocument{Content: content, Digest: digest}, nil
}

// XLSX exporta las facturas (opcionalmente filtradas por estado), más recientes primero.
func (uc *ExportUseCase) XLSX(ctx context.Context, status string) ([]byte, error) {
	status, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	invoices, err := uc.repo.List(ctx, repository.InvoiceFilter{Status: status, Limit: maxExportRows})
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		if inv.Items, err = uc.repo.ListLineItems(ctx, inv.ID); err != nil {
			return nil, err
		}
	}
	out, err := uc.sheet.ExportInvoices(ctx, invoices)
	if err != nil {
		logger.FromContext(ctx, uc.log).Error().Err(err).Msg("export-xlsx-error")
		return nil, fmt.Errorf("generar xlsx: %w", err)
	}
	return out, nil
}

func (uc *ExportUseCase) load(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.Items, err = uc.repo.ListLineItems(ctx, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}
