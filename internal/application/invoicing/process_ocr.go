// Package invoicing orquesta el pipeline OCR → factura y las consultas y exportaciones
// sobre las facturas persistidas.
package invoicing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ocr-invoice-api/internal/application/dto"
	"github.com/jhoicas/ocr-invoice-api/internal/application/validation"
	"github.com/jhoicas/ocr-invoice-api/internal/domain"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/ocr"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/repository"
	"github.com/jhoicas/ocr-invoice-api/pkg/logger"
)

// InvoiceMapper reconcilia un registro OCR en un borrador de factura.
type InvoiceMapper interface {
	MapToInvoice(ctx context.Context, in ocr.Record) (*entity.InvoiceDraft, error)
}

// InvoiceValidator aplica las reglas de negocio al borrador.
type InvoiceValidator interface {
	Validate(ctx context.Context, draft *entity.InvoiceDraft) (*validation.Result, error)
}

// ProcessOCRUseCase mapea, valida y persiste un documento OCR.
type ProcessOCRUseCase struct {
	mapper    InvoiceMapper
	validator InvoiceValidator
	txRunner  InvoiceTxRunner
	log       zerolog.Logger
	now       func() time.Time
}

// NewProcessOCRUseCase construye el caso de uso.
func NewProcessOCRUseCase(mapper InvoiceMapper, validator InvoiceValidator, txRunner InvoiceTxRunner, log zerolog.Logger) *ProcessOCRUseCase {
	return &ProcessOCRUseCase{
		mapper:    mapper,
		validator: validator,
		txRunner:  txRunner,
		log:       log,
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj usado para las marcas de tiempo.
func (uc *ProcessOCRUseCase) WithClock(now func() time.Time) *ProcessOCRUseCase {
	cp := *uc
	cp.now = now
	return &cp
}

// Process ejecuta el pipeline. Devuelve *domain.MappingError, *domain.ValidationError o
// domain.ErrDuplicate sin envolver el tipo, para que el llamador los distinga con errors.As/Is.
// La factura se crea en estado processed; cabecera y líneas van en una sola transacción.
func (uc *ProcessOCRUseCase) Process(ctx context.Context, rec ocr.Record) (*dto.ProcessingResponse, error) {
	log := logger.FromContext(ctx, uc.log)
	log.Info().
		Int("fields_count", rec.ExtractedFields.Len()).
		Interface("confidence", rec.ConfidenceScore).
		Msg("Received OCR processing request")

	draft, err := uc.mapper.MapToInvoice(ctx, rec)
	if err != nil {
		return nil, err
	}
	result, err := uc.validator.Validate(ctx, draft)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	processedAt := now
	invoice := &entity.Invoice{
		ID:           uuid.New().String(),
		InvoiceDraft: *draft,
		Status:       entity.InvoiceStatusProcessed,
		CreatedAt:    now,
		UpdatedAt:    now,
		ProcessedAt:  &processedAt,
	}

	err = uc.txRunner.RunInvoice(ctx, func(repo repository.InvoiceRepository) error {
		if err := repo.Create(ctx, invoice); err != nil {
			return err
		}
		for i, item := range invoice.Items {
			if err := repo.CreateLineItem(ctx, invoice.ID, i, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			log.Warn().Str("invoice_number", invoice.InvoiceNumber).Msg("duplicate invoice number")
			return nil, err
		}
		log.Error().Err(err).Str("invoice_number", invoice.InvoiceNumber).Msg("persistence-error")
		return nil, fmt.Errorf("persist invoice: %w", err)
	}

	log.Info().
		Str("invoice_id", invoice.ID).
		Str("invoice_number", invoice.InvoiceNumber).
		Msg("Successfully processed OCR document")

	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	resp := dto.NewInvoiceResponse(invoice)
	return &dto.ProcessingResponse{
		Success:  true,
		Message:  fmt.Sprintf("Invoice %s processed successfully", invoice.InvoiceNumber),
		Invoice:  &resp,
		Warnings: warnings,
	}, nil
}
