package invoicing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ocr-invoice-api/internal/application/dto"
	"github.com/jhoicas/ocr-invoice-api/internal/domain"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/repository"
	"github.com/jhoicas/ocr-invoice-api/pkg/logger"
)

// InvoiceQueryUseCase consultas y mantenimiento de facturas persistidas.
type InvoiceQueryUseCase struct {
	repo repository.InvoiceRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewInvoiceQueryUseCase construye el caso de uso.
func NewInvoiceQueryUseCase(repo repository.InvoiceRepository, log zerolog.Logger) *InvoiceQueryUseCase {
	return &InvoiceQueryUseCase{repo: repo, log: log, now: time.Now}
}

// Get devuelve la factura con sus líneas o domain.ErrNotFound.
func (uc *InvoiceQueryUseCase) Get(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewInvoiceResponse(inv)
	return &resp, nil
}

// GetByNumber busca por número de factura.
func (uc *InvoiceQueryUseCase) GetByNumber(ctx context.Context, number string) (*dto.InvoiceResponse, error) {
	inv, err := uc.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.Items, err = uc.repo.ListLineItems(ctx, inv.ID); err != nil {
		return nil, err
	}
	resp := dto.NewInvoiceResponse(inv)
	return &resp, nil
}

// List página de facturas, más recientes primero, con el total del filtro.
func (uc *InvoiceQueryUseCase) List(ctx context.Context, status string, skip, limit int) (*dto.InvoiceListResponse, error) {
	status, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	invoices, err := uc.listWithItems(ctx, repository.InvoiceFilter{Status: status, Offset: skip, Limit: limit})
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx, status)
	if err != nil {
		return nil, err
	}

	out := &dto.InvoiceListResponse{
		Total:    total,
		Skip:     skip,
		Limit:    limit,
		Invoices: make([]dto.InvoiceResponse, 0, len(invoices)),
	}
	for _, inv := range invoices {
		out.Invoices = append(out.Invoices, dto.NewInvoiceResponse(inv))
	}

	logger.FromContext(ctx, uc.log).Info().
		Int("count", len(out.Invoices)).
		Int("total", total).
		Int("skip", skip).
		Int("limit", limit).
		Msg("Retrieved invoices")
	return out, nil
}

// UpdateStatus cambia el estado de la factura. Pasar a un estado distinto de failed limpia
// el mensaje de error.
func (uc *InvoiceQueryUseCase) UpdateStatus(ctx context.Context, id string, in dto.UpdateStatusRequest) (*dto.InvoiceResponse, error) {
	status, err := ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return nil, fmt.Errorf("status requerido: %w", domain.ErrInvalidInput)
	}
	errorMessage := in.ErrorMessage
	if status != entity.InvoiceStatusFailed {
		errorMessage = nil
	}
	if err := uc.repo.UpdateStatus(ctx, id, status, errorMessage, uc.now().UTC()); err != nil {
		return nil, err
	}
	logger.FromContext(ctx, uc.log).Info().
		Str("invoice_id", id).
		Str("status", status).
		Msg("Invoice status updated")
	return uc.Get(ctx, id)
}

// Delete elimina la factura y sus líneas.
func (uc *InvoiceQueryUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx, uc.log).Info().Str("invoice_id", id).Msg("Invoice deleted")
	return nil
}

// Ping verifica el almacenamiento (health check).
func (uc *InvoiceQueryUseCase) Ping(ctx context.Context) error {
	return uc.repo.Ping(ctx)
}

func (uc *InvoiceQueryUseCase) load(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		logger.FromContext(ctx, uc.log).Warn().Str("invoice_id", id).Msg("Invoice not found")
		return nil, domain.ErrNotFound
	}
	if inv.Items, err = uc.repo.ListLineItems(ctx, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

func (uc *InvoiceQueryUseCase) listWithItems(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	invoices, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		if inv.Items, err = uc.repo.ListLineItems(ctx, inv.ID); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

// ParseStatus normaliza un filtro de estado (vacío = todos). Un valor desconocido devuelve
// domain.ErrInvalidInput con el mensaje para el cliente.
func ParseStatus(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || entity.IsValidInvoiceStatus(s) {
		return s, nil
	}
	return "", &domain.InputError{
		Message: fmt.Sprintf("Invalid status: %s. Valid values: %s", raw, strings.Join(entity.InvoiceStatuses, ", ")),
	}
}
