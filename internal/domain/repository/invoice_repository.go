package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
)

// InvoiceFilter filtros del listado de facturas. Status vacío = todos.
type InvoiceFilter struct {
	Status string
	Offset int
	Limit  int
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	// Create persiste la cabecera. Un invoice_number repetido devuelve domain.ErrDuplicate.
	Create(ctx context.Context, invoice *entity.Invoice) error
	// CreateLineItem persiste una línea en la posición indicada (0-based).
	CreateLineItem(ctx context.Context, invoiceID string, position int, item entity.LineItem) error
	// GetByID y GetByNumber devuelven (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*entity.Invoice, error)
	// ListLineItems devuelve las líneas en orden de posición.
	ListLineItems(ctx context.Context, invoiceID string) ([]entity.LineItem, error)
	// List ordena por created_at descendente.
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
	Count(ctx context.Context, status string) (int, error)
	// UpdateStatus devuelve domain.ErrNotFound si no existe.
	UpdateStatus(ctx context.Context, id, status string, errorMessage *string, at time.Time) error
	// Delete elimina la factura y sus líneas; domain.ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
	// Ping verifica la conectividad con el almacenamiento.
	Ping(ctx context.Context) error
}
