package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/ocr-invoice-api/internal/domain"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `
	id, invoice_number, invoice_date, due_date, vendor_name, vendor_address, vendor_tax_id,
	customer_name, customer_address, subtotal, tax_amount, total_amount, currency,
	raw_ocr_text, confidence_score, status, error_message, created_at, updated_at, processed_at`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.InvoiceNumber, inv.InvoiceDate, inv.DueDate, inv.VendorName, inv.VendorAddress, inv.VendorTaxID,
		inv.CustomerName, inv.CustomerAddress, inv.Subtotal, inv.TaxAmount, inv.TotalAmount, inv.Currency,
		inv.RawOCRText, inv.ConfidenceScore, inv.Status, inv.ErrorMessage, inv.CreatedAt, inv.UpdatedAt, inv.ProcessedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number %q already exists: %w", inv.InvoiceNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLineItem persiste una línea de detalle.
func (r *InvoiceRepo) CreateLineItem(ctx context.Context, invoiceID string, position int, item entity.LineItem) error {
	query := `
		INSERT INTO invoice_line_items (id, invoice_id, position, description, quantity, unit_price, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		uuid.New().String(), invoiceID, position, item.Description, item.Quantity, item.UnitPrice, item.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line item: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetByNumber obtiene una factura por su número.
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_number = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by number: %w", err)
	}
	return inv, nil
}

// ListLineItems devuelve las líneas de una factura ordenadas por posición.
func (r *InvoiceRepo) ListLineItems(ctx context.Context, invoiceID string) ([]entity.LineItem, error) {
	query := `
		SELECT description, quantity, unit_price, amount
		FROM invoice_line_items WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice line items: %w", err)
	}
	defer rows.Close()

	var items []entity.LineItem
	for rows.Next() {
		var it entity.LineItem
		if err := rows.Scan(&it.Description, &it.Quantity, &it.UnitPrice, &it.Amount); err != nil {
			return nil, fmt.Errorf("scan invoice line item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// List lista facturas por fecha de creación descendente, opcionalmente filtradas por estado.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + invoiceColumns + ` FROM invoices`)
	if f.Status != "" {
		args = append(args, f.Status)
		sb.WriteString(fmt.Sprintf(" WHERE status = $%d", len(args)))
	}
	args = append(args, f.Limit, f.Offset)
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args)))

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Count cuenta facturas, opcionalmente por estado.
func (r *InvoiceRepo) Count(ctx context.Context, status string) (int, error) {
	query := `SELECT COUNT(*) FROM invoices`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	var n int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}

// UpdateStatus cambia el estado y el mensaje de error. processed_at se fija al pasar a processed.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id, status string, errorMessage *string, at time.Time) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	query := `
		UPDATE invoices
		SET status        = $2,
		    error_message = $3,
		    updated_at    = $4,
		    processed_at  = CASE WHEN $2 = 'processed' THEN $4 ELSE processed_at END
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, status, errorMessage, at)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la factura; las líneas se borran en cascada.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping ejecuta una consulta trivial.
func (r *InvoiceRepo) Ping(ctx context.Context) error {
	var one int
	return r.q.QueryRow(ctx, `SELECT 1`).Scan(&one)
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.InvoiceDate, &inv.DueDate, &inv.VendorName, &inv.VendorAddress, &inv.VendorTaxID,
		&inv.CustomerName, &inv.CustomerAddress, &inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount, &inv.Currency,
		&inv.RawOCRText, &inv.ConfidenceScore, &inv.Status, &inv.ErrorMessage, &inv.CreatedAt, &inv.UpdatedAt, &inv.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}
