package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ocr-invoice-api/internal/domain"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// Formato de fechas almacenadas: UTC con nanosegundos fijos, ordenable como texto.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const invoiceColumns = `
	id, invoice_number, invoice_date, due_date, vendor_name, vendor_address, vendor_tax_id,
	customer_name, customer_address, subtotal, tax_amount, total_amount, currency,
	raw_ocr_text, confidence_score, status, error_message, created_at, updated_at, processed_at`

// Querier subconjunto común de *sql.DB y *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InvoiceRepo implementación de InvoiceRepository (usable con *sql.DB o *sql.Tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador.
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query,
		inv.ID, inv.InvoiceNumber, formatTime(inv.InvoiceDate), formatTimePtr(inv.DueDate),
		inv.VendorName, inv.VendorAddress, inv.VendorTaxID, inv.CustomerName, inv.CustomerAddress,
		inv.Subtotal, inv.TaxAmount, inv.TotalAmount, inv.Currency, inv.RawOCRText, inv.ConfidenceScore,
		inv.Status, inv.ErrorMessage, formatTime(inv.CreatedAt), formatTime(inv.UpdatedAt), formatTimePtr(inv.ProcessedAt),
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
	query := `INSERT INTO invoice_line_items (id, invoice_id, position, description, quantity, unit_price, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query,
		uuid.New().String(), invoiceID, position, item.Description,
		item.Quantity.String(), item.UnitPrice.String(), item.Amount.String(),
	)
	if err != nil {
		return fmt.Errorf("insert invoice line item: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)
}

// GetByNumber obtiene una factura por su número.
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number = ?`, number)
}

func (r *InvoiceRepo) getOne(ctx context.Context, query string, arg string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// ListLineItems devuelve las líneas de una factura ordenadas por posición.
func (r *InvoiceRepo) ListLineItems(ctx context.Context, invoiceID string) ([]entity.LineItem, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT description, quantity, unit_price, amount
		FROM invoice_line_items WHERE invoice_id = ? ORDER BY position`, invoiceID)
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
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	var args []any
	if f.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
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
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}

// UpdateStatus cambia el estado y el mensaje de error. processed_at se fija al pasar a processed.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id, status string, errorMessage *string, at time.Time) error {
	ts := formatTime(at)
	res, err := r.q.ExecContext(ctx, `
		UPDATE invoices
		SET status = ?, error_message = ?, updated_at = ?,
		    processed_at = CASE WHEN ? = 'processed' THEN ? ELSE processed_at END
		WHERE id = ?`,
		status, errorMessage, ts, status, ts, id,
	)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	return requireAffected(res)
}

// Delete elimina la factura; las líneas se borran en cascada.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return requireAffected(res)
}

// Ping ejecuta una consulta trivial.
func (r *InvoiceRepo) Ping(ctx context.Context) error {
	var one int
	return r.q.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*entity.Invoice, error) {
	var (
		inv                               entity.Invoice
		invoiceDate, createdAt, updatedAt string
		dueDate, processedAt              sql.NullString
		subtotal, taxAmount, confidence   decimal.NullDecimal
	)
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &invoiceDate, &dueDate, &inv.VendorName, &inv.VendorAddress, &inv.VendorTaxID,
		&inv.CustomerName, &inv.CustomerAddress, &subtotal, &taxAmount, &inv.TotalAmount, &inv.Currency,
		&inv.RawOCRText, &confidence, &inv.Status, &inv.ErrorMessage, &createdAt, &updatedAt, &processedAt,
	)
	if err != nil {
		return nil, err
	}
	if inv.InvoiceDate, err = parseTime(invoiceDate); err != nil {
		return nil, err
	}
	if inv.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if inv.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if inv.DueDate, err = parseNullTime(dueDate); err != nil {
		return nil, err
	}
	if inv.ProcessedAt, err = parseNullTime(processedAt); err != nil {
		return nil, err
	}
	inv.Subtotal = decimalPtr(subtotal)
	inv.TaxAmount = decimalPtr(taxAmount)
	inv.ConfidenceScore = decimalPtr(confidence)
	return &inv, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha almacenada inválida %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func decimalPtr(nd decimal.NullDecimal) *decimal.Decimal {
	if !nd.Valid {
		return nil
	}
	d := nd.Decimal
	return &d
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// isUniqueViolation detecta la violación de UNIQUE de SQLite (SQLITE_CONSTRAINT_UNIQUE).
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
