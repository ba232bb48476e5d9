package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jhoicas/ocr-invoice-api/internal/application/invoicing"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/repository"
)

var _ invoicing.InvoiceTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción SQLite.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner construye el runner.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// RunInvoice ejecuta fn con el repositorio atado a la tx. Rollback si fn falla.
func (r *TxRunner) RunInvoice(ctx context.Context, fn func(repo repository.InvoiceRepository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(NewInvoiceRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
