package invoicing_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/ocr-invoice-api/internal/domain"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/repository"
)

// memRepo repositorio en memoria para pruebas de casos de uso.
type memRepo struct {
	mu       sync.Mutex
	invoices map[string]entity.Invoice
	items    map[string][]entity.LineItem
	failLine error
}

func newMemRepo() *memRepo {
	return &memRepo{invoices: map[string]entity.Invoice{}, items: map[string][]entity.LineItem{}}
}

func (r *memRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return domain.ErrDuplicate
		}
	}
	cp := *inv
	cp.Items = nil
	r.invoices[inv.ID] = cp
	return nil
}

func (r *memRepo) CreateLineItem(_ context.Context, invoiceID string, _ int, item entity.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLine != nil {
		return r.failLine
	}
	r.items[invoiceID] = append(r.items[invoiceID], item)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *memRepo) GetByNumber(_ context.Context, number string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.InvoiceNumber == number {
			cp := inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) ListLineItems(_ context.Context, invoiceID string) ([]entity.LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.LineItem(nil), r.items[invoiceID]...), nil
}

func (r *memRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*entity.Invoice
	for _, inv := range r.invoices {
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		cp := inv
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if f.Offset >= len(all) {
		return nil, nil
	}
	all = all[f.Offset:]
	if f.Limit < len(all) {
		all = all[:f.Limit]
	}
	return all, nil
}

func (r *memRepo) Count(_ context.Context, status string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, inv := range r.invoices {
		if status == "" || inv.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id, status string, errorMessage *string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	inv.ErrorMessage = errorMessage
	inv.UpdatedAt = at
	if status == entity.InvoiceStatusProcessed {
		inv.ProcessedAt = &at
	}
	r.invoices[id] = inv
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.invoices, id)
	delete(r.items, id)
	return nil
}

func (r *memRepo) Ping(context.Context) error { return nil }

// memTxRunner ejecuta fn contra memRepo y descarta los cambios si falla.
type memTxRunner struct {
	repo *memRepo
}

func (t memTxRunner) RunInvoice(ctx context.Context, fn func(repo repository.InvoiceRepository) error) error {
	t.repo.mu.Lock()
	invoices := make(map[string]entity.Invoice, len(t.repo.invoices))
	for k, v := range t.repo.invoices {
		invoices[k] = v
	}
	items := make(map[string][]entity.LineItem, len(t.repo.items))
	for k, v := range t.repo.items {
		items[k] = v
	}
	t.repo.mu.Unlock()

	if err := fn(t.repo); err != nil {
		t.repo.mu.Lock()
		t.repo.invoices, t.repo.items = invoices, items
		t.repo.mu.Unlock()
		return err
	}
	return nil
}

// Exportadores de prueba.

type fakePDF struct{ calls int }

func (f *fakePDF) GenerateInvoicePDF(_ context.Context, inv *entity.Invoice) ([]byte, error) {
	f.calls++
	return []byte("%PDF-" + inv.InvoiceNumber), nil
}

type fakeXML struct{}

func (fakeXML) Build(inv *entity.Invoice) ([]byte, error) {
	return []byte("<Invoice>" + inv.InvoiceNumber + "</Invoice>"), nil
}

func (fakeXML) Digest(doc []byte) (string, error) {
	return "digest-" + string(rune('0'+len(doc)%10)), nil
}

type fakeSheet struct{ got []*entity.Invoice }

func (f *fakeSheet) ExportInvoices(_ context.Context, invoices []*entity.Invoice) ([]byte, error) {
	f.got = invoices
	return []byte("xlsx"), nil
}
