package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
)

// InvoiceResponse factura persistida en respuestas.
type InvoiceResponse struct {
	ID              string             `json:"id"`
	InvoiceNumber   string             `json:"invoice_number"`
	InvoiceDate     time.Time          `json:"invoice_date"`
	DueDate         *time.Time         `json:"due_date"`
	VendorName      string             `json:"vendor_name"`
	VendorAddress   *string            `json:"vendor_address"`
	VendorTaxID     *string            `json:"vendor_tax_id"`
	CustomerName    *string            `json:"customer_name"`
	CustomerAddress *string            `json:"customer_address"`
	Subtotal        *decimal.Decimal   `json:"subtotal"`
	TaxAmount       *decimal.Decimal   `json:"tax_amount"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	Currency        string             `json:"currency"`
	ConfidenceScore *decimal.Decimal   `json:"confidence_score"`
	Status          string             `json:"status"`
	ErrorMessage    *string            `json:"error_message"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	ProcessedAt     *time.Time         `json:"processed_at"`
	Items           []LineItemResponse `json:"items"`
}

// LineItemResponse línea de detalle en la respuesta.
type LineItemResponse struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// ProcessingResponse respuesta de POST /process-ocr.
type ProcessingResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Invoice  *InvoiceResponse `json:"invoice"`
	Warnings []string         `json:"warnings"`
}

// InvoiceListResponse página del listado de facturas.
type InvoiceListResponse struct {
	Total    int               `json:"total"`
	Skip     int               `json:"skip"`
	Limit    int               `json:"limit"`
	Invoices []InvoiceResponse `json:"invoices"`
}

// UpdateStatusRequest body para PATCH /invoices/:id/status.
type UpdateStatusRequest struct {
	Status       string  `json:"status" validate:"required,oneof=pending processed failed"`
	ErrorMessage *string `json:"error_message" validate:"omitempty,max=2000"`
}

// NewInvoiceResponse convierte la entidad a su representación HTTP. Items nunca es nil.
func NewInvoiceResponse(inv *entity.Invoice) InvoiceResponse {
	items := make([]LineItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, LineItemResponse{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
		})
	}
	return InvoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceDate:     inv.InvoiceDate,
		DueDate:         inv.DueDate,
		VendorName:      inv.VendorName,
		VendorAddress:   inv.VendorAddress,
		VendorTaxID:     inv.VendorTaxID,
		CustomerName:    inv.CustomerName,
		CustomerAddress: inv.CustomerAddress,
		Subtotal:        inv.Subtotal,
		TaxAmount:       inv.TaxAmount,
		TotalAmount:     inv.TotalAmount,
		Currency:        inv.Currency,
		ConfidenceScore: inv.ConfidenceScore,
		Status:          inv.Status,
		ErrorMessage:    inv.ErrorMessage,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
		ProcessedAt:     inv.ProcessedAt,
		Items:           items,
	}
}
