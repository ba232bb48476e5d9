package http

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ocr-invoice-api/internal/application/dto"
	"github.com/jhoicas/ocr-invoice-api/internal/application/invoicing"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/ocr"
	"github.com/jhoicas/ocr-invoice-api/pkg/config"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXML  = "application/xml; charset=utf-8"
)

// InvoiceHandler maneja el procesamiento OCR y la consulta/exportación de facturas.
type InvoiceHandler struct {
	process  *invoicing.ProcessOCRUseCase
	query    *invoicing.InvoiceQueryUseCase
	export   *invoicing.ExportUseCase
	schema   *OCRSchema
	validate *validator.Validate
	page     config.PaginationConfig
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(
	process *invoicing.ProcessOCRUseCase,
	query *invoicing.InvoiceQueryUseCase,
	export *invoicing.ExportUseCase,
	schema *OCRSchema,
	validate *validator.Validate,
	page config.PaginationConfig,
) *InvoiceHandler {
	return &InvoiceHandler{
		process:  process,
		query:    query,
		export:   export,
		schema:   schema,
		validate: validate,
		page:     page,
	}
}

// ProcessOCR mapea, valida y persiste un documento OCR.
// POST /api/v1/process-ocr
func (h *InvoiceHandler) ProcessOCR(c *fiber.Ctx) error {
	body := c.Body()
	if !json.Valid(body) {
		return badRequest(c, "INVALID_BODY", "cuerpo JSON inválido", nil)
	}
	if err := h.schema.Validate(body); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "SCHEMA_ERROR",
			Message: "OCR payload does not match the expected schema",
			Details: err.Error(),
		})
	}
	var rec ocr.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "SCHEMA_ERROR",
			Message: "OCR payload does not match the expected schema",
			Details: err.Error(),
		})
	}
	resp, err := h.process.Process(c.UserContext(), rec)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List lista facturas paginadas, más recientes primero.
// GET /api/v1/invoices?skip=&limit=&status=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: h.page.DefaultSize}
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "VALIDATION", "parámetros de paginación inválidos", nil)
	}
	if err := h.validate.Struct(page); err != nil {
		return badRequest(c, "VALIDATION", "parámetros de paginación inválidos", err)
	}
	if page.Limit > h.page.MaxSize {
		return badRequest(c, "VALIDATION", fmt.Sprintf("limit no puede superar %d", h.page.MaxSize), nil)
	}
	out, err := h.query.List(c.UserContext(), c.Query("status"), page.Skip, page.Limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID devuelve una factura con sus líneas.
// GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByNumber busca por número de factura.
// GET /api/v1/invoices/number/:number
func (h *InvoiceHandler) GetByNumber(c *fiber.Ctx) error {
	out, err := h.query.GetByNumber(c.UserContext(), c.Params("number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus cambia el estado de una factura.
// PATCH /api/v1/invoices/:id/status
func (h *InvoiceHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido", nil)
	}
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if err := h.validate.Struct(in); err != nil {
		return badRequest(c, "VALIDATION", "datos inválidos", err)
	}
	out, err := h.query.UpdateStatus(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete elimina la factura y sus líneas.
// DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.query.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PDF descarga la representación PDF.
// GET /api/v1/invoices/:id/pdf
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	out, number, err := h.export.PDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, safeFilename(number)))
	return c.Send(out)
}

// XML devuelve el documento UBL. El ETag es el digest canónico.
// GET /api/v1/invoices/:id/xml
func (h *InvoiceHandler) XML(c *fiber.Ctx) error {
	doc, err := h.export.XML(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	etag := `"` + doc.Digest + `"`
	c.Set(fiber.HeaderETag, etag)
	if match := c.Get(fiber.HeaderIfNoneMatch); match != "" && match == etag {
		return c.SendStatus(fiber.StatusNotModified)
	}
	c.Set(fiber.HeaderContentType, mimeXML)
	return c.Send(doc.Content)
}

// ExportXLSX descarga el listado en Excel.
// GET /api/v1/invoices/export.xlsx?status=
func (h *InvoiceHandler) ExportXLSX(c *fiber.Ctx) error {
	out, err := h.export.XLSX(c.UserContext(), c.Query("status"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, mimeXLSX)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="invoices.xlsx"`)
	return c.Send(out)
}

// safeFilename deja solo caracteres seguros para Content-Disposition.
func safeFilename(s string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, s)
	if out == "" {
		return "invoice"
	}
	return out
}
