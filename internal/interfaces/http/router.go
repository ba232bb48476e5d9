package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	APIPrefix string
	Invoices  *InvoiceHandler
	System    *SystemHandler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	prefix := deps.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}

	app.Get("/", deps.System.Root)

	api := app.Group(prefix)
	api.Get("/health", deps.System.Health)
	api.Get("/metrics/errors", deps.System.ErrorMetrics)

	// Pipeline OCR
	api.Post("/process-ocr", deps.Invoices.ProcessOCR)

	// Invoices. Las rutas fijas van antes de /:id.
	invoices := api.Group("/invoices")
	invoices.Get("/", deps.Invoices.List)
	invoices.Get("/export.xlsx", deps.Invoices.ExportXLSX)
	invoices.Get("/number/:number", deps.Invoices.GetByNumber)
	invoices.Get("/:id", deps.Invoices.GetByID)
	invoices.Patch("/:id/status", deps.Invoices.UpdateStatus)
	invoices.Delete("/:id", deps.Invoices.Delete)
	invoices.Get("/:id/pdf", deps.Invoices.PDF)
	invoices.Get("/:id/xml", deps.Invoices.XML)
}
