package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/ocr-invoice-api/internal/application/invoicing"
	"github.com/jhoicas/ocr-invoice-api/pkg/logger"
)

// ServiceInfo identificación del servicio para / y /health.
type ServiceInfo struct {
	Name    string
	Version string
	Docs    string
}

// SystemHandler raíz, health check y contadores de error.
type SystemHandler struct {
	info   ServiceInfo
	query  *invoicing.InvoiceQueryUseCase
	counts func() map[string]int64
}

// NewSystemHandler construye el handler. counts puede ser nil.
func NewSystemHandler(info ServiceInfo, query *invoicing.InvoiceQueryUseCase, counts func() map[string]int64) *SystemHandler {
	return &SystemHandler{info: info, query: query, counts: counts}
}

// Root GET /
func (h *SystemHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": h.info.Name,
		"version": h.info.Version,
		"status":  "running",
		"docs":    h.info.Docs,
	})
}

// Health comprueba la conexión a la base de datos.
// GET /api/v1/health
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	if err := h.query.Ping(c.UserContext()); err != nil {
		logger.FromContext(c.UserContext(), log.Logger).Error().Err(err).Msg("health-db-error")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unhealthy",
			"service":  h.info.Name,
			"version":  h.info.Version,
			"database": "disconnected",
		})
	}
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"service":  h.info.Name,
		"version":  h.info.Version,
		"database": "connected",
	})
}

// ErrorMetrics GET /api/v1/metrics/errors
func (h *SystemHandler) ErrorMetrics(c *fiber.Ctx) error {
	counts := map[string]int64{}
	if h.counts != nil {
		counts = h.counts()
	}
	return c.JSON(fiber.Map{"error_counts": counts})
}
