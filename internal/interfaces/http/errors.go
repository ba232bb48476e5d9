package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/ocr-invoice-api/internal/application/dto"
	"github.com/jhoicas/ocr-invoice-api/internal/domain"
	"github.com/jhoicas/ocr-invoice-api/pkg/logger"
)

// writeError traduce errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var (
		mErr  *domain.MappingError
		vErr  *domain.ValidationError
		inErr *domain.InputError
	)
	switch {
	case errors.As(err, &mErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "MAPPING_ERROR",
			Message: "Failed to map OCR data to invoice schema",
			Details: fiber.Map{"field_errors": mErr.FieldErrors},
		})
	case errors.As(err, &vErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invoice validation failed",
			Details: fiber.Map{"errors": vErr.Errors, "warnings": nonNil(vErr.Warnings)},
		})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "Invoice not found"})
	case errors.As(err, &inErr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: inErr.Message})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	logger.FromContext(c.UserContext(), log.Logger).Error().
		Err(err).
		Str("path", c.Path()).
		Msg("http-internal-error")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Code:    "INTERNAL",
		Message: "An unexpected error occurred while processing the request",
	})
}

// badRequest 400 con código y mensaje; si err viene de validator se adjuntan los campos.
func badRequest(c *fiber.Ctx, code, message string, err error) error {
	resp := dto.ErrorResponse{Code: code, Message: message}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		fields := make(map[string]string, len(vErrs))
		for _, fe := range vErrs {
			fields[fe.Field()] = fe.Tag()
		}
		resp.Details = fields
	}
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
