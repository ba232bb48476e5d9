package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
)

// MappingError indica que uno o más campos canónicos requeridos no pudieron resolverse
// desde los datos OCR. FieldErrors contiene campo -> motivo legible.
type MappingError struct {
	FieldErrors map[string]string
}

// NewMappingError construye el error a partir del mapa de errores por campo.
func NewMappingError(fieldErrors map[string]string) *MappingError {
	return &MappingError{FieldErrors: fieldErrors}
}

func (e *MappingError) Error() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("Failed to map OCR data to invoice schema: %s", strings.Join(fields, ", "))
}

// ValidationError indica que el borrador violó una o más reglas de negocio duras.
// Warnings acompaña el diagnóstico aunque no bloquee por sí mismo.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return "Invoice validation failed: " + strings.Join(e.Errors, "; ")
}

// InputError entrada inválida con un mensaje apto para el cliente. errors.Is(err, ErrInvalidInput) es true.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Unwrap() error { return ErrInvalidInput }
