package http

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jhoicas/ocr-invoice-api/internal/domain/ocr"
)

// Esquema del sobre OCR: extracted_fields obligatorio y objeto; el contenido de los campos es libre.
var ocrEnvelopeSchema = fmt.Sprintf(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["extracted_fields"],
	"properties": {
		"raw_text": {"type": ["string", "null"], "maxLength": %d},
		"extracted_fields": {"type": "object"},
		"confidence_score": {"type": ["number", "null"], "minimum": 0, "maximum": 100}
	}
}`, ocr.MaxRawTextLen)

// OCRSchema valida el cuerpo crudo de POST /process-ocr antes del mapeo.
type OCRSchema struct {
	schema *jsonschema.Schema
}

// NewOCRSchema compila el esquema del sobre OCR.
func NewOCRSchema() (*OCRSchema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("ocr_envelope.json", strings.NewReader(ocrEnvelopeSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("ocr_envelope.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &OCRSchema{schema: schema}, nil
}

// Validate comprueba data contra el esquema. El error describe la primera violación.
func (s *OCRSchema) Validate(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := s.schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
