package ocr

// MaxRawTextLen longitud máxima aceptada para raw_text.
const MaxRawTextLen = 50000

// Record resultado crudo de una extracción OCR, tal como llega del motor externo.
type Record struct {
	RawText         *string  `json:"raw_text"`
	ExtractedFields Fields   `json:"extracted_fields"`
	ConfidenceScore *float64 `json:"confidence_score"`
}
