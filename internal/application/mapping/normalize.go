package mapping

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ocr-invoice-api/internal/domain/ocr"
)

var currencyStripper = strings.NewReplacer("$", "", "€", "", "£", "", ",", "")

var (
	// Día de la semana inicial ("Monday, January 15, 2024"); dateparse no lo admite delante del mes.
	leadingWeekday = regexp.MustCompile(`(?i)^(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tues?|wed|thu(rs?)?|fri|sat|sun)\.?,?\s+`)
	// Fecha numérica de tres partes: 15/01/2024, 15.01.2024, 01-15-24.
	numericDMY = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{2}|\d{4})$`)
)

// ParseDate interpreta v como fecha. Las fechas pasan tal cual; los textos se analizan
// en formato ISO o libre, en UTC. Las numéricas ambiguas se leen mes/día salvo que la
// primera parte no pueda ser un mes (15/01/2024 es 15 de enero).
// Nunca falla: lo no interpretable se reporta como ausente.
func ParseDate(v ocr.Value) (time.Time, bool) {
	if t, ok := v.AsTime(); ok {
		return t, true
	}
	s, ok := v.AsString()
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(prepareDate(s), time.UTC)
	if err != nil {
		log.Warn().Str("value", s).Err(err).Msg("fecha no interpretable")
		return time.Time{}, false
	}
	return t, true
}

// prepareDate quita el día de la semana inicial y lleva las fechas numéricas a la forma
// mes/día/año que dateparse entiende, intercambiando día y mes cuando el primero pasa de 12.
func prepareDate(s string) string {
	s = leadingWeekday.ReplaceAllString(s, "")
	m := numericDMY.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	if first > 12 && second <= 12 {
		return m[2] + "/" + m[1] + "/" + m[3]
	}
	return m[1] + "/" + m[2] + "/" + m[3]
}

// ParseDecimal interpreta v como decimal exacto. Los números pasan tal cual; los textos
// se limpian de símbolos de moneda ($ € £), separadores de miles y espacios.
// Nunca falla: vacío o no interpretable se reporta como ausente.
func ParseDecimal(v ocr.Value) (decimal.Decimal, bool) {
	if d, ok := v.AsNumber(); ok {
		return d, true
	}
	s, ok := v.AsString()
	if !ok {
		return decimal.Decimal{}, false
	}
	cleaned := strings.TrimSpace(currencyStripper.Replace(s))
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		log.Warn().Str("value", s).Msg("decimal no interpretable")
		return decimal.Decimal{}, false
	}
	return d, true
}
