package mapping

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ocr-invoice-api/internal/domain/entity"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/ocr"
)

// Claves contenedoras de líneas, en orden de prioridad.
var lineItemContainers = []string{"items", "line_items", "products", "details", "lines"}

var (
	descriptionAliases = []string{"description", "desc", "item", "product", "name"}
	quantityAliases    = []string{"quantity", "qty", "count"}
	unitPriceAliases   = []string{"unit_price", "price", "rate"}
	amountAliases      = []string{"amount", "total", "line_total"}
)

// ExtractLineItems localiza la lista de líneas embebida y reconcilia cada una.
// Devuelve nil si no hay contenedor de tipo lista o si ninguna línea sobrevive.
func ExtractLineItems(fields *ocr.Fields) []entity.LineItem {
	var container ocr.Value
	for _, key := range lineItemContainers {
		v, ok := Resolve(fields, []string{key})
		if ok && !v.IsEmpty() {
			container = v
			break
		}
	}
	candidates, ok := container.AsList()
	if !ok {
		return nil
	}

	var items []entity.LineItem
	for i, candidate := range candidates {
		obj, ok := candidate.AsObject()
		if !ok {
			continue
		}
		item, reason := reconcileLineItem(obj)
		if reason != "" {
			log.Warn().Int("index", i).Str("reason", reason).Msg("línea descartada")
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

func reconcileLineItem(obj *ocr.Fields) (entity.LineItem, string) {
	description := strings.TrimSpace(resolveOr(obj, descriptionAliases, ocr.Str("")).Text())
	if description == "" {
		return entity.LineItem{}, "sin descripción"
	}
	quantity, ok := ParseDecimal(resolveOr(obj, quantityAliases, ocr.Int(1)))
	if !ok || !quantity.GreaterThan(decimal.Zero) {
		return entity.LineItem{}, "cantidad inválida"
	}
	unitPrice, ok := ParseDecimal(resolveOr(obj, unitPriceAliases, ocr.Int(0)))
	if !ok || unitPrice.IsNegative() {
		return entity.LineItem{}, "precio unitario inválido"
	}
	amount, ok := ParseDecimal(resolveOr(obj, amountAliases, ocr.Int(0)))
	if !ok || amount.IsNegative() {
		return entity.LineItem{}, "importe inválido"
	}
	return entity.LineItem{
		Description: truncateRunes(description, entity.MaxLineItemDescriptionLen),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      amount,
	}, ""
}

// resolveOr resuelve aliases y usa def si no hay clave o su valor es null.
func resolveOr(obj *ocr.Fields, aliases []string, def ocr.Value) ocr.Value {
	v, ok := Resolve(obj, aliases)
	if !ok || v.IsNull() {
		return def
	}
	return v
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
