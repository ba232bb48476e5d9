package entity

import "github.com/shopspring/decimal"

// MaxLineItemDescriptionLen longitud máxima (en caracteres) de la descripción de una línea.
const MaxLineItemDescriptionLen = 500

// LineItem línea de detalle canónica. Pertenece a su factura; no tiene identidad propia
// en el dominio (el almacenamiento asigna id y posición).
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}
