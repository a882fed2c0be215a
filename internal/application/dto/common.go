package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

var maxQuantity = decimal.NewFromInt(entity.MaxQuantity)

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto y acota Limit a 200.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 200 {
		p.Limit = 200
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// FieldDetail error de validación de un campo.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"error"`
	Details []FieldDetail `json:"details,omitempty"`
	// Available existencia disponible cuando Code es INSUFFICIENT_STOCK.
	Available *int64 `json:"available,omitempty"`
}

// RangeQuery rango de fechas (YYYY-MM-DD, ambos inclusive) y tamaño de los rankings.
type RangeQuery struct {
	Start string `query:"start"`
	End   string `query:"end"`
	Limit int    `query:"limit"`
}

// IntegerQuantity convierte una cantidad JSON a entero. ok=false si tiene decimales o si su valor
// absoluto supera entity.MaxQuantity.
func IntegerQuantity(d decimal.Decimal) (n int64, ok bool) {
	if !d.IsInteger() || d.Abs().GreaterThan(maxQuantity) {
		return 0, false
	}
	return d.IntPart(), true
}
