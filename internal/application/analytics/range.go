// Package analytics agrega el historial de movimientos en rankings y resúmenes de ventas.
// Cada consulta trabaja sobre una sola instantánea del historial.
package analytics

import (
	"time"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
)

const dateLayout = "2006-01-02"

// Range rango de días calendario. From inclusivo, To exclusivo (día siguiente al final); nil = sin límite.
type Range struct {
	From *time.Time
	To   *time.Time
	// Start y End tal como llegaron (YYYY-MM-DD).
	Start string
	End   string
}

// ParseRange interpreta start y end (YYYY-MM-DD, ambos inclusive) en la zona loc.
func ParseRange(start, end string, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.UTC
	}
	r := Range{Start: start, End: end}
	verr := &domain.ValidationError{}
	if start != "" {
		t, err := time.ParseInLocation(dateLayout, start, loc)
		if err != nil {
			verr.Add("start", "formato esperado YYYY-MM-DD")
		} else {
			r.From = &t
		}
	}
	if end != "" {
		t, err := time.ParseInLocation(dateLayout, end, loc)
		if err != nil {
			verr.Add("end", "formato esperado YYYY-MM-DD")
		} else {
			next := t.AddDate(0, 0, 1)
			r.To = &next
		}
	}
	if err := verr.OrNil(); err != nil {
		return Range{}, err
	}
	if r.From != nil && r.To != nil && !r.From.Before(*r.To) {
		return Range{}, domain.NewValidationError("start", "no puede ser posterior a end")
	}
	return r, nil
}
