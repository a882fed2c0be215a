package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// ApplyDelta aplica delta sobre la existencia (servicio de dominio). Devuelve la cantidad previa.
// Si el resultado fuera negativo no modifica el registro y devuelve *domain.StockError.
// Un delta o un resultado por encima de entity.MaxQuantity es domain.ErrInvalidQuantity.
func ApplyDelta(rec *entity.InventoryRecord, delta int64, now time.Time) (int64, error) {
	prev := rec.Quantity
	if delta == 0 {
		return prev, domain.ErrInvalidQuantity
	}
	if delta > entity.MaxQuantity || delta < -entity.MaxQuantity {
		return prev, fmt.Errorf("%w: %d fuera de rango", domain.ErrInvalidQuantity, delta)
	}
	next := prev + delta
	if next > entity.MaxQuantity {
		return prev, fmt.Errorf("%w: la existencia superaría %d", domain.ErrInvalidQuantity, entity.MaxQuantity)
	}
	if next < 0 {
		return prev, &domain.StockError{
			VariantID: rec.VariantID,
			BranchID:  rec.BranchID,
			Available: prev,
			Requested: -delta,
		}
	}
	rec.Quantity = next
	rec.UpdatedAt = now
	return prev, nil
}

// Balance es la existencia derivada del historial para un par.
type Balance struct {
	Key      entity.StockKey
	Quantity int64
	Records  int
	// NegativeAt es el id del primer asiento que dejó el saldo negativo; vacío si nunca ocurrió.
	NegativeAt string
}

// Balances pliega el historial en saldos por par, ordenados por variante y sucursal.
// Los asientos deben venir en orden cronológico.
func Balances(records []*entity.TransactionRecord) []Balance {
	byKey := make(map[entity.StockKey]*Balance)
	for _, r := range records {
		k := r.Key()
		b, ok := byKey[k]
		if !ok {
			b = &Balance{Key: k}
			byKey[k] = b
		}
		b.Quantity += r.QuantityDelta
		b.Records++
		if b.Quantity < 0 && b.NegativeAt == "" {
			b.NegativeAt = r.ID
		}
	}
	out := make([]Balance, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.VariantID != out[j].Key.VariantID {
			return out[i].Key.VariantID < out[j].Key.VariantID
		}
		return out[i].Key.BranchID < out[j].Key.BranchID
	})
	return out
}

// Reconcile compara existencias contra las sumas del historial y devuelve los pares que difieren.
// Un par ausente en cualquiera de los dos lados cuenta como 0.
func Reconcile(stock map[entity.StockKey]int64, sums map[entity.StockKey]int64) []entity.Discrepancy {
	keys := make(map[entity.StockKey]struct{}, len(stock)+len(sums))
	for k := range stock {
		keys[k] = struct{}{}
	}
	for k := range sums {
		keys[k] = struct{}{}
	}
	var out []entity.Discrepancy
	for k := range keys {
		if stock[k] != sums[k] {
			out = append(out, entity.Discrepancy{
				VariantID:  k.VariantID,
				BranchID:   k.BranchID,
				Quantity:   stock[k],
				JournalSum: sums[k],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VariantID != out[j].VariantID {
			return out[i].VariantID < out[j].VariantID
		}
		return out[i].BranchID < out[j].BranchID
	})
	return out
}
