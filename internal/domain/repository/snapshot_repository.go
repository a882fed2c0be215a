package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// VariantRef datos de exhibición de una variante tomados de su asiento más reciente.
type VariantRef struct {
	VariantID   string
	VariantSKU  string
	ProductID   string
	ProductName string
	Model       string
	Color       string
}

// JournalSnapshot vista consistente del historial para una consulta analítica.
// Los asientos son de solo lectura.
type JournalSnapshot struct {
	Records  []*entity.TransactionRecord // en el rango, orden cronológico
	History  []VariantRef                // todas las variantes con al menos un asiento, sin importar la fecha
	Branches []*entity.Branch
	TakenAt  time.Time
}

// SnapshotRepository lecturas consistentes que no bloquean a los escritores.
type SnapshotRepository interface {
	// Snapshot devuelve los asientos con from <= created_at < to; los límites nil no acotan.
	Snapshot(ctx context.Context, from, to *time.Time) (*JournalSnapshot, error)
	// Balances devuelve, en una misma lectura, las existencias y la suma de deltas por par.
	Balances(ctx context.Context) (stock, journal map[entity.StockKey]int64, err error)
}
