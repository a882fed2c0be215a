package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

var (
	_ repository.StockRepository   = (*StockRepo)(nil)
	_ repository.JournalRepository = (*JournalRepo)(nil)
)

// StockRepo lado de escritura de las existencias; se construye sobre una tx (TxRunner).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar una tx.
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetForUpdate bloquea la fila del par (SELECT FOR UPDATE). Si no existe, primero inserta la fila en 0
// para que dos transacciones concurrentes sobre un par nuevo también se serialicen.
func (r *StockRepo) GetForUpdate(ctx context.Context, variantID, branchID string) (*entity.InventoryRecord, error) {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO inventory (variant_id, branch_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (variant_id, branch_id) DO NOTHING`, variantID, branchID); err != nil {
		return nil, mapError("reserve stock row", err)
	}

	sql, args, err := psql.Select("variant_id", "branch_id", "quantity", "updated_at").
		From("inventory").
		Where(squirrel.Eq{"variant_id": variantID, "branch_id": branchID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, err
	}
	var row inventoryRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			// La variante se borró mientras esperábamos el bloqueo.
			return nil, domain.NotFound("variante", variantID)
		}
		return nil, mapError("get stock for update", err)
	}
	return row.toEntity(), nil
}

// Upsert guarda la cantidad del par.
func (r *StockRepo) Upsert(ctx context.Context, record *entity.InventoryRecord) error {
	if record.Quantity < 0 {
		return &domain.StockError{VariantID: record.VariantID, BranchID: record.BranchID, Requested: -record.Quantity}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory (variant_id, branch_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (variant_id, branch_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
		record.VariantID, record.BranchID, record.Quantity, record.UpdatedAt,
	)
	return mapError("upsert stock", err)
}

// JournalRepo agrega asientos a stock_transactions (tabla de solo inserción).
type JournalRepo struct {
	q Querier
}

// NewJournalRepository construye el adaptador del historial. Pasar una tx.
func NewJournalRepository(q Querier) *JournalRepo {
	return &JournalRepo{q: q}
}

// Append inserta el asiento.
func (r *JournalRepo) Append(ctx context.Context, rec *entity.TransactionRecord) error {
	if rec.QuantityDelta == 0 {
		return fmt.Errorf("append transaction: %w", domain.ErrInvalidQuantity)
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	sql, args, err := psql.Insert("stock_transactions").
		Columns(transactionColumns...).
		Values(
			rec.ID, rec.VariantID, rec.BranchID, string(rec.Motive),
			rec.QuantityDelta, rec.PreviousQuantity, rec.ResultingQuantity,
			rec.UnitSalePrice, rec.UnitCost,
			rec.VariantSKU, rec.ProductID, rec.ProductName, rec.Model, rec.Color,
			rec.UserID, rec.UserName, rec.Note, rec.CreatedAt,
		).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return mapError("append transaction", err)
	}
	return nil
}
