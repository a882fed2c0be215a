package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

var (
	_ repository.InventoryRepository   = (*InventoryRepo)(nil)
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
)

// InventoryRepo consultas de existencias sin bloqueo.
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador de lectura de inventario.
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// Get devuelve la existencia del par; cantidad 0 si no hay fila.
func (r *InventoryRepo) Get(ctx context.Context, variantID, branchID string) (*entity.InventoryRecord, error) {
	sql, args, err := psql.Select("variant_id", "branch_id", "quantity", "updated_at").
		From("inventory").
		Where(squirrel.Eq{"variant_id": variantID, "branch_id": branchID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var row inventoryRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return &entity.InventoryRecord{VariantID: variantID, BranchID: branchID}, nil
		}
		return nil, mapError("get stock", err)
	}
	return row.toEntity(), nil
}

// ListByVariant devuelve las filas de existencia de la variante en todas las sucursales.
func (r *InventoryRepo) ListByVariant(ctx context.Context, variantID string) ([]*entity.InventoryRecord, error) {
	sql, args, err := psql.Select("variant_id", "branch_id", "quantity", "updated_at").
		From("inventory").
		Where(squirrel.Eq{"variant_id": variantID}).
		OrderBy("branch_id").
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []inventoryRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, mapError("list stock by variant", err)
	}
	list := make([]*entity.InventoryRecord, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, nil
}

// listQuery arma la consulta del listado; separada para poder inspeccionar el SQL.
func listQuery(filter repository.InventoryFilter) squirrel.SelectBuilder {
	q := psql.Select(
		"i.variant_id", "i.branch_id", "b.name AS branch_name",
		"p.id AS product_id", "COALESCE(p.sku, '') AS product_sku", "p.name AS product_name",
		"v.sku AS variant_sku", "COALESCE(v.barcode, '') AS barcode", "v.model", "v.color",
		"v.label_price", "v.acquisition_cost", "i.quantity", "i.updated_at",
	).
		From("inventory i").
		Join("variants v ON v.id = i.variant_id").
		Join("products p ON p.id = v.product_id").
		Join("branches b ON b.id = i.branch_id")

	if filter.BranchID != "" {
		q = q.Where(squirrel.Eq{"i.branch_id": filter.BranchID})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"p.name": like},
			squirrel.ILike{"p.sku": like},
			squirrel.ILike{"v.sku": like},
			squirrel.ILike{"v.barcode": like},
		})
	}
	if filter.InStock {
		q = q.Where(squirrel.Gt{"i.quantity": 0})
	}
	if filter.OutOfStock {
		q = q.Where("NOT EXISTS (SELECT 1 FROM inventory o WHERE o.variant_id = i.variant_id AND o.quantity > 0)")
	}
	q = q.OrderBy("p.name", "v.sku", "b.name")
	return page(q, filter.Limit, filter.Offset)
}

// List lista el inventario con datos de variante, producto y sucursal.
func (r *InventoryRepo) List(ctx context.Context, filter repository.InventoryFilter) ([]entity.InventoryItem, error) {
	sql, args, err := listQuery(filter).ToSql()
	if err != nil {
		return nil, err
	}
	var rows []inventoryItemRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, mapError("list inventory", err)
	}
	items := make([]entity.InventoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// Valuation resume productos, variantes, unidades y valor al costo.
func (r *InventoryRepo) Valuation(ctx context.Context) (entity.InventoryValuation, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*) FROM products)                                   AS unique_products,
	    (SELECT COUNT(*) FROM variants)                                   AS variants,
	    COALESCE(SUM(i.quantity), 0)                                      AS total_units,
	    COALESCE(SUM(i.quantity * v.acquisition_cost), 0)::NUMERIC(18,2)  AS total_value
	FROM inventory i
	JOIN variants v ON v.id = i.variant_id`

	var out entity.InventoryValuation
	var totalValue decimal.Decimal
	if err := r.q.QueryRow(ctx, query).Scan(&out.UniqueProducts, &out.Variants, &out.TotalUnits, &totalValue); err != nil {
		return out, fmt.Errorf("inventory valuation: %w", err)
	}
	out.TotalValue = totalValue
	return out, nil
}

// TransactionRepo consultas del historial.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador de lectura del historial.
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// GetByID obtiene un asiento por ID.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.TransactionRecord, error) {
	sql, args, err := psql.Select(transactionColumns...).From("stock_transactions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var row transactionRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.NotFound("movimiento", id)
		}
		return nil, notFoundOr(mapError("get transaction", err), "movimiento", id)
	}
	return row.toEntity(), nil
}

func transactionWhere(f repository.TransactionFilter) squirrel.And {
	where := squirrel.And{}
	if f.VariantID != "" {
		where = append(where, squirrel.Eq{"variant_id": f.VariantID})
	}
	if f.BranchID != "" {
		where = append(where, squirrel.Eq{"branch_id": f.BranchID})
	}
	if len(f.Motives) > 0 {
		motives := make([]string, len(f.Motives))
		for i, m := range f.Motives {
			motives[i] = string(m)
		}
		where = append(where, squirrel.Eq{"motive": motives})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.Lt{"created_at": *f.To})
	}
	return where
}

// List devuelve los asientos más recientes primero y el total que cumple el filtro.
func (r *TransactionRepo) List(ctx context.Context, filter repository.TransactionFilter) ([]*entity.TransactionRecord, int, error) {
	where := transactionWhere(filter)

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("stock_transactions").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapError("count transactions", err)
	}

	q := psql.Select(transactionColumns...).From("stock_transactions").Where(where).
		OrderBy("created_at DESC", "id DESC")
	sql, args, err := page(q, filter.Limit, filter.Offset).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var rows []transactionRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, 0, mapError("list transactions", err)
	}
	list := make([]*entity.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, total, nil
}
