package postgres

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

var _ repository.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo lecturas analíticas sobre una instantánea REPEATABLE READ.
type SnapshotRepo struct {
	runner *TxRunner
}

// NewSnapshotRepository construye el adaptador.
func NewSnapshotRepository(runner *TxRunner) *SnapshotRepo {
	return &SnapshotRepo{runner: runner}
}

type variantRefRow struct {
	VariantID   string `db:"variant_id"`
	VariantSKU  string `db:"variant_sku"`
	ProductID   string `db:"product_id"`
	ProductName string `db:"product_name"`
	Model       string `db:"model"`
	Color       string `db:"color"`
}

// Snapshot lee asientos del rango, la última referencia de cada variante con historial y las sucursales,
// todo en la misma instantánea.
func (r *SnapshotRepo) Snapshot(ctx context.Context, from, to *time.Time) (*repository.JournalSnapshot, error) {
	snap := &repository.JournalSnapshot{}
	err := r.runner.ReadSnapshot(ctx, "ledger.snapshot", func(q Querier) error {
		if err := q.QueryRow(ctx, `SELECT now()`).Scan(&snap.TakenAt); err != nil {
			return mapError("snapshot time", err)
		}

		sql, args, err := psql.Select(transactionColumns...).From("stock_transactions").
			Where(transactionWhere(repository.TransactionFilter{From: from, To: to})).
			OrderBy("created_at", "id").
			ToSql()
		if err != nil {
			return err
		}
		var rows []transactionRow
		if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
			return mapError("snapshot records", err)
		}
		snap.Records = make([]*entity.TransactionRecord, 0, len(rows))
		for _, row := range rows {
			snap.Records = append(snap.Records, row.toEntity())
		}

		var refs []variantRefRow
		if err := pgxscan.Select(ctx, q, &refs, `
			SELECT DISTINCT ON (variant_id)
			    variant_id, variant_sku, product_id, product_name, model, color
			FROM stock_transactions
			ORDER BY variant_id, created_at DESC, id DESC`); err != nil {
			return mapError("snapshot history", err)
		}
		snap.History = make([]repository.VariantRef, 0, len(refs))
		for _, ref := range refs {
			snap.History = append(snap.History, repository.VariantRef(ref))
		}

		bsql, bargs, err := psql.Select(branchColumns...).From("branches").OrderBy("name", "id").ToSql()
		if err != nil {
			return err
		}
		var branches []branchRow
		if err := pgxscan.Select(ctx, q, &branches, bsql, bargs...); err != nil {
			return mapError("snapshot branches", err)
		}
		for _, b := range branches {
			snap.Branches = append(snap.Branches, b.toEntity())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

type balanceRow struct {
	VariantID string `db:"variant_id"`
	BranchID  string `db:"branch_id"`
	Quantity  int64  `db:"quantity"`
}

// Balances lee existencias y sumas del historial en la misma instantánea.
func (r *SnapshotRepo) Balances(ctx context.Context) (map[entity.StockKey]int64, map[entity.StockKey]int64, error) {
	stock := make(map[entity.StockKey]int64)
	sums := make(map[entity.StockKey]int64)
	err := r.runner.ReadSnapshot(ctx, "ledger.balances", func(q Querier) error {
		var rows []balanceRow
		if err := pgxscan.Select(ctx, q, &rows, `SELECT variant_id, branch_id, quantity FROM inventory`); err != nil {
			return mapError("balances stock", err)
		}
		for _, row := range rows {
			stock[entity.StockKey{VariantID: row.VariantID, BranchID: row.BranchID}] = row.Quantity
		}

		rows = rows[:0]
		if err := pgxscan.Select(ctx, q, &rows, `
			SELECT variant_id, branch_id, SUM(quantity_delta)::BIGINT AS quantity
			FROM stock_transactions
			GROUP BY variant_id, branch_id`); err != nil {
			return mapError("balances journal", err)
		}
		for _, row := range rows {
			sums[entity.StockKey{VariantID: row.VariantID, BranchID: row.BranchID}] = row.Quantity
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return stock, sums, nil
}
