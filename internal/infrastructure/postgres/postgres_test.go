package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

func TestMapError_CodigosPostgres(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"único", &pgconn.PgError{Code: "23505"}, domain.ErrDuplicate},
		{"fk", &pgconn.PgError{Code: "23503"}, domain.ErrNotFound},
		{"lock", &pgconn.PgError{Code: "55P03"}, domain.ErrLockTimeout},
		{"uuid inválido", &pgconn.PgError{Code: "22P02"}, domain.ErrNotFound},
		{"existencia negativa", &pgconn.PgError{Code: "23514", ConstraintName: "inventory_quantity_check"}, domain.ErrInsufficientStock},
		{"otro check", &pgconn.PgError{Code: "23514", ConstraintName: "variants_price_check"}, domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError("op", tc.err), tc.want)
		})
	}

	assert.NoError(t, mapError("op", nil))
	plain := errors.New("boom")
	assert.ErrorIs(t, mapError("op", plain), plain)
}

func TestListQuery_Filtros(t *testing.T) {
	sql, args, err := listQuery(repository.InventoryFilter{
		BranchID:   "b1",
		Search:     "cam",
		OutOfStock: true,
		Limit:      10,
		Offset:     20,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "i.branch_id = $1")
	assert.Contains(t, sql, "p.name ILIKE $2")
	assert.Contains(t, sql, "NOT EXISTS")
	assert.Contains(t, sql, "ORDER BY p.name, v.sku, b.name")
	assert.Contains(t, sql, "LIMIT 10 OFFSET 20")
	assert.Equal(t, "b1", args[0])
	assert.Equal(t, "%cam%", args[1])
}

func TestTransactionWhere_RangoExclusivo(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	sql, args, err := psql.Select("id").From("stock_transactions").
		Where(transactionWhere(repository.TransactionFilter{
			Motives: []entity.Motive{entity.MotiveSale, entity.MotiveDirectSale},
			From:    &from,
			To:      &to,
		})).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "motive IN ($1,$2)")
	assert.Contains(t, sql, "created_at >= $3")
	assert.Contains(t, sql, "created_at < $4")
	assert.Equal(t, []any{"SALE", "DIRECT_SALE", from, to}, args)
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", migrateURL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://h/db", migrateURL("postgresql://h/db"))
}

func TestMigrations_Embebidas(t *testing.T) {
	up, err := migrationsFS.ReadFile("migrations/000001_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "inventory_quantity_check")
	assert.Contains(t, string(up), "BEFORE UPDATE OR DELETE ON stock_transactions")

	_, err = migrationsFS.ReadFile("migrations/000001_init.down.sql")
	require.NoError(t, err)
}
