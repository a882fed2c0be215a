package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

var tracer = otel.Tracer("github.com/jhoicas/inventario-sucursales/internal/infrastructure/postgres")

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout acota la espera por el bloqueo de un par;
// 0 espera indefinidamente.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(tx repository.LedgerTx) error) (err error) {
	ctx, span := tracer.Start(ctx, "ledger.transaction", trace.WithAttributes(
		attribute.String("tx.isolation", "read_committed"),
	))
	defer func() { endSpan(span, err) }()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		// SET no admite parámetros.
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err := fn(repository.LedgerTx{
		Stock:   NewStockRepository(tx),
		Journal: NewJournalRepository(tx),
		Catalog: catalogTx{products: NewProductRepository(tx), variants: NewVariantRepository(tx)},
	}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// catalogTx altas de catálogo sobre la misma tx que las existencias y el historial.
type catalogTx struct {
	products *ProductRepo
	variants *VariantRepo
}

func (c catalogTx) CreateProduct(ctx context.Context, product *entity.Product) error {
	return c.products.Create(ctx, product)
}

func (c catalogTx) CreateVariant(ctx context.Context, variant *entity.Variant) error {
	return c.variants.Create(ctx, variant)
}

// ReadSnapshot ejecuta fn en una transacción REPEATABLE READ de solo lectura: todas sus consultas
// ven el mismo estado y no bloquean a los escritores.
func (r *TxRunner) ReadSnapshot(ctx context.Context, name string, fn func(q Querier) error) (err error) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("tx.isolation", "repeatable_read"),
		attribute.Bool("tx.read_only", true),
	))
	defer func() { endSpan(span, err) }()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
