package repository

import (
	"context"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// StockRepository es el lado de escritura del ledger; solo se usa dentro de TxRunner.
type StockRepository interface {
	// GetForUpdate bloquea el par hasta el fin de la transacción y devuelve su existencia.
	// Un par sin registro devuelve cantidad 0.
	GetForUpdate(ctx context.Context, variantID, branchID string) (*entity.InventoryRecord, error)
	Upsert(ctx context.Context, record *entity.InventoryRecord) error
}

// JournalRepository agrega asientos al historial; solo se usa dentro de TxRunner.
type JournalRepository interface {
	Append(ctx context.Context, record *entity.TransactionRecord) error
}

// CatalogWriter da de alta productos y variantes dentro de una transacción del ledger.
type CatalogWriter interface {
	CreateProduct(ctx context.Context, product *entity.Product) error
	CreateVariant(ctx context.Context, variant *entity.Variant) error
}

// LedgerTx agrupa los repositorios atados a una misma transacción.
type LedgerTx struct {
	Stock   StockRepository
	Journal JournalRepository
	Catalog CatalogWriter
}
