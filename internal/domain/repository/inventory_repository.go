package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// InventoryFilter filtros del listado de inventario.
type InventoryFilter struct {
	BranchID string
	Search   string // nombre de producto, SKU o código de barras
	// OutOfStock deja solo variantes sin existencia en ninguna sucursal.
	OutOfStock bool
	InStock    bool
	Limit      int
	Offset     int
}

// InventoryRepository consultas de lectura sobre las existencias.
type InventoryRepository interface {
	// Get devuelve la existencia del par; cantidad 0 si no hay registro.
	Get(ctx context.Context, variantID, branchID string) (*entity.InventoryRecord, error)
	ListByVariant(ctx context.Context, variantID string) ([]*entity.InventoryRecord, error)
	List(ctx context.Context, filter InventoryFilter) ([]entity.InventoryItem, error)
	Valuation(ctx context.Context) (entity.InventoryValuation, error)
}

// TransactionFilter filtros del historial. To es exclusivo.
type TransactionFilter struct {
	VariantID string
	BranchID  string
	Motives   []entity.Motive
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// TransactionRepository consultas de lectura sobre el historial.
type TransactionRepository interface {
	GetByID(ctx context.Context, id string) (*entity.TransactionRecord, error)
	// List devuelve los asientos más recientes primero y el total que cumple el filtro.
	List(ctx context.Context, filter TransactionFilter) ([]*entity.TransactionRecord, int, error)
}
