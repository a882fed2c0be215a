package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

// VariantStock existencia de una variante en todas las sucursales.
type VariantStock struct {
	VariantID string
	Total     int64
	Branches  []*entity.InventoryRecord
}

// Ledger consultas sobre las existencias y el historial. Las escrituras pasan por Recorder.
type Ledger struct {
	inventoryRepo   repository.InventoryRepository
	transactionRepo repository.TransactionRepository
	snapshotRepo    repository.SnapshotRepository
	variantRepo     repository.VariantRepository
	branchRepo      repository.BranchRepository
}

// NewLedger construye el caso de uso.
func NewLedger(
	inventoryRepo repository.InventoryRepository,
	transactionRepo repository.TransactionRepository,
	snapshotRepo repository.SnapshotRepository,
	variantRepo repository.VariantRepository,
	branchRepo repository.BranchRepository,
) *Ledger {
	return &Ledger{
		inventoryRepo:   inventoryRepo,
		transactionRepo: transactionRepo,
		snapshotRepo:    snapshotRepo,
		variantRepo:     variantRepo,
		branchRepo:      branchRepo,
	}
}

// GetQuantity devuelve la existencia del par; 0 si nunca tuvo movimientos.
// Variante o sucursal inexistentes devuelven domain.ErrNotFound.
func (uc *Ledger) GetQuantity(ctx context.Context, variantID, branchID string) (int64, error) {
	if _, err := uc.variantRepo.GetByID(ctx, variantID); err != nil {
		return 0, err
	}
	if _, err := uc.branchRepo.GetByID(ctx, branchID); err != nil {
		return 0, err
	}
	rec, err := uc.inventoryRepo.Get(ctx, variantID, branchID)
	if err != nil {
		return 0, err
	}
	return rec.Quantity, nil
}

// TotalStock suma la existencia de la variante en todas las sucursales.
func (uc *Ledger) TotalStock(ctx context.Context, variantID string) (*VariantStock, error) {
	if _, err := uc.variantRepo.GetByID(ctx, variantID); err != nil {
		return nil, err
	}
	records, err := uc.inventoryRepo.ListByVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	out := &VariantStock{VariantID: variantID, Branches: records}
	for _, r := range records {
		out.Total += r.Quantity
	}
	return out, nil
}

// List lista el inventario con datos de exhibición.
func (uc *Ledger) List(ctx context.Context, filter repository.InventoryFilter) ([]entity.InventoryItem, error) {
	if filter.BranchID != "" {
		if _, err := uc.branchRepo.GetByID(ctx, filter.BranchID); err != nil {
			return nil, err
		}
	}
	return uc.inventoryRepo.List(ctx, filter)
}

// Valuation resume productos, variantes y valor del inventario.
func (uc *Ledger) Valuation(ctx context.Context) (entity.InventoryValuation, error) {
	return uc.inventoryRepo.Valuation(ctx)
}

// Transactions lista el historial con filtros.
func (uc *Ledger) Transactions(ctx context.Context, filter repository.TransactionFilter) ([]*entity.TransactionRecord, int, error) {
	return uc.transactionRepo.List(ctx, filter)
}

// Transaction obtiene un asiento por ID.
func (uc *Ledger) Transaction(ctx context.Context, id string) (*entity.TransactionRecord, error) {
	return uc.transactionRepo.GetByID(ctx, id)
}

// Reconcile compara cada existencia con la suma de deltas de su historial. Vacío = consistente.
func (uc *Ledger) Reconcile(ctx context.Context) ([]entity.Discrepancy, error) {
	stock, sums, err := uc.snapshotRepo.Balances(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	return inventory.Reconcile(stock, sums), nil
}
