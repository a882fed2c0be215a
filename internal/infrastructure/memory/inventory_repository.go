package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

var (
	_ repository.InventoryRepository   = (*InventoryRepo)(nil)
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
	_ repository.SnapshotRepository    = (*SnapshotRepo)(nil)
)

// InventoryRepo lecturas de existencias en memoria.
type InventoryRepo struct{ s *Store }

// NewInventoryRepository construye el adaptador.
func NewInventoryRepository(s *Store) *InventoryRepo { return &InventoryRepo{s: s} }

func (r *InventoryRepo) Get(_ context.Context, variantID, branchID string) (*entity.InventoryRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if rec, ok := r.s.stock[entity.StockKey{VariantID: variantID, BranchID: branchID}]; ok {
		cp := *rec
		return &cp, nil
	}
	return &entity.InventoryRecord{VariantID: variantID, BranchID: branchID}, nil
}

func (r *InventoryRepo) ListByVariant(_ context.Context, variantID string) ([]*entity.InventoryRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.InventoryRecord
	for k, rec := range r.s.stock {
		if k.VariantID == variantID {
			cp := *rec
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].BranchID < list[j].BranchID })
	return list, nil
}

func (r *InventoryRepo) List(_ context.Context, filter repository.InventoryFilter) ([]entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	totals := make(map[string]int64)
	for k, rec := range r.s.stock {
		totals[k.VariantID] += rec.Quantity
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var items []entity.InventoryItem
	for k, rec := range r.s.stock {
		if filter.BranchID != "" && k.BranchID != filter.BranchID {
			continue
		}
		if filter.InStock && rec.Quantity == 0 {
			continue
		}
		if filter.OutOfStock && totals[k.VariantID] != 0 {
			continue
		}
		v, ok := r.s.variants[k.VariantID]
		if !ok {
			continue
		}
		p := r.s.products[v.ProductID]
		item := entity.InventoryItem{
			VariantID:       v.ID,
			BranchID:        k.BranchID,
			ProductID:       v.ProductID,
			VariantSKU:      v.SKU,
			Barcode:         v.Barcode,
			Model:           v.Model,
			Color:           v.Color,
			LabelPrice:      v.LabelPrice,
			AcquisitionCost: v.AcquisitionCost,
			Quantity:        rec.Quantity,
			UpdatedAt:       rec.UpdatedAt,
		}
		if p != nil {
			item.ProductSKU = p.SKU
			item.ProductName = p.Name
		}
		if b, ok := r.s.branches[k.BranchID]; ok {
			item.BranchName = b.Name
		}
		if search != "" && !matchesItem(item, search) {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		if a.VariantSKU != b.VariantSKU {
			return a.VariantSKU < b.VariantSKU
		}
		return a.BranchName < b.BranchName
	})
	return paginate(items, filter.Limit, filter.Offset), nil
}

func matchesItem(item entity.InventoryItem, search string) bool {
	for _, field := range []string{item.ProductName, item.ProductSKU, item.VariantSKU, item.Barcode} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func (r *InventoryRepo) Valuation(_ context.Context) (entity.InventoryValuation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := entity.InventoryValuation{
		UniqueProducts: int64(len(r.s.products)),
		Variants:       int64(len(r.s.variants)),
		TotalValue:     decimal.Zero,
	}
	for k, rec := range r.s.stock {
		v, ok := r.s.variants[k.VariantID]
		if !ok {
			continue
		}
		out.TotalUnits += rec.Quantity
		out.TotalValue = out.TotalValue.Add(v.AcquisitionCost.Mul(decimal.NewFromInt(rec.Quantity)))
	}
	return out, nil
}

// TransactionRepo lecturas del historial en memoria.
type TransactionRepo struct{ s *Store }

// NewTransactionRepository construye el adaptador.
func NewTransactionRepository(s *Store) *TransactionRepo { return &TransactionRepo{s: s} }

func (r *TransactionRepo) GetByID(_ context.Context, id string) (*entity.TransactionRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rec := range r.s.journal {
		if rec.ID == id {
			return copyRecord(rec), nil
		}
	}
	return nil, domain.NotFound("movimiento", id)
}

func (r *TransactionRepo) List(_ context.Context, filter repository.TransactionFilter) ([]*entity.TransactionRecord, int, error) {
	r.s.mu.RLock()
	journal := r.s.journal
	r.s.mu.RUnlock()

	var list []*entity.TransactionRecord
	for i := len(journal) - 1; i >= 0; i-- {
		rec := journal[i]
		if matchesTransaction(rec, filter) {
			list = append(list, copyRecord(rec))
		}
	}
	return paginate(list, filter.Limit, filter.Offset), len(list), nil
}

func matchesTransaction(rec *entity.TransactionRecord, f repository.TransactionFilter) bool {
	if f.VariantID != "" && rec.VariantID != f.VariantID {
		return false
	}
	if f.BranchID != "" && rec.BranchID != f.BranchID {
		return false
	}
	if len(f.Motives) > 0 && !slices.Contains(f.Motives, rec.Motive) {
		return false
	}
	return inRange(rec.CreatedAt, f.From, f.To)
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

// SnapshotRepo lecturas consistentes en memoria.
// El historial solo crece: basta copiar la cabecera del slice bajo lectura.
type SnapshotRepo struct{ s *Store }

// NewSnapshotRepository construye el adaptador.
func NewSnapshotRepository(s *Store) *SnapshotRepo { return &SnapshotRepo{s: s} }

func (r *SnapshotRepo) Snapshot(_ context.Context, from, to *time.Time) (*repository.JournalSnapshot, error) {
	r.s.mu.RLock()
	journal := r.s.journal
	branches := make([]*entity.Branch, 0, len(r.s.branches))
	for _, b := range r.s.branches {
		branches = append(branches, copyBranch(b))
	}
	r.s.mu.RUnlock()

	snap := &repository.JournalSnapshot{Branches: branches, TakenAt: time.Now()}
	sortBranches(snap.Branches)

	latest := make(map[string]repository.VariantRef)
	for _, rec := range journal {
		latest[rec.VariantID] = repository.VariantRef{
			VariantID:   rec.VariantID,
			VariantSKU:  rec.VariantSKU,
			ProductID:   rec.ProductID,
			ProductName: rec.ProductName,
			Model:       rec.Model,
			Color:       rec.Color,
		}
		if inRange(rec.CreatedAt, from, to) {
			snap.Records = append(snap.Records, rec)
		}
	}
	for _, ref := range latest {
		snap.History = append(snap.History, ref)
	}
	sort.Slice(snap.History, func(i, j int) bool { return snap.History[i].VariantID < snap.History[j].VariantID })
	return snap, nil
}

func (r *SnapshotRepo) Balances(_ context.Context) (map[entity.StockKey]int64, map[entity.StockKey]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	stock := make(map[entity.StockKey]int64, len(r.s.stock))
	for k, rec := range r.s.stock {
		stock[k] = rec.Quantity
	}
	sums := make(map[entity.StockKey]int64, len(r.s.stock))
	for _, rec := range r.s.journal {
		sums[rec.Key()] += rec.QuantityDelta
	}
	return stock, sums, nil
}
