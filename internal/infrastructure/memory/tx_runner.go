package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks con repos atados a una transacción en memoria.
// Las escrituras quedan en buffer hasta el commit; los pares bloqueados se liberan al terminar.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn y aplica sus escrituras solo si fn no devuelve error.
func (r *TxRunner) Run(ctx context.Context, fn func(tx repository.LedgerTx) error) error {
	t := &tx{
		s:        r.s,
		releases: make(map[entity.StockKey]func()),
		stock:    make(map[entity.StockKey]*entity.InventoryRecord),
	}
	defer t.releaseAll()

	if err := fn(repository.LedgerTx{Stock: stockTx{t}, Journal: journalTx{t}, Catalog: catalogTx{t}}); err != nil {
		return err
	}
	return t.commit()
}

type tx struct {
	s        *Store
	releases map[entity.StockKey]func()
	stock    map[entity.StockKey]*entity.InventoryRecord
	journal  []*entity.TransactionRecord
	products []*entity.Product
	variants []*entity.Variant
}

func (t *tx) releaseAll() {
	for _, release := range t.releases {
		release()
	}
}

// hasVariant busca la variante en el store o entre las altas pendientes. Requiere s.mu.
func (t *tx) hasVariant(id string) bool {
	if _, ok := t.s.variants[id]; ok {
		return true
	}
	for _, v := range t.variants {
		if v.ID == id {
			return true
		}
	}
	return false
}

// commit vuelve a validar altas, variantes y sucursales contra el estado actual y aplica el buffer de una vez.
func (t *tx) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range t.products {
		if err := s.productConflict(p, t.products[:i]); err != nil {
			return err
		}
	}
	for i, v := range t.variants {
		if err := s.variantConflict(v, t.variants[:i], t.products); err != nil {
			return err
		}
	}
	for k := range t.stock {
		if !t.hasVariant(k.VariantID) {
			return domain.NotFound("variante", k.VariantID)
		}
		if _, ok := s.branches[k.BranchID]; !ok {
			return domain.NotFound("sucursal", k.BranchID)
		}
	}
	for _, p := range t.products {
		s.products[p.ID] = p
	}
	for _, v := range t.variants {
		s.variants[v.ID] = v
	}
	for k, rec := range t.stock {
		cp := *rec
		s.stock[k] = &cp
	}
	s.journal = append(s.journal, t.journal...)
	return nil
}

type stockTx struct{ t *tx }

func (r stockTx) GetForUpdate(ctx context.Context, variantID, branchID string) (*entity.InventoryRecord, error) {
	key := entity.StockKey{VariantID: variantID, BranchID: branchID}
	if _, locked := r.t.releases[key]; !locked {
		release, err := r.t.s.locks.acquire(ctx, key, r.t.s.lockTimeout)
		if err != nil {
			return nil, fmt.Errorf("lock stock: %w", err)
		}
		r.t.releases[key] = release
	}
	if rec, ok := r.t.stock[key]; ok {
		cp := *rec
		return &cp, nil
	}

	r.t.s.mu.RLock()
	defer r.t.s.mu.RUnlock()
	if rec, ok := r.t.s.stock[key]; ok {
		cp := *rec
		return &cp, nil
	}
	return &entity.InventoryRecord{VariantID: variantID, BranchID: branchID}, nil
}

func (r stockTx) Upsert(_ context.Context, record *entity.InventoryRecord) error {
	key := record.Key()
	if _, locked := r.t.releases[key]; !locked {
		return fmt.Errorf("upsert stock: el par %s/%s no está bloqueado", key.VariantID, key.BranchID)
	}
	if record.Quantity < 0 {
		return fmt.Errorf("upsert stock: %w", &domain.StockError{
			VariantID: key.VariantID, BranchID: key.BranchID, Requested: -record.Quantity,
		})
	}
	cp := *record
	r.t.stock[key] = &cp
	return nil
}

type journalTx struct{ t *tx }

func (r journalTx) Append(_ context.Context, record *entity.TransactionRecord) error {
	if record.QuantityDelta == 0 {
		return fmt.Errorf("append transaction: %w", domain.ErrInvalidQuantity)
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	r.t.journal = append(r.t.journal, copyRecord(record))
	return nil
}

type catalogTx struct{ t *tx }

func (r catalogTx) CreateProduct(_ context.Context, product *entity.Product) error {
	r.t.s.mu.RLock()
	err := r.t.s.productConflict(product, r.t.products)
	r.t.s.mu.RUnlock()
	if err != nil {
		return err
	}
	r.t.products = append(r.t.products, copyProduct(product))
	return nil
}

func (r catalogTx) CreateVariant(_ context.Context, variant *entity.Variant) error {
	r.t.s.mu.RLock()
	err := r.t.s.variantConflict(variant, r.t.variants, r.t.products)
	r.t.s.mu.RUnlock()
	if err != nil {
		return err
	}
	r.t.variants = append(r.t.variants, copyVariant(variant))
	return nil
}
