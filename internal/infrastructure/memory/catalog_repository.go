package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.VariantRepository = (*VariantRepo)(nil)
	_ repository.BranchRepository  = (*BranchRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ s *Store }

// NewProductRepository construye el adaptador.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.productConflict(product, nil); err != nil {
		return err
	}
	r.s.products[product.ID] = copyProduct(product)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.NotFound("producto", id)
	}
	return copyProduct(p), nil
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ID]; !ok {
		return domain.NotFound("producto", product.ID)
	}
	if product.SKU != "" && r.productSKUTaken(product.SKU, product.ID) {
		return domain.ErrDuplicate
	}
	r.s.products[product.ID] = copyProduct(product)
	return nil
}

func (r *ProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var all []*entity.Product
	for _, p := range r.s.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		all = append(all, copyProduct(p))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	return paginate(all, filter.Limit, filter.Offset), len(all), nil
}

// Delete borra el producto, sus variantes y sus registros de existencia en cero.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return domain.NotFound("producto", id)
	}
	var variantIDs []string
	for vid, v := range r.s.variants {
		if v.ProductID == id {
			variantIDs = append(variantIDs, vid)
		}
	}
	for k, rec := range r.s.stock {
		if rec.Quantity != 0 && slices.Contains(variantIDs, k.VariantID) {
			return domain.ErrProductHasStock
		}
	}
	for k := range r.s.stock {
		if slices.Contains(variantIDs, k.VariantID) {
			delete(r.s.stock, k)
		}
	}
	for _, vid := range variantIDs {
		delete(r.s.variants, vid)
	}
	delete(r.s.products, id)
	return nil
}

func (r *ProductRepo) productSKUTaken(sku, exceptID string) bool {
	for _, p := range r.s.products {
		if p.ID != exceptID && strings.EqualFold(p.SKU, sku) {
			return true
		}
	}
	return false
}

// VariantRepo variantes en memoria.
type VariantRepo struct{ s *Store }

// NewVariantRepository construye el adaptador.
func NewVariantRepository(s *Store) *VariantRepo { return &VariantRepo{s: s} }

func (r *VariantRepo) Create(_ context.Context, variant *entity.Variant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.variantConflict(variant, nil, nil); err != nil {
		return err
	}
	r.s.variants[variant.ID] = copyVariant(variant)
	return nil
}

func (r *VariantRepo) GetByID(_ context.Context, id string) (*entity.Variant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.variants[id]
	if !ok {
		return nil, domain.NotFound("variante", id)
	}
	return copyVariant(v), nil
}

func (r *VariantRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Variant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, v := range r.s.variants {
		if barcode != "" && v.Barcode == barcode {
			return copyVariant(v), nil
		}
	}
	return nil, domain.NotFound("código de barras", barcode)
}

func (r *VariantRepo) Update(_ context.Context, variant *entity.Variant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.variants[variant.ID]; !ok {
		return domain.NotFound("variante", variant.ID)
	}
	if r.codeTaken(variant) {
		return domain.ErrDuplicate
	}
	r.s.variants[variant.ID] = copyVariant(variant)
	return nil
}

func (r *VariantRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Variant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Variant
	for _, v := range r.s.variants {
		if v.ProductID == productID {
			list = append(list, copyVariant(v))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return list, nil
}

// codeTaken revisa unicidad de SKU y código de barras contra las demás variantes.
func (r *VariantRepo) codeTaken(variant *entity.Variant) bool {
	for _, v := range r.s.variants {
		if v.ID == variant.ID {
			continue
		}
		if strings.EqualFold(v.SKU, variant.SKU) {
			return true
		}
		if variant.Barcode != "" && v.Barcode == variant.Barcode {
			return true
		}
	}
	return false
}

func productClash(p, other *entity.Product) bool {
	return other.ID == p.ID || (p.SKU != "" && strings.EqualFold(other.SKU, p.SKU))
}

// productConflict revisa id y SKU del producto contra el store y contra pending. Requiere s.mu.
func (s *Store) productConflict(p *entity.Product, pending []*entity.Product) error {
	for _, other := range s.products {
		if productClash(p, other) {
			return domain.ErrDuplicate
		}
	}
	for _, other := range pending {
		if productClash(p, other) {
			return domain.ErrDuplicate
		}
	}
	return nil
}

func variantClash(v, other *entity.Variant) bool {
	return other.ID == v.ID ||
		strings.EqualFold(other.SKU, v.SKU) ||
		(v.Barcode != "" && other.Barcode == v.Barcode)
}

// variantConflict exige que el producto exista (en el store o en pendingProducts) y que id, SKU y
// código de barras no se repitan. Requiere s.mu.
func (s *Store) variantConflict(v *entity.Variant, pending []*entity.Variant, pendingProducts []*entity.Product) error {
	_, ok := s.products[v.ProductID]
	for _, p := range pendingProducts {
		ok = ok || p.ID == v.ProductID
	}
	if !ok {
		return domain.NotFound("producto", v.ProductID)
	}
	for _, other := range s.variants {
		if variantClash(v, other) {
			return domain.ErrDuplicate
		}
	}
	for _, other := range pending {
		if variantClash(v, other) {
			return domain.ErrDuplicate
		}
	}
	return nil
}

// BranchRepo sucursales en memoria.
type BranchRepo struct{ s *Store }

// NewBranchRepository construye el adaptador.
func NewBranchRepository(s *Store) *BranchRepo { return &BranchRepo{s: s} }

func (r *BranchRepo) Create(_ context.Context, branch *entity.Branch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.branches[branch.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.branches[branch.ID] = copyBranch(branch)
	return nil
}

func (r *BranchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.branches[id]
	if !ok {
		return nil, domain.NotFound("sucursal", id)
	}
	return copyBranch(b), nil
}

func (r *BranchRepo) Update(_ context.Context, branch *entity.Branch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.branches[branch.ID]; !ok {
		return domain.NotFound("sucursal", branch.ID)
	}
	r.s.branches[branch.ID] = copyBranch(branch)
	return nil
}

func (r *BranchRepo) List(_ context.Context, includeInactive bool) ([]*entity.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Branch, 0, len(r.s.branches))
	for _, b := range r.s.branches {
		if b.Active || includeInactive {
			list = append(list, copyBranch(b))
		}
	}
	sortBranches(list)
	return list, nil
}

func sortBranches(list []*entity.Branch) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
