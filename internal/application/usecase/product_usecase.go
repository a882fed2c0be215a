package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

// CatalogRecorder da de alta productos y variantes junto con su stock inicial en una sola
// transacción (inventory.Recorder).
type CatalogRecorder interface {
	CreateCatalogEntry(ctx context.Context, entry inventory.CatalogEntry, actor inventory.Actor) ([]*entity.TransactionRecord, error)
}

// ProductUseCase catálogo de productos y variantes. La existencia solo cambia vía movimientos.
type ProductUseCase struct {
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
	branchRepo  repository.BranchRepository
	catalog     CatalogRecorder
	now         func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	branchRepo repository.BranchRepository,
	catalog CatalogRecorder,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		variantRepo: variantRepo,
		branchRepo:  branchRepo,
		catalog:     catalog,
		now:         time.Now,
	}
}

// newVariant arma y valida una variante.
func (uc *ProductUseCase) newVariant(productID string, in dto.CreateVariantRequest, now time.Time) (*entity.Variant, error) {
	v := &entity.Variant{
		ID:              uuid.New().String(),
		ProductID:       productID,
		SKU:             in.SKU,
		Barcode:         in.Barcode,
		Model:           in.Model,
		Color:           in.Color,
		AcquisitionCost: in.AcquisitionCost,
		LabelPrice:      in.LabelPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	v.Normalize()
	return v, v.Validate()
}

// initialStock valida la existencia inicial pedida. 0 = sin asiento.
func (uc *ProductUseCase) initialStock(ctx context.Context, in dto.CreateVariantRequest) (int64, error) {
	qty, ok := dto.IntegerQuantity(in.InitialStock)
	if !ok || qty < 0 {
		return 0, domain.ErrInvalidQuantity
	}
	if qty == 0 {
		return 0, nil
	}
	if in.BranchID == "" {
		return 0, domain.NewValidationError("branch_id", "requerido con stock inicial")
	}
	branch, err := uc.branchRepo.GetByID(ctx, in.BranchID)
	if err != nil {
		return 0, err
	}
	if !branch.Active {
		return 0, domain.NewValidationError("branch_id", "la sucursal está inactiva")
	}
	return qty, nil
}

func prefixed(err error, prefix string) error {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	out := &domain.ValidationError{}
	for _, f := range verr.Fields {
		out.Add(prefix+f.Field, f.Message)
	}
	return out
}

// duplicateCodes revisa que SKU y código de barras no se repitan dentro de la misma solicitud.
func duplicateCodes(variants []*entity.Variant) error {
	verr := &domain.ValidationError{}
	skus := make(map[string]bool, len(variants))
	barcodes := make(map[string]bool, len(variants))
	for i, v := range variants {
		sku := strings.ToUpper(v.SKU)
		if skus[sku] {
			verr.Add(fmt.Sprintf("variants[%d].sku", i), "repetido en la solicitud")
		}
		skus[sku] = true
		if v.Barcode == "" {
			continue
		}
		if barcodes[v.Barcode] {
			verr.Add(fmt.Sprintf("variants[%d].barcode", i), "repetido en la solicitud")
		}
		barcodes[v.Barcode] = true
	}
	return verr.OrNil()
}

// CreateProduct crea el producto y sus variantes; cada variante con stock inicial > 0 genera un
// ingreso por compra. Todo se valida antes de escribir y se escribe en una sola transacción.
func (uc *ProductUseCase) CreateProduct(ctx context.Context, in dto.CreateProductRequest, actor inventory.Actor) (*dto.ProductResponse, error) {
	now := uc.now()
	product := &entity.Product{
		ID:        uuid.New().String(),
		SKU:       in.SKU,
		Name:      in.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	product.Normalize()
	if err := product.Validate(); err != nil {
		return nil, err
	}

	entry := inventory.CatalogEntry{
		Product:    product,
		NewProduct: true,
		Variants:   make([]*entity.Variant, 0, len(in.Variants)),
		Opening:    make([]inventory.OpeningStock, 0, len(in.Variants)),
	}
	for i, vin := range in.Variants {
		prefix := fmt.Sprintf("variants[%d].", i)
		v, err := uc.newVariant(product.ID, vin, now)
		if err != nil {
			return nil, prefixed(err, prefix)
		}
		qty, err := uc.initialStock(ctx, vin)
		if err != nil {
			return nil, prefixed(err, prefix)
		}
		entry.Variants = append(entry.Variants, v)
		entry.Opening = append(entry.Opening, inventory.OpeningStock{BranchID: vin.BranchID, Quantity: qty})
	}
	if err := duplicateCodes(entry.Variants); err != nil {
		return nil, err
	}

	if _, err := uc.catalog.CreateCatalogEntry(ctx, entry, actor); err != nil {
		return nil, err
	}
	return toProductResponse(product, entry.Variants), nil
}

// GetProduct devuelve el producto con sus variantes.
func (uc *ProductUseCase) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	variants, err := uc.variantRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, variants), nil
}

// UpdateProduct renombra el producto o cambia su SKU.
func (uc *ProductUseCase) UpdateProduct(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.SKU != nil {
		product.SKU = *in.SKU
	}
	product.Normalize()
	if err := product.Validate(); err != nil {
		return nil, err
	}
	product.UpdatedAt = uc.now()
	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return uc.GetProduct(ctx, id)
}

// RenameProduct cambia solo el nombre.
func (uc *ProductUseCase) RenameProduct(ctx context.Context, id, name string) (*dto.ProductResponse, error) {
	return uc.UpdateProduct(ctx, id, dto.UpdateProductRequest{Name: &name})
}

// ListProducts lista productos con búsqueda por nombre o SKU.
func (uc *ProductUseCase) ListProducts(ctx context.Context, search string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.productRepo.List(ctx, repository.ProductFilter{
		Search: strings.TrimSpace(search),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p, nil))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// DeleteProduct borra el producto y sus variantes; falla con domain.ErrProductHasStock si queda existencia.
func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id string) error {
	return uc.productRepo.Delete(ctx, id)
}

// CreateVariant agrega una variante a un producto existente.
func (uc *ProductUseCase) CreateVariant(ctx context.Context, productID string, in dto.CreateVariantRequest, actor inventory.Actor) (*dto.VariantResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	v, err := uc.newVariant(productID, in, uc.now())
	if err != nil {
		return nil, err
	}
	qty, err := uc.initialStock(ctx, in)
	if err != nil {
		return nil, err
	}
	entry := inventory.CatalogEntry{
		Product:  product,
		Variants: []*entity.Variant{v},
		Opening:  []inventory.OpeningStock{{BranchID: in.BranchID, Quantity: qty}},
	}
	if _, err := uc.catalog.CreateCatalogEntry(ctx, entry, actor); err != nil {
		return nil, err
	}
	return toVariantResponse(v), nil
}

// GetVariant obtiene una variante por ID.
func (uc *ProductUseCase) GetVariant(ctx context.Context, id string) (*dto.VariantResponse, error) {
	v, err := uc.variantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toVariantResponse(v), nil
}

// FindByBarcode busca la variante escaneada en caja.
func (uc *ProductUseCase) FindByBarcode(ctx context.Context, code string) (*dto.VariantResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.NewValidationError("barcode", "requerido")
	}
	v, err := uc.variantRepo.GetByBarcode(ctx, code)
	if err != nil {
		return nil, err
	}
	return toVariantResponse(v), nil
}

// UpdateVariant cambia códigos, atributos y precios. Las ventas en curso no se bloquean por esto:
// cada venta trae su propio precio y copia el costo vigente al registrarse.
func (uc *ProductUseCase) UpdateVariant(ctx context.Context, id string, in dto.UpdateVariantRequest) (*dto.VariantResponse, error) {
	v, err := uc.variantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.SKU != nil {
		v.SKU = *in.SKU
	}
	if in.Barcode != nil {
		v.Barcode = *in.Barcode
	}
	if in.Model != nil {
		v.Model = *in.Model
	}
	if in.Color != nil {
		v.Color = *in.Color
	}
	if in.AcquisitionCost != nil {
		v.AcquisitionCost = *in.AcquisitionCost
	}
	if in.LabelPrice != nil {
		v.LabelPrice = *in.LabelPrice
	}
	v.Normalize()
	if err := v.Validate(); err != nil {
		return nil, err
	}
	v.UpdatedAt = uc.now()
	if err := uc.variantRepo.Update(ctx, v); err != nil {
		return nil, err
	}
	return toVariantResponse(v), nil
}

// MarkLabelPrinted marca la etiqueta de la variante como impresa.
func (uc *ProductUseCase) MarkLabelPrinted(ctx context.Context, id string) (*dto.VariantResponse, error) {
	v, err := uc.variantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.LabelPrinted {
		v.LabelPrinted = true
		v.UpdatedAt = uc.now()
		if err := uc.variantRepo.Update(ctx, v); err != nil {
			return nil, err
		}
	}
	return toVariantResponse(v), nil
}

func toProductResponse(p *entity.Product, variants []*entity.Variant) *dto.ProductResponse {
	out := &dto.ProductResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, v := range variants {
		out.Variants = append(out.Variants, *toVariantResponse(v))
	}
	return out
}

func toVariantResponse(v *entity.Variant) *dto.VariantResponse {
	return &dto.VariantResponse{
		ID:              v.ID,
		ProductID:       v.ProductID,
		SKU:             v.SKU,
		Barcode:         v.Barcode,
		Model:           v.Model,
		Color:           v.Color,
		AcquisitionCost: v.AcquisitionCost,
		LabelPrice:      v.LabelPrice,
		LabelPrinted:    v.LabelPrinted,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}
