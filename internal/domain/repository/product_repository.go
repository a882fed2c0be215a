package repository

import (
	"context"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Search string // coincide con nombre o SKU
	Limit  int
	Offset int
}

// ProductRepository define el puerto de persistencia para productos maestros.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	// Delete elimina el producto y sus variantes. Falla con domain.ErrProductHasStock si alguna
	// variante tiene existencia distinta de cero; la verificación y el borrado son atómicos.
	Delete(ctx context.Context, id string) error
}

// VariantRepository define el puerto de persistencia para variantes.
type VariantRepository interface {
	Create(ctx context.Context, variant *entity.Variant) error
	GetByID(ctx context.Context, id string) (*entity.Variant, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Variant, error)
	Update(ctx context.Context, variant *entity.Variant) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.Variant, error)
}
