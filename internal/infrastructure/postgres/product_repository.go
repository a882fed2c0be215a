package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.VariantRepository = (*VariantRepo)(nil)
)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (id, sku, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		product.ID, nullIfEmpty(product.SKU), product.Name, product.CreatedAt, product.UpdatedAt,
	)
	return mapError("insert product", err)
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	sql, args, err := psql.Select(productColumns...).From("products").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var row productRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.NotFound("producto", id)
		}
		return nil, notFoundOr(mapError("get product", err), "producto", id)
	}
	return row.toEntity(), nil
}

// Update actualiza nombre y SKU.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET sku = $2, name = $3, updated_at = $4
		WHERE id = $1`,
		product.ID, nullIfEmpty(product.SKU), product.Name, product.UpdatedAt,
	)
	if err != nil {
		return mapError("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("producto", product.ID)
	}
	return nil
}

// List lista productos por nombre con búsqueda y paginación; devuelve también el total.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int, error) {
	where := squirrel.And{}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{squirrel.ILike{"name": like}, squirrel.ILike{"sku": like}})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("products").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	q := psql.Select(productColumns...).From("products").Where(where).OrderBy("name", "id")
	q = page(q, filter.Limit, filter.Offset)
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var rows []productRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	list := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, total, nil
}

// Delete bloquea producto, variantes y existencias; si todo está en cero borra el producto
// (variantes e inventario caen en cascada). El historial no tiene FK y se conserva.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete product: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked string
	if err := tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
		if pgxscan.NotFound(err) {
			return domain.NotFound("producto", id)
		}
		return notFoundOr(mapError("lock product", err), "producto", id)
	}
	// Con las variantes bloqueadas, un movimiento concurrente falla por FK en vez de crear existencia.
	if _, err := tx.Exec(ctx, `SELECT id FROM variants WHERE product_id = $1 FOR UPDATE`, id); err != nil {
		return mapError("lock variants", err)
	}
	var quantities []int64
	if err := pgxscan.Select(ctx, tx, &quantities, `
		SELECT i.quantity FROM inventory i
		JOIN variants v ON v.id = i.variant_id
		WHERE v.product_id = $1
		FOR UPDATE OF i`, id); err != nil {
		return mapError("lock inventory", err)
	}
	for _, q := range quantities {
		if q != 0 {
			return domain.ErrProductHasStock
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return mapError("delete product", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit delete product", err)
	}
	return nil
}

// VariantRepo implementación del puerto VariantRepository sobre PostgreSQL.
type VariantRepo struct {
	q Querier
}

// NewVariantRepository construye el adaptador de variantes. Pasar pool o tx (Querier).
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

// Create persiste una variante; SKU y código de barras duplicados devuelven domain.ErrDuplicate.
func (r *VariantRepo) Create(ctx context.Context, v *entity.Variant) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO variants (id, product_id, sku, barcode, model, color, acquisition_cost, label_price, label_printed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		v.ID, v.ProductID, v.SKU, nullIfEmpty(v.Barcode), v.Model, v.Color,
		v.AcquisitionCost, v.LabelPrice, v.LabelPrinted, v.CreatedAt, v.UpdatedAt,
	)
	return mapError("insert variant", err)
}

// GetByID obtiene una variante por ID.
func (r *VariantRepo) GetByID(ctx context.Context, id string) (*entity.Variant, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id}, id)
}

// GetByBarcode busca la variante por código de barras.
func (r *VariantRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Variant, error) {
	return r.getBy(ctx, squirrel.Eq{"barcode": barcode}, barcode)
}

func (r *VariantRepo) getBy(ctx context.Context, where squirrel.Eq, key string) (*entity.Variant, error) {
	sql, args, err := psql.Select(variantColumns...).From("variants").Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	var row variantRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.NotFound("variante", key)
		}
		return nil, notFoundOr(mapError("get variant", err), "variante", key)
	}
	return row.toEntity(), nil
}

// Update actualiza códigos, atributos, precios y marca de etiqueta.
func (r *VariantRepo) Update(ctx context.Context, v *entity.Variant) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE variants SET sku = $2, barcode = $3, model = $4, color = $5,
			acquisition_cost = $6, label_price = $7, label_printed = $8, updated_at = $9
		WHERE id = $1`,
		v.ID, v.SKU, nullIfEmpty(v.Barcode), v.Model, v.Color,
		v.AcquisitionCost, v.LabelPrice, v.LabelPrinted, v.UpdatedAt,
	)
	if err != nil {
		return mapError("update variant", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("variante", v.ID)
	}
	return nil
}

// ListByProduct lista las variantes de un producto ordenadas por SKU.
func (r *VariantRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Variant, error) {
	sql, args, err := psql.Select(variantColumns...).From("variants").
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("sku").
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []variantRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, notFoundOr(mapError("list variants", err), "producto", productID)
	}
	list := make([]*entity.Variant, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, nil
}
