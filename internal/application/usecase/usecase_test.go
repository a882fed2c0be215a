package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/application/usecase"
	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
	"github.com/jhoicas/inventario-sucursales/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

var bodeguero = inventory.Actor{UserID: "u-1", Name: "Mario"}

type catalogFixture struct {
	products *usecase.ProductUseCase
	branches *usecase.BranchUseCase
	recorder *inventory.Recorder
	ledger   *inventory.Ledger
	journal  *memory.TransactionRepo
}

func newCatalog(t *testing.T) *catalogFixture {
	t.Helper()
	store := memory.NewStore(time.Second)
	productRepo := memory.NewProductRepository(store)
	variantRepo := memory.NewVariantRepository(store)
	branchRepo := memory.NewBranchRepository(store)
	recorder := inventory.NewRecorder(memory.NewTxRunner(store), variantRepo, productRepo, branchRepo,
		logger.Nop(), inventory.RecorderConfig{})
	return &catalogFixture{
		products: usecase.NewProductUseCase(productRepo, variantRepo, branchRepo, recorder),
		branches: usecase.NewBranchUseCase(branchRepo),
		recorder: recorder,
		ledger: inventory.NewLedger(memory.NewInventoryRepository(store), memory.NewTransactionRepository(store),
			memory.NewSnapshotRepository(store), variantRepo, branchRepo),
		journal: memory.NewTransactionRepository(store),
	}
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func variantIn(sku string) dto.CreateVariantRequest {
	return dto.CreateVariantRequest{
		SKU: sku, Model: "Oxford", Color: "Azul",
		AcquisitionCost: dec("10"), LabelPrice: dec("20"),
	}
}

// ── Catálogo ─────────────────────────────────────────────────────────────────

func TestCreateProduct_ConVariantesYStockInicial(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	branch, err := f.branches.Create(ctx, dto.CreateBranchRequest{Name: "Centro"})
	require.NoError(t, err)

	withStock := variantIn("cam-001-az")
	withStock.BranchID = branch.ID
	withStock.InitialStock = dec("5")
	noStock := variantIn("cam-001-ro")
	noStock.BranchID = branch.ID

	product, err := f.products.CreateProduct(ctx, dto.CreateProductRequest{
		Name:     " Camisa ",
		Variants: []dto.CreateVariantRequest{withStock, noStock},
	}, bodeguero)
	require.NoError(t, err)
	assert.Equal(t, "Camisa", product.Name)
	require.Len(t, product.Variants, 2)
	assert.Equal(t, "CAM-001-AZ", product.Variants[0].SKU)

	q, err := f.ledger.GetQuantity(ctx, product.Variants[0].ID, branch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), q)

	records, total, err := f.journal.List(ctx, repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total, "la variante sin stock no genera asiento")
	assert.Equal(t, entity.MotivePurchaseIntake, records[0].Motive)
	assert.Equal(t, "Mario", records[0].UserName)
}

func TestCreateProduct_ValidaAntesDeEscribir(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()

	bad := variantIn("X-1")
	bad.LabelPrice = dec("5")
	_, err := f.products.CreateProduct(ctx, dto.CreateProductRequest{
		Name:     "Camisa",
		Variants: []dto.CreateVariantRequest{variantIn("OK-1"), bad},
	}, bodeguero)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "variants[1].label_price", verr.Fields[0].Field)

	list, err := f.products.ListProducts(ctx, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items, "nada se escribe si una variante es inválida")

	frac := variantIn("X-2")
	frac.BranchID = "b"
	frac.InitialStock = dec("1.5")
	_, err = f.products.CreateProduct(ctx, dto.CreateProductRequest{Name: "Pantalón", Variants: []dto.CreateVariantRequest{frac}}, bodeguero)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	noBranch := variantIn("X-3")
	noBranch.InitialStock = dec("2")
	_, err = f.products.CreateProduct(ctx, dto.CreateProductRequest{Name: "Pantalón", Variants: []dto.CreateVariantRequest{noBranch}}, bodeguero)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateProduct_CodigosRepetidosEnLaSolicitud(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()

	second := variantIn("dup-1")
	second.Color = "Rojo"
	_, err := f.products.CreateProduct(ctx, dto.CreateProductRequest{
		Name:     "Camisa",
		Variants: []dto.CreateVariantRequest{variantIn("DUP-1"), second},
	}, bodeguero)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "variants[1].sku", verr.Fields[0].Field)

	a, b := variantIn("A-1"), variantIn("B-1")
	a.Barcode, b.Barcode = "770555", "770555"
	_, err = f.products.CreateProduct(ctx, dto.CreateProductRequest{
		Name:     "Camisa",
		Variants: []dto.CreateVariantRequest{a, b},
	}, bodeguero)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "variants[1].barcode", verr.Fields[0].Field)

	list, err := f.products.ListProducts(ctx, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Page.Total)
}

func TestCreateProduct_DuplicadoEnCatalogoNoDejaNada(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	branch, err := f.branches.Create(ctx, dto.CreateBranchRequest{Name: "Centro"})
	require.NoError(t, err)

	existing := variantIn("EXIST-1")
	existing.Barcode = "7709999"
	_, err = f.products.CreateProduct(ctx, dto.CreateProductRequest{
		Name: "Pantalón", Variants: []dto.CreateVariantRequest{existing},
	}, bodeguero)
	require.NoError(t, err)

	withStock := variantIn("NEW-1")
	withStock.BranchID = branch.ID
	withStock.InitialStock = dec("3")
	clash := variantIn("NEW-2")
	clash.Barcode = "7709999"
	_, err = f.products.CreateProduct(ctx, dto.CreateProductRequest{
		Name:     "Camisa",
		Variants: []dto.CreateVariantRequest{withStock, clash},
	}, bodeguero)
	require.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := f.products.ListProducts(ctx, "", dto.PageRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, list.Page.Total, "el producto rechazado no queda guardado")
	assert.Equal(t, "Pantalón", list.Items[0].Name)

	_, total, err := f.journal.List(ctx, repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, total, "el stock inicial de la primera variante no se registra")

	items, err := f.ledger.List(ctx, repository.InventoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)

	// Con el conflicto resuelto el mismo alta entra completa.
	clash.Barcode = "7708888"
	product, err := f.products.CreateProduct(ctx, dto.CreateProductRequest{
		Name:     "Camisa",
		Variants: []dto.CreateVariantRequest{withStock, clash},
	}, bodeguero)
	require.NoError(t, err)
	q, err := f.ledger.GetQuantity(ctx, product.Variants[0].ID, branch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), q)
}

func TestCreateVariant_DuplicadoNoRegistraStock(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	branch, err := f.branches.Create(ctx, dto.CreateBranchRequest{Name: "Centro"})
	require.NoError(t, err)
	product, err := f.products.CreateProduct(ctx, dto.CreateProductRequest{
		Name: "Camisa", Variants: []dto.CreateVariantRequest{variantIn("V-1")},
	}, bodeguero)
	require.NoError(t, err)

	dup := variantIn("v-1")
	dup.BranchID = branch.ID
	dup.InitialStock = dec("4")
	_, err = f.products.CreateVariant(ctx, product.ID, dup, bodeguero)
	require.ErrorIs(t, err, domain.ErrDuplicate)

	_, total, err := f.journal.List(ctx, repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	in := variantIn("V-2")
	in.BranchID = branch.ID
	in.InitialStock = dec("4")
	v, err := f.products.CreateVariant(ctx, product.ID, in, bodeguero)
	require.NoError(t, err)
	q, err := f.ledger.GetQuantity(ctx, v.ID, branch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), q)
}

func TestCreateVariant_CostoNegativoYDuplicados(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	product, err := f.products.CreateProduct(ctx, dto.CreateProductRequest{Name: "Camisa"}, bodeguero)
	require.NoError(t, err)

	neg := variantIn("N-1")
	neg.AcquisitionCost = dec("-1")
	_, err = f.products.CreateVariant(ctx, product.ID, neg, bodeguero)
	assert.ErrorIs(t, err, domain.ErrValidation)

	in := variantIn("V-1")
	in.Barcode = "7701234"
	_, err = f.products.CreateVariant(ctx, product.ID, in, bodeguero)
	require.NoError(t, err)

	dup := variantIn("v-1")
	_, err = f.products.CreateVariant(ctx, product.ID, dup, bodeguero)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.products.CreateVariant(ctx, "no-existe", variantIn("V-9"), bodeguero)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	found, err := f.products.FindByBarcode(ctx, "7701234")
	require.NoError(t, err)
	assert.Equal(t, "V-1", found.SKU)
}

func TestUpdateVariant_PrecioYEtiqueta(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	product, err := f.products.CreateProduct(ctx, dto.CreateProductRequest{
		Name: "Camisa", Variants: []dto.CreateVariantRequest{variantIn("V-1")},
	}, bodeguero)
	require.NoError(t, err)
	id := product.Variants[0].ID

	low := dec("9")
	_, err = f.products.UpdateVariant(ctx, id, dto.UpdateVariantRequest{LabelPrice: &low})
	assert.ErrorIs(t, err, domain.ErrValidation, "el precio de etiqueta no baja del costo")

	price := dec("25")
	v, err := f.products.UpdateVariant(ctx, id, dto.UpdateVariantRequest{LabelPrice: &price})
	require.NoError(t, err)
	assert.True(t, v.LabelPrice.Equal(price))

	v, err = f.products.MarkLabelPrinted(ctx, id)
	require.NoError(t, err)
	assert.True(t, v.LabelPrinted)
}

func TestDeleteProduct_ConStockSeRechaza(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	branch, err := f.branches.Create(ctx, dto.CreateBranchRequest{Name: "Centro"})
	require.NoError(t, err)

	in := variantIn("V-1")
	in.BranchID = branch.ID
	in.InitialStock = dec("2")
	product, err := f.products.CreateProduct(ctx, dto.CreateProductRequest{Name: "Camisa", Variants: []dto.CreateVariantRequest{in}}, bodeguero)
	require.NoError(t, err)
	variantID := product.Variants[0].ID

	assert.ErrorIs(t, f.products.DeleteProduct(ctx, product.ID), domain.ErrProductHasStock)

	_, err = f.recorder.RecordAdjustment(ctx, inventory.AdjustmentInput{
		VariantID: variantID, BranchID: branch.ID, Quantity: -2,
		Motive: entity.MotiveAdjustmentShortage, Actor: bodeguero,
	})
	require.NoError(t, err)

	require.NoError(t, f.products.DeleteProduct(ctx, product.ID))
	_, err = f.products.GetProduct(ctx, product.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.products.GetVariant(ctx, variantID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// El historial sobrevive al borrado y sigue conciliando.
	_, total, err := f.journal.List(ctx, repository.TransactionFilter{VariantID: variantID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	diffs, err := f.ledger.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, diffs)
}

func TestListProducts_BusquedaYPaginacion(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	for _, name := range []string{"Camisa", "Camiseta", "Pantalón"} {
		_, err := f.products.CreateProduct(ctx, dto.CreateProductRequest{Name: name}, bodeguero)
		require.NoError(t, err)
	}

	list, err := f.products.ListProducts(ctx, "cami", dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Camisa", list.Items[0].Name)

	renamed, err := f.products.RenameProduct(ctx, list.Items[0].ID, "Camisa manga larga")
	require.NoError(t, err)
	assert.Equal(t, "Camisa manga larga", renamed.Name)
}

// ── Sucursales ───────────────────────────────────────────────────────────────

func TestBranch_DesactivarNoBorra(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()

	_, err := f.branches.Create(ctx, dto.CreateBranchRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	norte, err := f.branches.Create(ctx, dto.CreateBranchRequest{Name: "Norte", Location: "Cra 7"})
	require.NoError(t, err)
	_, err = f.branches.Create(ctx, dto.CreateBranchRequest{Name: "Centro"})
	require.NoError(t, err)

	off, err := f.branches.Deactivate(ctx, norte.ID)
	require.NoError(t, err)
	assert.False(t, off.Active)

	active, err := f.branches.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active.Items, 1)
	assert.Equal(t, "Centro", active.Items[0].Name)

	all, err := f.branches.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	got, err := f.branches.GetByID(ctx, norte.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cra 7", got.Location)
}
