package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

// Actor usuario que origina el movimiento.
type Actor struct {
	UserID string
	Name   string
}

// SaleInput entrada de RecordSale. Motive vacío usa el motivo de venta configurado.
type SaleInput struct {
	VariantID     string
	BranchID      string
	Quantity      int64
	UnitSalePrice decimal.Decimal
	Motive        entity.Motive
	Actor         Actor
	Note          string
}

// AdjustmentInput entrada de RecordAdjustment. Quantity lleva signo.
type AdjustmentInput struct {
	VariantID string
	BranchID  string
	Quantity  int64
	Motive    entity.Motive
	Actor     Actor
	Note      string
}

// CountInput entrada de RecordCount: conteo físico de un par.
// Motive vacío elige sobrante o faltante según el signo de la diferencia.
type CountInput struct {
	VariantID string
	BranchID  string
	Counted   int64
	Motive    entity.Motive
	Actor     Actor
	Note      string
}

// RecorderConfig opciones del registrador.
type RecorderConfig struct {
	SaleMotive entity.Motive // SALE o DIRECT_SALE
}

// Recorder es el único punto de entrada de los movimientos de stock: valida la regla de cada motivo,
// bloquea el par, aplica el delta y agrega el asiento en la misma transacción.
type Recorder struct {
	txRunner    TxRunner
	variantRepo repository.VariantRepository
	productRepo repository.ProductRepository
	branchRepo  repository.BranchRepository
	log         *logger.Logger
	saleMotive  entity.Motive
	now         func() time.Time
}

// NewRecorder construye el caso de uso.
func NewRecorder(
	txRunner TxRunner,
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	log *logger.Logger,
	cfg RecorderConfig,
) *Recorder {
	saleMotive := cfg.SaleMotive
	if !saleMotive.IsSale() {
		saleMotive = entity.MotiveSale
	}
	return &Recorder{
		txRunner:    txRunner,
		variantRepo: variantRepo,
		productRepo: productRepo,
		branchRepo:  branchRepo,
		log:         log.Component("recorder"),
		saleMotive:  saleMotive,
		now:         time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *Recorder) SetClock(now func() time.Time) {
	uc.now = now
}

// RecordSale registra una venta: delta = -Quantity.
func (uc *Recorder) RecordSale(ctx context.Context, in SaleInput) (*entity.TransactionRecord, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.UnitSalePrice.IsNegative() {
		return nil, domain.NewValidationError("unit_sale_price", "no puede ser negativo")
	}
	motive := in.Motive
	if motive == "" {
		motive = uc.saleMotive
	}
	if !motive.IsSale() {
		return nil, fmt.Errorf("%w: %s no es un motivo de venta", domain.ErrInvalidMotive, motive)
	}
	price := in.UnitSalePrice
	return uc.record(ctx, movement{
		variantID: in.VariantID,
		branchID:  in.BranchID,
		motive:    motive,
		delta:     -in.Quantity,
		price:     &price,
		actor:     in.Actor,
		note:      in.Note,
	})
}

// RecordAdjustment registra un ajuste manual; el signo debe coincidir con el motivo.
func (uc *Recorder) RecordAdjustment(ctx context.Context, in AdjustmentInput) (*entity.TransactionRecord, error) {
	if in.Quantity == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if err := checkAdjustmentMotive(in.Motive, in.Quantity); err != nil {
		return nil, err
	}
	return uc.record(ctx, movement{
		variantID: in.VariantID,
		branchID:  in.BranchID,
		motive:    in.Motive,
		delta:     in.Quantity,
		actor:     in.Actor,
		note:      in.Note,
	})
}

// RecordInitialStock registra la existencia inicial de una variante recién creada como ingreso por compra.
func (uc *Recorder) RecordInitialStock(ctx context.Context, variantID, branchID string, quantity int64, actor Actor) (*entity.TransactionRecord, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	return uc.record(ctx, movement{
		variantID: variantID,
		branchID:  branchID,
		motive:    entity.MotivePurchaseIntake,
		delta:     quantity,
		actor:     actor,
		note:      "stock inicial",
	})
}

// OpeningStock existencia inicial de una variante nueva. Quantity 0 no genera asiento.
type OpeningStock struct {
	BranchID string
	Quantity int64
}

// CatalogEntry alta de catálogo. Con NewProduct el producto también se crea; si no, ya existe.
// Opening va alineado con Variants.
type CatalogEntry struct {
	Product    *entity.Product
	NewProduct bool
	Variants   []*entity.Variant
	Opening    []OpeningStock
}

type openingMovement struct {
	variant *entity.Variant
	m       movement
}

// CreateCatalogEntry da de alta el producto y sus variantes y registra el stock inicial de cada una
// como ingreso por compra en una sola transacción: si algo falla no queda nada escrito.
func (uc *Recorder) CreateCatalogEntry(ctx context.Context, entry CatalogEntry, actor Actor) ([]*entity.TransactionRecord, error) {
	if len(entry.Opening) != len(entry.Variants) {
		return nil, fmt.Errorf("alta de catálogo: %d variantes y %d existencias iniciales", len(entry.Variants), len(entry.Opening))
	}
	var pending []openingMovement
	checked := make(map[string]bool)
	for i, v := range entry.Variants {
		o := entry.Opening[i]
		if o.Quantity < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if o.Quantity == 0 {
			continue
		}
		m := movement{
			variantID: v.ID,
			branchID:  o.BranchID,
			motive:    entity.MotivePurchaseIntake,
			delta:     o.Quantity,
			actor:     actor,
			note:      "stock inicial",
		}
		if err := m.validate(); err != nil {
			return nil, err
		}
		if !checked[o.BranchID] {
			if err := uc.activeBranch(ctx, o.BranchID); err != nil {
				return nil, err
			}
			checked[o.BranchID] = true
		}
		pending = append(pending, openingMovement{variant: v, m: m})
	}

	var records []*entity.TransactionRecord
	err := uc.txRunner.Run(ctx, func(tx repository.LedgerTx) error {
		records = records[:0]
		if entry.NewProduct {
			if err := tx.Catalog.CreateProduct(ctx, entry.Product); err != nil {
				return fmt.Errorf("producto %s: %w", entry.Product.Name, err)
			}
		}
		for _, v := range entry.Variants {
			if err := tx.Catalog.CreateVariant(ctx, v); err != nil {
				return fmt.Errorf("variante %s: %w", v.SKU, err)
			}
		}
		for _, p := range pending {
			rec, err := uc.apply(ctx, tx, p.m, p.variant, entry.Product)
			if err != nil {
				return fmt.Errorf("stock inicial %s: %w", p.variant.SKU, err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		ev := uc.log.Debug()
		if !isBusinessError(err) {
			ev = uc.log.Error()
		}
		ev.Err(err).Str("product_id", entry.Product.ID).Int("variants", len(entry.Variants)).Msg("alta de catálogo rechazada")
		return nil, err
	}
	for _, rec := range records {
		uc.logRecorded(rec)
	}
	return records, nil
}

// RecordCount registra un conteo físico: el delta es la diferencia contra la existencia bloqueada.
func (uc *Recorder) RecordCount(ctx context.Context, in CountInput) (*entity.TransactionRecord, error) {
	if in.Counted < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.Motive != "" && (!in.Motive.IsValid() || in.Motive.IsSale()) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidMotive, in.Motive)
	}
	return uc.record(ctx, movement{
		variantID: in.VariantID,
		branchID:  in.BranchID,
		motive:    in.Motive,
		counted:   &in.Counted,
		actor:     in.Actor,
		note:      in.Note,
	})
}

func checkAdjustmentMotive(motive entity.Motive, delta int64) error {
	if !motive.IsValid() {
		return fmt.Errorf("%w: %q no existe", domain.ErrInvalidMotive, motive)
	}
	if motive.IsSale() {
		return fmt.Errorf("%w: las ventas se registran por /sales", domain.ErrInvalidMotive)
	}
	if !motive.Allows(delta) {
		return fmt.Errorf("%w: %s no admite cantidad %d", domain.ErrInvalidMotive, motive, delta)
	}
	return nil
}

// movement es la forma común de todos los movimientos. counted != nil indica un conteo físico.
type movement struct {
	variantID string
	branchID  string
	motive    entity.Motive
	delta     int64
	counted   *int64
	price     *decimal.Decimal
	actor     Actor
	note      string
}

// validate revisa los campos comunes de un movimiento.
func (m movement) validate() error {
	verr := &domain.ValidationError{}
	if m.variantID == "" {
		verr.Add("variant_id", "requerido")
	}
	if m.branchID == "" {
		verr.Add("branch_id", "requerido")
	}
	if m.actor.UserID == "" {
		verr.Add("user_id", "requerido")
	}
	return verr.OrNil()
}

func (uc *Recorder) activeBranch(ctx context.Context, id string) error {
	branch, err := uc.branchRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !branch.Active {
		return domain.NewValidationError("branch_id", "la sucursal está inactiva")
	}
	return nil
}

// record: validar → bloquear par → leer existencia → verificar → (aplicar delta, agregar asiento) → devolver.
func (uc *Recorder) record(ctx context.Context, m movement) (*entity.TransactionRecord, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	variant, err := uc.variantRepo.GetByID(ctx, m.variantID)
	if err != nil {
		return nil, err
	}
	product, err := uc.productRepo.GetByID(ctx, variant.ProductID)
	if err != nil {
		return nil, err
	}
	if err := uc.activeBranch(ctx, m.branchID); err != nil {
		return nil, err
	}

	var rec *entity.TransactionRecord
	err = uc.txRunner.Run(ctx, func(tx repository.LedgerTx) error {
		var err error
		rec, err = uc.apply(ctx, tx, m, variant, product)
		return err
	})
	if err != nil {
		uc.logRejection(m, err)
		return nil, err
	}
	uc.logRecorded(rec)
	return rec, nil
}

// apply corre dentro de la transacción: bloquea el par, aplica el delta y agrega el asiento.
func (uc *Recorder) apply(ctx context.Context, tx repository.LedgerTx, m movement, variant *entity.Variant, product *entity.Product) (*entity.TransactionRecord, error) {
	stock, err := tx.Stock.GetForUpdate(ctx, m.variantID, m.branchID)
	if err != nil {
		return nil, err
	}
	delta, motive := m.delta, m.motive
	if m.counted != nil {
		delta = *m.counted - stock.Quantity
		if delta == 0 {
			return nil, fmt.Errorf("%w: el conteo coincide con la existencia", domain.ErrInvalidQuantity)
		}
		if motive == "" {
			motive = entity.MotiveAdjustmentSurplus
			if delta < 0 {
				motive = entity.MotiveAdjustmentShortage
			}
		}
		if !motive.Allows(delta) {
			return nil, fmt.Errorf("%w: %s no admite cantidad %d", domain.ErrInvalidMotive, motive, delta)
		}
	}

	now := uc.now()
	prev, err := inventory.ApplyDelta(stock, delta, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Stock.Upsert(ctx, stock); err != nil {
		return nil, err
	}
	rec := &entity.TransactionRecord{
		ID:                uuid.New().String(),
		VariantID:         m.variantID,
		BranchID:          m.branchID,
		Motive:            motive,
		QuantityDelta:     delta,
		PreviousQuantity:  prev,
		ResultingQuantity: stock.Quantity,
		UnitSalePrice:     m.price,
		UnitCost:          variant.AcquisitionCost,
		VariantSKU:        variant.SKU,
		ProductID:         product.ID,
		ProductName:       product.Name,
		Model:             variant.Model,
		Color:             variant.Color,
		UserID:            m.actor.UserID,
		UserName:          m.actor.Name,
		Note:              m.note,
		CreatedAt:         now,
	}
	if err := tx.Journal.Append(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (uc *Recorder) logRecorded(rec *entity.TransactionRecord) {
	uc.log.Info().
		Str("transaction_id", rec.ID).
		Str("variant_id", rec.VariantID).
		Str("branch_id", rec.BranchID).
		Str("motive", string(rec.Motive)).
		Int64("delta", rec.QuantityDelta).
		Int64("resulting_quantity", rec.ResultingQuantity).
		Msg("movimiento registrado")
}

func (uc *Recorder) logRejection(m movement, err error) {
	ev := uc.log.Debug()
	if !isBusinessError(err) {
		ev = uc.log.Error()
	}
	ev.Err(err).
		Str("variant_id", m.variantID).
		Str("branch_id", m.branchID).
		Str("motive", string(m.motive)).
		Msg("movimiento rechazado")
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrInsufficientStock,
		domain.ErrInvalidQuantity,
		domain.ErrInvalidMotive,
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrDuplicate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
