package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sucursales/internal/application/analytics"
	"github.com/jhoicas/inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

// InventoryHandler ajustes, conteos y consultas de existencias e historial.
type InventoryHandler struct {
	recorder *inventory.Recorder
	ledger   *inventory.Ledger
	engine   *analytics.Engine
	log      *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(recorder *inventory.Recorder, ledger *inventory.Ledger, engine *analytics.Engine, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{recorder: recorder, ledger: ledger, engine: engine, log: log}
}

// Adjust godoc
// @Summary      Registrar ajuste manual
// @Description  quantity con signo: positivo para ADJUSTMENT_SURPLUS y PURCHASE_INTAKE, negativo para ADJUSTMENT_SHORTAGE y DAMAGE_LOSS.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.AdjustmentRequest  true  "Ajuste"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	qty, err := integer("quantity", in.Delta())
	if err != nil {
		return writeError(c, h.log, err)
	}
	rec, err := h.recorder.RecordAdjustment(c.UserContext(), inventory.AdjustmentInput{
		VariantID: in.VariantID,
		BranchID:  in.BranchID,
		Quantity:  qty,
		Motive:    entity.Motive(in.MotiveCode()),
		Actor:     actor(c, in.UserID, in.UserName),
		Note:      in.Note,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransactionResponse{TransactionID: rec.ID, ResultingQuantity: rec.ResultingQuantity})
}

// Count godoc
// @Summary      Registrar conteo físico
// @Description  Registra la diferencia entre lo contado y la existencia como sobrante o faltante.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CountRequest  true  "Conteo"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/counts [post]
func (h *InventoryHandler) Count(c *fiber.Ctx) error {
	var in dto.CountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	counted, err := integer("counted_quantity", in.CountedQuantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	rec, err := h.recorder.RecordCount(c.UserContext(), inventory.CountInput{
		VariantID: in.VariantID,
		BranchID:  in.BranchID,
		Counted:   counted,
		Motive:    entity.Motive(in.Motive),
		Actor:     actor(c, in.UserID, in.UserName),
		Note:      in.Note,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransactionResponse{TransactionID: rec.ID, ResultingQuantity: rec.ResultingQuantity})
}

// List godoc
// @Summary      Listar inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id     query  string  false  "Sucursal"
// @Param        search        query  string  false  "Nombre, SKU o código de barras"
// @Param        out_of_stock  query  bool    false  "Solo variantes agotadas en todas las sucursales"
// @Param        in_stock      query  bool    false  "Solo registros con existencia"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.InventoryListResponse
// @Router       /api/v1/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	q := dto.InventoryQuery{
		PageRequest: dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)},
		BranchID:    c.Query("branch_id"),
		Search:      c.Query("search"),
		OutOfStock:  c.QueryBool("out_of_stock", false),
		InStock:     c.QueryBool("in_stock", false),
	}
	q.DefaultPage()
	items, err := h.ledger.List(c.UserContext(), repository.InventoryFilter{
		BranchID:   q.BranchID,
		Search:     q.Search,
		OutOfStock: q.OutOfStock,
		InStock:    q.InStock,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.InventoryListResponse{
		Items: make([]dto.InventoryItemResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: len(items)},
	}
	for _, it := range items {
		out.Items = append(out.Items, toInventoryItemResponse(it))
	}
	return c.JSON(out)
}

// VariantStock godoc
// @Summary      Existencia total de una variante
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        variant_id  path  string  true  "Variante"
// @Success      200  {object}  dto.VariantStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/variants/{variant_id} [get]
func (h *InventoryHandler) VariantStock(c *fiber.Ctx) error {
	stock, err := h.ledger.TotalStock(c.UserContext(), c.Params("variant_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.VariantStockResponse{
		VariantID: stock.VariantID,
		Total:     stock.Total,
		Branches:  make([]dto.BranchQuantity, 0, len(stock.Branches)),
	}
	for _, r := range stock.Branches {
		out.Branches = append(out.Branches, dto.BranchQuantity{BranchID: r.BranchID, Quantity: r.Quantity, UpdatedAt: r.UpdatedAt})
	}
	return c.JSON(out)
}

// Quantity godoc
// @Summary      Existencia de una variante en una sucursal
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        variant_id  path  string  true  "Variante"
// @Param        branch_id   path  string  true  "Sucursal"
// @Success      200  {object}  dto.QuantityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/variants/{variant_id}/branches/{branch_id} [get]
func (h *InventoryHandler) Quantity(c *fiber.Ctx) error {
	variantID, branchID := c.Params("variant_id"), c.Params("branch_id")
	qty, err := h.ledger.GetQuantity(c.UserContext(), variantID, branchID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.QuantityResponse{VariantID: variantID, BranchID: branchID, Quantity: qty})
}

// Reconcile godoc
// @Summary      Conciliar existencias contra el historial
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/v1/inventory/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	diffs, err := h.ledger.Reconcile(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.ReconcileResponse{Consistent: len(diffs) == 0, Discrepancies: make([]dto.DiscrepancyResponse, 0, len(diffs))}
	for _, d := range diffs {
		out.Discrepancies = append(out.Discrepancies, dto.DiscrepancyResponse(d))
	}
	if !out.Consistent {
		h.log.Warn().Int("discrepancies", len(diffs)).Msg("inventario inconsistente con el historial")
	}
	return c.JSON(out)
}

// Transactions godoc
// @Summary      Historial de movimientos
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        variant_id  query  string  false  "Variante"
// @Param        branch_id   query  string  false  "Sucursal"
// @Param        motive      query  string  false  "Motivos separados por coma"
// @Param        start       query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end         query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/transactions [get]
func (h *InventoryHandler) Transactions(c *fiber.Ctx) error {
	q := transactionQuery(c)
	motives, err := parseMotives(q.Motive)
	if err != nil {
		return writeError(c, h.log, err)
	}
	r, err := analytics.ParseRange(q.Start, q.End, h.engine.Location())
	if err != nil {
		return writeError(c, h.log, err)
	}
	records, total, err := h.ledger.Transactions(c.UserContext(), transactionFilter(q, r, motives))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.TransactionListResponse{
		Items: make([]dto.TransactionRecordResponse, 0, len(records)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}
	for _, rec := range records {
		out.Items = append(out.Items, toTransactionRecordResponse(rec))
	}
	return c.JSON(out)
}

// Transaction godoc
// @Summary      Obtener un movimiento
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.TransactionRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/transactions/{id} [get]
func (h *InventoryHandler) Transaction(c *fiber.Ctx) error {
	rec, err := h.ledger.Transaction(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toTransactionRecordResponse(rec))
}

// Motives godoc
// @Summary      Catálogo de motivos
// @Tags         inventory
// @Produce      json
// @Success      200  {array}  dto.MotiveResponse
// @Router       /api/v1/motives [get]
func Motives(c *fiber.Ctx) error {
	out := make([]dto.MotiveResponse, 0, len(entity.Motives))
	for _, m := range entity.Motives {
		out = append(out, toMotiveResponse(m))
	}
	return c.JSON(out)
}
