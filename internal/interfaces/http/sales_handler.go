package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sucursales/internal/application/analytics"
	"github.com/jhoicas/inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

// SalesHandler registro e historial de ventas.
type SalesHandler struct {
	recorder *inventory.Recorder
	ledger   *inventory.Ledger
	engine   *analytics.Engine
	log      *logger.Logger
}

// NewSalesHandler construye el handler.
func NewSalesHandler(recorder *inventory.Recorder, ledger *inventory.Ledger, engine *analytics.Engine, log *logger.Logger) *SalesHandler {
	return &SalesHandler{recorder: recorder, ledger: ledger, engine: engine, log: log}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta la cantidad vendida de la sucursal y agrega el asiento al historial.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SaleRequest  true  "Venta"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/sales [post]
func (h *SalesHandler) Create(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	qty, err := integer("quantity", in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	rec, err := h.recorder.RecordSale(c.UserContext(), inventory.SaleInput{
		VariantID:     in.VariantID,
		BranchID:      in.BranchID,
		Quantity:      qty,
		UnitSalePrice: in.UnitSalePrice,
		Motive:        entity.Motive(in.MotiveCode()),
		Actor:         actor(c, in.UserID, in.UserName),
		Note:          in.Note,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransactionResponse{
		TransactionID:     rec.ID,
		ResultingQuantity: rec.ResultingQuantity,
	})
}

// History godoc
// @Summary      Historial de ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        branch_id   query  string  false  "Sucursal"
// @Param        variant_id  query  string  false  "Variante"
// @Param        start       query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end         query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SalesHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/sales/history [get]
func (h *SalesHandler) History(c *fiber.Ctx) error {
	q := transactionQuery(c)
	r, err := analytics.ParseRange(q.Start, q.End, h.engine.Location())
	if err != nil {
		return writeError(c, h.log, err)
	}
	records, total, err := h.ledger.Transactions(c.UserContext(),
		transactionFilter(q, r, []entity.Motive{entity.MotiveSale, entity.MotiveDirectSale}))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.SalesHistoryResponse{
		Items: make([]dto.SalesHistoryLine, 0, len(records)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}
	for _, rec := range records {
		out.Items = append(out.Items, toSalesHistoryLine(rec))
	}
	return c.JSON(out)
}

func transactionQuery(c *fiber.Ctx) dto.TransactionQuery {
	q := dto.TransactionQuery{
		PageRequest: dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)},
		VariantID:   c.Query("variant_id"),
		BranchID:    c.Query("branch_id"),
		Motive:      c.Query("motive"),
		Start:       c.Query("start"),
		End:         c.Query("end"),
	}
	q.DefaultPage()
	return q
}
