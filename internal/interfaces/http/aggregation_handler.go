package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sucursales/internal/application/analytics"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

// AggregationHandler rankings, desempeño por sucursal, tendencia diaria y dashboard.
type AggregationHandler struct {
	engine *analytics.Engine
	log    *logger.Logger
}

// NewAggregationHandler construye el handler.
func NewAggregationHandler(engine *analytics.Engine, log *logger.Logger) *AggregationHandler {
	return &AggregationHandler{engine: engine, log: log}
}

func (h *AggregationHandler) rangeOf(c *fiber.Ctx) (analytics.Range, error) {
	return analytics.ParseRange(c.Query("start"), c.Query("end"), h.engine.Location())
}

// TopSellers godoc
// @Summary      Variantes más vendidas
// @Tags         aggregation
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end    query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Param        limit  query  int     false  "Tamaño del ranking"  default(10)
// @Success      200  {array}   dto.VariantSalesDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/aggregation/top-sellers [get]
func (h *AggregationHandler) TopSellers(c *fiber.Ctx) error {
	r, err := h.rangeOf(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.engine.TopSellers(c.UserContext(), r, c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// SlowMovers godoc
// @Summary      Variantes con menos ventas
// @Description  Incluye variantes con historial y cero ventas en el rango.
// @Tags         aggregation
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end    query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Param        limit  query  int     false  "Tamaño del ranking"  default(10)
// @Success      200  {array}   dto.VariantSalesDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/aggregation/slow-movers [get]
func (h *AggregationHandler) SlowMovers(c *fiber.Ctx) error {
	r, err := h.rangeOf(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.engine.SlowMovers(c.UserContext(), r, c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// BranchPerformance godoc
// @Summary      Desempeño por sucursal
// @Tags         aggregation
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end    query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Success      200  {array}   dto.BranchPerformanceDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/aggregation/branch-performance [get]
func (h *AggregationHandler) BranchPerformance(c *fiber.Ctx) error {
	r, err := h.rangeOf(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.engine.BranchPerformance(c.UserContext(), r)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// DailyTrend godoc
// @Summary      Ventas por día
// @Tags         aggregation
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end    query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Success      200  {array}   dto.DailyTrendDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/aggregation/daily-trend [get]
func (h *AggregationHandler) DailyTrend(c *fiber.Ctx) error {
	r, err := h.rangeOf(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.engine.DailyTrend(c.UserContext(), r)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Dashboard godoc
// @Summary      Dashboard de ventas e inventario
// @Description  Todas las cifras del rango salen de una sola instantánea del historial.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end    query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Param        limit  query  int     false  "Tamaño de los rankings"  default(10)
// @Success      200  {object}  dto.DashboardStatsDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/dashboard/stats [get]
func (h *AggregationHandler) Dashboard(c *fiber.Ctx) error {
	r, err := h.rangeOf(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.engine.Dashboard(c.UserContext(), r, c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
