package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/swaggo/swag"

	"github.com/jhoicas/inventario-sucursales/internal/application/analytics"
	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/application/usecase"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC *usecase.ProductUseCase
	BranchUC  *usecase.BranchUseCase
	Recorder  *inventory.Recorder
	Ledger    *inventory.Ledger
	Engine    *analytics.Engine
	Logger    *logger.Logger
	JWTSecret string
}

// Router registra las rutas de la API bajo /api/v1.
// Lecturas: cualquier rol. Ventas: admin|vendedor. Ajustes, conteos, catálogo y sucursales: admin|bodeguero.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("http")

	api := app.Group("/api/v1")
	api.Get("/openapi.json", OpenAPI)

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	seller := RequireRole(RoleAdmin, RoleVendedor)
	stocker := RequireRole(RoleAdmin, RoleBodeguero)

	protected.Get("/motives", Motives)

	// Ventas
	salesHandler := NewSalesHandler(deps.Recorder, deps.Ledger, deps.Engine, log)
	sales := protected.Group("/sales")
	sales.Post("/", seller, salesHandler.Create)
	sales.Get("/history", salesHandler.History)

	// Inventario e historial
	inventoryHandler := NewInventoryHandler(deps.Recorder, deps.Ledger, deps.Engine, log)
	inv := protected.Group("/inventory")
	inv.Get("/", inventoryHandler.List)
	inv.Post("/adjustments", stocker, inventoryHandler.Adjust)
	inv.Post("/counts", stocker, inventoryHandler.Count)
	inv.Get("/reconcile", inventoryHandler.Reconcile)
	inv.Get("/variants/:variant_id", inventoryHandler.VariantStock)
	inv.Get("/variants/:variant_id/branches/:branch_id", inventoryHandler.Quantity)
	protected.Get("/transactions", inventoryHandler.Transactions)
	protected.Get("/transactions/:id", inventoryHandler.Transaction)

	// Sucursales
	branchHandler := NewBranchHandler(deps.BranchUC, log)
	branches := protected.Group("/branches")
	branches.Get("/", branchHandler.List)
	branches.Post("/", stocker, branchHandler.Create)
	branches.Get("/:id", branchHandler.GetByID)
	branches.Put("/:id", stocker, branchHandler.Update)
	branches.Delete("/:id", stocker, branchHandler.Deactivate)

	// Catálogo
	productHandler := NewProductHandler(deps.ProductUC, log)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", stocker, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", stocker, productHandler.Update)
	products.Delete("/:id", stocker, productHandler.Delete)
	products.Post("/:id/variants", stocker, productHandler.CreateVariant)

	variants := protected.Group("/variants")
	variants.Get("/barcode/:code", productHandler.FindByBarcode)
	variants.Get("/:id", productHandler.GetVariant)
	variants.Put("/:id", stocker, productHandler.UpdateVariant)
	variants.Post("/:id/label", stocker, productHandler.MarkLabel)

	// Analítica
	aggHandler := NewAggregationHandler(deps.Engine, log)
	agg := protected.Group("/aggregation")
	agg.Get("/top-sellers", aggHandler.TopSellers)
	agg.Get("/slow-movers", aggHandler.SlowMovers)
	agg.Get("/branch-performance", aggHandler.BranchPerformance)
	agg.Get("/daily-trend", aggHandler.DailyTrend)
	protected.Get("/dashboard/stats", aggHandler.Dashboard)
}

// OpenAPI devuelve el documento OpenAPI registrado por el paquete docs.
func OpenAPI(c *fiber.Ctx) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"code": "NOT_FOUND", "error": "documentación no registrada"})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(doc)
}
