package dto

import "github.com/shopspring/decimal"

// DashboardStatsDTO respuesta de GET /api/v1/dashboard/stats.
// Todas las cifras de ventas salen de la misma instantánea del historial.
type DashboardStatsDTO struct {
	Range             RangeDTO               `json:"range"`
	Inventory         InventorySummaryDTO    `json:"inventory"`
	Profit            ProfitSummaryDTO       `json:"profit"`
	TopSellers        []VariantSalesDTO      `json:"top_sellers"`
	SlowMovers        []VariantSalesDTO      `json:"slow_movers"`
	BranchPerformance []BranchPerformanceDTO `json:"branch_performance"`
	DailyTrend        []DailyTrendDTO        `json:"daily_trend"`
}

// InventorySummaryDTO valorización del inventario al costo.
type InventorySummaryDTO struct {
	UniqueProducts int64           `json:"unique_products"`
	Variants       int64           `json:"variants"`
	TotalUnits     int64           `json:"total_units"`
	TotalValue     decimal.Decimal `json:"total_value"`
}

// ProfitSummaryDTO totales de ventas del rango.
type ProfitSummaryDTO struct {
	Sales        int             `json:"sales"`
	UnitsSold    int64           `json:"units_sold"`
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
	Cost         decimal.Decimal `json:"cost"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	MarginPct    decimal.Decimal `json:"margin_pct"` // NetProfit / GrossRevenue * 100
}
