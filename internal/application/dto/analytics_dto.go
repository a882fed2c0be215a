package dto

import "github.com/shopspring/decimal"

// VariantSalesDTO unidades e ingresos de una variante en el rango (top sellers / slow movers).
type VariantSalesDTO struct {
	VariantID   string          `json:"variant_id"`
	VariantSKU  string          `json:"variant_sku"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Model       string          `json:"model"`
	Color       string          `json:"color"`
	UnitsSold   int64           `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// BranchPerformanceDTO ventas agregadas de una sucursal.
type BranchPerformanceDTO struct {
	BranchID         string          `json:"branch_id"`
	BranchName       string          `json:"branch_name"`
	TransactionCount int             `json:"transaction_count"`
	UnitsSold        int64           `json:"units_sold"`
	GrossRevenue     decimal.Decimal `json:"gross_revenue"`
	Cost             decimal.Decimal `json:"cost"`
	NetProfit        decimal.Decimal `json:"net_profit"`
}

// DailyTrendDTO ventas de un día (fecha local YYYY-MM-DD).
type DailyTrendDTO struct {
	Date         string          `json:"date"`
	Sales        int             `json:"sales"`
	UnitsSold    int64           `json:"units_sold"`
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
	NetProfit    decimal.Decimal `json:"net_profit"`
}

// RangeDTO rango efectivo de una consulta; vacío = sin límite.
type RangeDTO struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}
