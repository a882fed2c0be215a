package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity es la mayor existencia o movimiento admitido para un par.
const MaxQuantity int64 = 1_000_000_000

// StockKey identifica un par (variante, sucursal).
type StockKey struct {
	VariantID string
	BranchID  string
}

// InventoryRecord es la existencia actual de una variante en una sucursal. Nunca negativa.
type InventoryRecord struct {
	VariantID string
	BranchID  string
	Quantity  int64
	UpdatedAt time.Time
}

// Key devuelve el par que identifica el registro.
func (r *InventoryRecord) Key() StockKey {
	return StockKey{VariantID: r.VariantID, BranchID: r.BranchID}
}

// InventoryItem es un registro de inventario con los datos de exhibición de variante, producto y sucursal.
type InventoryItem struct {
	VariantID       string
	BranchID        string
	BranchName      string
	ProductID       string
	ProductSKU      string
	ProductName     string
	VariantSKU      string
	Barcode         string
	Model           string
	Color           string
	LabelPrice      decimal.Decimal
	AcquisitionCost decimal.Decimal
	Quantity        int64
	UpdatedAt       time.Time
}

// TotalValue valoriza la existencia al costo de adquisición.
func (i InventoryItem) TotalValue() decimal.Decimal {
	return i.AcquisitionCost.Mul(decimal.NewFromInt(i.Quantity))
}

// InventoryValuation resume el inventario global.
type InventoryValuation struct {
	UniqueProducts int64
	Variants       int64
	TotalUnits     int64
	TotalValue     decimal.Decimal
}

// Discrepancy es un par cuya existencia no coincide con la suma de su historial.
type Discrepancy struct {
	VariantID  string
	BranchID   string
	Quantity   int64
	JournalSum int64
}
