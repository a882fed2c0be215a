package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord es un asiento inmutable del historial de stock. Las correcciones son asientos nuevos.
// Los datos de variante y producto se copian al escribir para que el historial no dependa del catálogo vivo.
type TransactionRecord struct {
	ID                string
	VariantID         string
	BranchID          string
	Motive            Motive
	QuantityDelta     int64
	PreviousQuantity  int64
	ResultingQuantity int64
	UnitSalePrice     *decimal.Decimal // solo en ventas
	UnitCost          decimal.Decimal  // costo de adquisición al momento del movimiento
	VariantSKU        string
	ProductID         string
	ProductName       string
	Model             string
	Color             string
	UserID            string
	UserName          string
	Note              string
	CreatedAt         time.Time
}

// Key devuelve el par (variante, sucursal) del asiento.
func (r *TransactionRecord) Key() StockKey {
	return StockKey{VariantID: r.VariantID, BranchID: r.BranchID}
}

// IsSale indica si el asiento cuenta para ingresos y utilidad.
func (r *TransactionRecord) IsSale() bool {
	return r.Motive.IsSale() && r.UnitSalePrice != nil
}

// UnitsSold devuelve las unidades vendidas; 0 si no es venta.
func (r *TransactionRecord) UnitsSold() int64 {
	if !r.IsSale() {
		return 0
	}
	return -r.QuantityDelta
}

// Revenue devuelve precio × unidades; 0 si no es venta.
func (r *TransactionRecord) Revenue() decimal.Decimal {
	if !r.IsSale() {
		return decimal.Zero
	}
	return r.UnitSalePrice.Mul(decimal.NewFromInt(r.UnitsSold()))
}

// Cost devuelve costo × unidades vendidas; 0 si no es venta.
func (r *TransactionRecord) Cost() decimal.Decimal {
	if !r.IsSale() {
		return decimal.Zero
	}
	return r.UnitCost.Mul(decimal.NewFromInt(r.UnitsSold()))
}

// Profit devuelve (precio − costo) × unidades; 0 si no es venta.
func (r *TransactionRecord) Profit() decimal.Decimal {
	return r.Revenue().Sub(r.Cost())
}
