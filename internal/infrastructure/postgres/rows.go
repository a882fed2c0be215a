package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// Filas tal como las devuelve PostgreSQL; pgxscan las llena por el tag db.

type productRow struct {
	ID        string    `db:"id"`
	SKU       string    `db:"sku"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

var productColumns = []string{"id", "COALESCE(sku, '') AS sku", "name", "created_at", "updated_at"}

func (r productRow) toEntity() *entity.Product {
	return &entity.Product{ID: r.ID, SKU: r.SKU, Name: r.Name, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

type variantRow struct {
	ID              string          `db:"id"`
	ProductID       string          `db:"product_id"`
	SKU             string          `db:"sku"`
	Barcode         string          `db:"barcode"`
	Model           string          `db:"model"`
	Color           string          `db:"color"`
	AcquisitionCost decimal.Decimal `db:"acquisition_cost"`
	LabelPrice      decimal.Decimal `db:"label_price"`
	LabelPrinted    bool            `db:"label_printed"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

var variantColumns = []string{
	"id", "product_id", "sku", "COALESCE(barcode, '') AS barcode", "model", "color",
	"acquisition_cost", "label_price", "label_printed", "created_at", "updated_at",
}

func (r variantRow) toEntity() *entity.Variant {
	return &entity.Variant{
		ID:              r.ID,
		ProductID:       r.ProductID,
		SKU:             r.SKU,
		Barcode:         r.Barcode,
		Model:           r.Model,
		Color:           r.Color,
		AcquisitionCost: r.AcquisitionCost,
		LabelPrice:      r.LabelPrice,
		LabelPrinted:    r.LabelPrinted,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type branchRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Location  string    `db:"location"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

var branchColumns = []string{"id", "name", "location", "active", "created_at", "updated_at"}

func (r branchRow) toEntity() *entity.Branch {
	return &entity.Branch{
		ID: r.ID, Name: r.Name, Location: r.Location, Active: r.Active,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type inventoryRow struct {
	VariantID string    `db:"variant_id"`
	BranchID  string    `db:"branch_id"`
	Quantity  int64     `db:"quantity"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r inventoryRow) toEntity() *entity.InventoryRecord {
	return &entity.InventoryRecord{VariantID: r.VariantID, BranchID: r.BranchID, Quantity: r.Quantity, UpdatedAt: r.UpdatedAt}
}

type inventoryItemRow struct {
	VariantID       string          `db:"variant_id"`
	BranchID        string          `db:"branch_id"`
	BranchName      string          `db:"branch_name"`
	ProductID       string          `db:"product_id"`
	ProductSKU      string          `db:"product_sku"`
	ProductName     string          `db:"product_name"`
	VariantSKU      string          `db:"variant_sku"`
	Barcode         string          `db:"barcode"`
	Model           string          `db:"model"`
	Color           string          `db:"color"`
	LabelPrice      decimal.Decimal `db:"label_price"`
	AcquisitionCost decimal.Decimal `db:"acquisition_cost"`
	Quantity        int64           `db:"quantity"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func (r inventoryItemRow) toEntity() entity.InventoryItem {
	return entity.InventoryItem(r)
}

// transactionColumns orden de inserción de stock_transactions.
var transactionColumns = []string{
	"id", "variant_id", "branch_id", "motive",
	"quantity_delta", "previous_quantity", "resulting_quantity",
	"unit_sale_price", "unit_cost",
	"variant_sku", "product_id", "product_name", "model", "color",
	"user_id", "user_name", "note", "created_at",
}

type transactionRow struct {
	ID                string           `db:"id"`
	VariantID         string           `db:"variant_id"`
	BranchID          string           `db:"branch_id"`
	Motive            string           `db:"motive"`
	QuantityDelta     int64            `db:"quantity_delta"`
	PreviousQuantity  int64            `db:"previous_quantity"`
	ResultingQuantity int64            `db:"resulting_quantity"`
	UnitSalePrice     *decimal.Decimal `db:"unit_sale_price"`
	UnitCost          decimal.Decimal  `db:"unit_cost"`
	VariantSKU        string           `db:"variant_sku"`
	ProductID         string           `db:"product_id"`
	ProductName       string           `db:"product_name"`
	Model             string           `db:"model"`
	Color             string           `db:"color"`
	UserID            string           `db:"user_id"`
	UserName          string           `db:"user_name"`
	Note              string           `db:"note"`
	CreatedAt         time.Time        `db:"created_at"`
}

func (r transactionRow) toEntity() *entity.TransactionRecord {
	return &entity.TransactionRecord{
		ID:                r.ID,
		VariantID:         r.VariantID,
		BranchID:          r.BranchID,
		Motive:            entity.Motive(r.Motive),
		QuantityDelta:     r.QuantityDelta,
		PreviousQuantity:  r.PreviousQuantity,
		ResultingQuantity: r.ResultingQuantity,
		UnitSalePrice:     r.UnitSalePrice,
		UnitCost:          r.UnitCost,
		VariantSKU:        r.VariantSKU,
		ProductID:         r.ProductID,
		ProductName:       r.ProductName,
		Model:             r.Model,
		Color:             r.Color,
		UserID:            r.UserID,
		UserName:          r.UserName,
		Note:              r.Note,
		CreatedAt:         r.CreatedAt,
	}
}
