package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto, opcionalmente con sus variantes.
type CreateProductRequest struct {
	SKU      string                 `json:"sku"`
	Name     string                 `json:"name"`
	Variants []CreateVariantRequest `json:"variants"`
	UserID   string                 `json:"user_id,omitempty"`
	UserName string                 `json:"user_name,omitempty"`
}

// CreateVariantRequest entrada para crear una variante. InitialStock > 0 requiere BranchID
// y se registra como ingreso por compra.
type CreateVariantRequest struct {
	SKU             string          `json:"sku"`
	Barcode         string          `json:"barcode"`
	Model           string          `json:"model"`
	Color           string          `json:"color"`
	AcquisitionCost decimal.Decimal `json:"acquisition_cost"`
	LabelPrice      decimal.Decimal `json:"label_price"`
	BranchID        string          `json:"branch_id,omitempty"`
	InitialStock    decimal.Decimal `json:"initial_stock"`
	UserID          string          `json:"user_id,omitempty"`
	UserName        string          `json:"user_name,omitempty"`
}

// UpdateProductRequest entrada para actualizar un producto.
type UpdateProductRequest struct {
	SKU  *string `json:"sku"`
	Name *string `json:"name"`
}

// UpdateVariantRequest entrada para actualizar una variante. La existencia no se edita aquí.
type UpdateVariantRequest struct {
	SKU             *string          `json:"sku"`
	Barcode         *string          `json:"barcode"`
	Model           *string          `json:"model"`
	Color           *string          `json:"color"`
	AcquisitionCost *decimal.Decimal `json:"acquisition_cost"`
	LabelPrice      *decimal.Decimal `json:"label_price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        string            `json:"id"`
	SKU       string            `json:"sku,omitempty"`
	Name      string            `json:"name"`
	Variants  []VariantResponse `json:"variants,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// VariantResponse salida de una variante.
type VariantResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	SKU             string          `json:"sku"`
	Barcode         string          `json:"barcode,omitempty"`
	Model           string          `json:"model"`
	Color           string          `json:"color"`
	AcquisitionCost decimal.Decimal `json:"acquisition_cost"`
	LabelPrice      decimal.Decimal `json:"label_price"`
	LabelPrinted    bool            `json:"label_printed"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
