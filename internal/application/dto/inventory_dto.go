package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ── Escrituras ───────────────────────────────────────────────────────────────

// SaleRequest body de POST /api/v1/sales. UserID/UserName solo se leen cuando la API corre sin JWT.
// MotiveID es sinónimo de Motive.
type SaleRequest struct {
	VariantID     string          `json:"variant_id"`
	BranchID      string          `json:"branch_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitSalePrice decimal.Decimal `json:"unit_sale_price"`
	Motive        string          `json:"motive,omitempty"`
	MotiveID      string          `json:"motive_id,omitempty"`
	Note          string          `json:"note,omitempty"`
	UserID        string          `json:"user_id,omitempty"`
	UserName      string          `json:"user_name,omitempty"`
}

// AdjustmentRequest body de POST /api/v1/inventory/adjustments. Quantity lleva signo; SignedQuantity
// y MotiveID son sinónimos que tienen prioridad si vienen.
type AdjustmentRequest struct {
	VariantID      string           `json:"variant_id"`
	BranchID       string           `json:"branch_id"`
	Quantity       decimal.Decimal  `json:"quantity"`
	SignedQuantity *decimal.Decimal `json:"signed_quantity,omitempty"`
	Motive         string           `json:"motive"`
	MotiveID       string           `json:"motive_id,omitempty"`
	Note      string          `json:"note,omitempty"`
	UserID    string          `json:"user_id,omitempty"`
	UserName  string          `json:"user_name,omitempty"`
}

// MotiveCode motivo pedido en mayúsculas, sea por motive o por motive_id.
func (r SaleRequest) MotiveCode() string {
	return motiveCode(r.Motive, r.MotiveID)
}

// MotiveCode motivo pedido en mayúsculas, sea por motive o por motive_id.
func (r AdjustmentRequest) MotiveCode() string {
	return motiveCode(r.Motive, r.MotiveID)
}

// Delta cantidad con signo del ajuste.
func (r AdjustmentRequest) Delta() decimal.Decimal {
	if r.SignedQuantity != nil {
		return *r.SignedQuantity
	}
	return r.Quantity
}

func motiveCode(motive, motiveID string) string {
	if motiveID != "" {
		motive = motiveID
	}
	return strings.ToUpper(strings.TrimSpace(motive))
}

// CountRequest body de POST /api/v1/inventory/counts.
type CountRequest struct {
	VariantID       string          `json:"variant_id"`
	BranchID        string          `json:"branch_id"`
	CountedQuantity decimal.Decimal `json:"counted_quantity"`
	Motive          string          `json:"motive,omitempty"`
	Note            string          `json:"note,omitempty"`
	UserID          string          `json:"user_id,omitempty"`
	UserName        string          `json:"user_name,omitempty"`
}

// TransactionResponse respuesta de un movimiento registrado.
type TransactionResponse struct {
	TransactionID     string `json:"transaction_id"`
	ResultingQuantity int64  `json:"resulting_quantity"`
}

// ── Lecturas ─────────────────────────────────────────────────────────────────

// InventoryQuery filtros de GET /api/v1/inventory.
type InventoryQuery struct {
	PageRequest
	BranchID   string `query:"branch_id"`
	Search     string `query:"search"`
	OutOfStock bool   `query:"out_of_stock"`
	InStock    bool   `query:"in_stock"`
}

// InventoryItemResponse fila del listado de inventario.
type InventoryItemResponse struct {
	VariantID       string          `json:"variant_id"`
	BranchID        string          `json:"branch_id"`
	BranchName      string          `json:"branch_name"`
	ProductID       string          `json:"product_id"`
	ProductSKU      string          `json:"product_sku,omitempty"`
	ProductName     string          `json:"product_name"`
	VariantSKU      string          `json:"variant_sku"`
	Barcode         string          `json:"barcode,omitempty"`
	Model           string          `json:"model"`
	Color           string          `json:"color"`
	LabelPrice      decimal.Decimal `json:"label_price"`
	AcquisitionCost decimal.Decimal `json:"acquisition_cost"`
	Quantity        int64           `json:"quantity"`
	TotalValue      decimal.Decimal `json:"total_value"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// InventoryListResponse listado de inventario.
type InventoryListResponse struct {
	Items []InventoryItemResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// QuantityResponse existencia de un par.
type QuantityResponse struct {
	VariantID string `json:"variant_id"`
	BranchID  string `json:"branch_id"`
	Quantity  int64  `json:"quantity"`
}

// BranchQuantity existencia de una variante en una sucursal.
type BranchQuantity struct {
	BranchID  string    `json:"branch_id"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VariantStockResponse existencia total de una variante y su detalle por sucursal.
type VariantStockResponse struct {
	VariantID string           `json:"variant_id"`
	Total     int64            `json:"total"`
	Branches  []BranchQuantity `json:"branches"`
}

// TransactionQuery filtros de GET /api/v1/transactions y /sales/history.
type TransactionQuery struct {
	PageRequest
	VariantID string `query:"variant_id"`
	BranchID  string `query:"branch_id"`
	Motive    string `query:"motive"` // uno o varios separados por coma
	Start     string `query:"start"`
	End       string `query:"end"`
}

// TransactionRecordResponse asiento del historial.
type TransactionRecordResponse struct {
	ID                string           `json:"id"`
	VariantID         string           `json:"variant_id"`
	BranchID          string           `json:"branch_id"`
	Motive            string           `json:"motive"`
	MotiveLabel       string           `json:"motive_label"`
	QuantityDelta     int64            `json:"quantity_delta"`
	PreviousQuantity  int64            `json:"previous_quantity"`
	ResultingQuantity int64            `json:"resulting_quantity"`
	UnitSalePrice     *decimal.Decimal `json:"unit_sale_price,omitempty"`
	UnitCost          decimal.Decimal  `json:"unit_cost"`
	VariantSKU        string           `json:"variant_sku"`
	ProductID         string           `json:"product_id"`
	ProductName       string           `json:"product_name"`
	Model             string           `json:"model"`
	Color             string           `json:"color"`
	UserID            string           `json:"user_id"`
	UserName          string           `json:"user_name,omitempty"`
	Note              string           `json:"note,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// TransactionListResponse página del historial.
type TransactionListResponse struct {
	Items []TransactionRecordResponse `json:"items"`
	Page  PageResponse                `json:"page"`
}

// SalesHistoryLine línea del historial de ventas con su utilidad.
type SalesHistoryLine struct {
	TransactionID string          `json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
	BranchID      string          `json:"branch_id"`
	VariantID     string          `json:"variant_id"`
	VariantSKU    string          `json:"variant_sku"`
	ProductName   string          `json:"product_name"`
	Model         string          `json:"model"`
	Color         string          `json:"color"`
	Motive        string          `json:"motive"`
	Quantity      int64           `json:"quantity"`
	UnitSalePrice decimal.Decimal `json:"unit_sale_price"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Revenue       decimal.Decimal `json:"revenue"`
	Cost          decimal.Decimal `json:"cost"`
	Profit        decimal.Decimal `json:"profit"`
	UserID        string          `json:"user_id"`
	UserName      string          `json:"user_name,omitempty"`
}

// SalesHistoryResponse página del historial de ventas.
type SalesHistoryResponse struct {
	Items []SalesHistoryLine `json:"items"`
	Page  PageResponse       `json:"page"`
}

// DiscrepancyResponse par cuya existencia no coincide con su historial.
type DiscrepancyResponse struct {
	VariantID  string `json:"variant_id"`
	BranchID   string `json:"branch_id"`
	Quantity   int64  `json:"quantity"`
	JournalSum int64  `json:"journal_sum"`
}

// ReconcileResponse resultado de la conciliación.
type ReconcileResponse struct {
	Consistent    bool                  `json:"consistent"`
	Discrepancies []DiscrepancyResponse `json:"discrepancies"`
}

// MotiveResponse entrada del catálogo de motivos.
type MotiveResponse struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Direction   string `json:"direction"`
	IsSale      bool   `json:"is_sale"`
}
