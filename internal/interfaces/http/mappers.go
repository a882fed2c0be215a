package http

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/application/analytics"
	"github.com/jhoicas/inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

// integer convierte una cantidad del body a entero; con decimales o fuera de rango es ErrInvalidQuantity.
func integer(field string, d decimal.Decimal) (int64, error) {
	n, ok := dto.IntegerQuantity(d)
	if !ok {
		return 0, fmt.Errorf("%w: %s debe ser un entero de valor absoluto hasta %d", domain.ErrInvalidQuantity, field, entity.MaxQuantity)
	}
	return n, nil
}

// parseMotives interpreta una lista separada por comas; cada motivo debe existir.
func parseMotives(raw string) ([]entity.Motive, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []entity.Motive
	for _, part := range strings.Split(raw, ",") {
		m := entity.Motive(strings.ToUpper(strings.TrimSpace(part)))
		if !m.IsValid() {
			return nil, fmt.Errorf("%w: %q no existe", domain.ErrInvalidMotive, part)
		}
		out = append(out, m)
	}
	return out, nil
}

func transactionFilter(q dto.TransactionQuery, r analytics.Range, motives []entity.Motive) repository.TransactionFilter {
	return repository.TransactionFilter{
		VariantID: q.VariantID,
		BranchID:  q.BranchID,
		Motives:   motives,
		From:      r.From,
		To:        r.To,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
}

func toTransactionRecordResponse(r *entity.TransactionRecord) dto.TransactionRecordResponse {
	return dto.TransactionRecordResponse{
		ID:                r.ID,
		VariantID:         r.VariantID,
		BranchID:          r.BranchID,
		Motive:            string(r.Motive),
		MotiveLabel:       r.Motive.Label(),
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

func toSalesHistoryLine(r *entity.TransactionRecord) dto.SalesHistoryLine {
	line := dto.SalesHistoryLine{
		TransactionID: r.ID,
		CreatedAt:     r.CreatedAt,
		BranchID:      r.BranchID,
		VariantID:     r.VariantID,
		VariantSKU:    r.VariantSKU,
		ProductName:   r.ProductName,
		Model:         r.Model,
		Color:         r.Color,
		Motive:        string(r.Motive),
		Quantity:      r.UnitsSold(),
		UnitCost:      r.UnitCost,
		Revenue:       r.Revenue().Round(2),
		Cost:          r.Cost().Round(2),
		Profit:        r.Profit().Round(2),
		UserID:        r.UserID,
		UserName:      r.UserName,
	}
	if r.UnitSalePrice != nil {
		line.UnitSalePrice = *r.UnitSalePrice
	}
	return line
}

func toInventoryItemResponse(it entity.InventoryItem) dto.InventoryItemResponse {
	return dto.InventoryItemResponse{
		VariantID:       it.VariantID,
		BranchID:        it.BranchID,
		BranchName:      it.BranchName,
		ProductID:       it.ProductID,
		ProductSKU:      it.ProductSKU,
		ProductName:     it.ProductName,
		VariantSKU:      it.VariantSKU,
		Barcode:         it.Barcode,
		Model:           it.Model,
		Color:           it.Color,
		LabelPrice:      it.LabelPrice,
		AcquisitionCost: it.AcquisitionCost,
		Quantity:        it.Quantity,
		TotalValue:      it.TotalValue(),
		UpdatedAt:       it.UpdatedAt,
	}
}

func toMotiveResponse(m entity.Motive) dto.MotiveResponse {
	return dto.MotiveResponse{
		Code:        string(m),
		Description: m.Label(),
		Direction:   m.Direction(),
		IsSale:      m.IsSale(),
	}
}
