package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

func TestMotive_SignoCoherente(t *testing.T) {
	tests := []struct {
		motive entity.Motive
		delta  int64
		ok     bool
	}{
		{entity.MotiveAdjustmentSurplus, 5, true},
		{entity.MotiveAdjustmentSurplus, -5, false},
		{entity.MotivePurchaseIntake, 1, true},
		{entity.MotiveAdjustmentShortage, -2, true},
		{entity.MotiveAdjustmentShortage, 2, false},
		{entity.MotiveDamageLoss, -1, true},
		{entity.MotiveSale, -1, true},
		{entity.MotiveSale, 1, false},
		{entity.MotiveDirectSale, -3, true},
		{entity.MotiveAdjustmentSurplus, 0, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.motive.Allows(tt.delta), "%s con delta %d", tt.motive, tt.delta)
	}
}

func TestMotive_Catalogo(t *testing.T) {
	for _, m := range entity.Motives {
		assert.True(t, m.IsValid())
		assert.NotEmpty(t, m.Label())
	}
	assert.False(t, entity.Motive("REGALO").IsValid())
	assert.Equal(t, "in", entity.MotivePurchaseIntake.Direction())
	assert.Equal(t, "out", entity.MotiveDamageLoss.Direction())
}

func TestTransactionRecord_UtilidadSoloEnVentas(t *testing.T) {
	price := decimal.NewFromInt(18)
	sale := &entity.TransactionRecord{
		Motive:        entity.MotiveSale,
		QuantityDelta: -3,
		UnitSalePrice: &price,
		UnitCost:      decimal.NewFromInt(10),
	}
	assert.Equal(t, int64(3), sale.UnitsSold())
	assert.True(t, sale.Revenue().Equal(decimal.NewFromInt(54)))
	assert.True(t, sale.Profit().Equal(decimal.NewFromInt(24)))

	adjustment := &entity.TransactionRecord{
		Motive:        entity.MotiveDamageLoss,
		QuantityDelta: -2,
		UnitCost:      decimal.NewFromInt(10),
	}
	assert.Zero(t, adjustment.UnitsSold())
	assert.True(t, adjustment.Revenue().IsZero())
	assert.True(t, adjustment.Profit().IsZero())
}

func TestVariant_PrecioMenorAlCostoSeRechaza(t *testing.T) {
	v := &entity.Variant{
		ProductID:       "p1",
		SKU:             "CAM-001-NEG",
		AcquisitionCost: decimal.NewFromInt(10),
		LabelPrice:      decimal.NewFromInt(8),
	}
	err := v.Validate()
	assert.ErrorIs(t, err, domain.ErrValidation)

	v.LabelPrice = decimal.NewFromInt(10)
	assert.NoError(t, v.Validate())
}
