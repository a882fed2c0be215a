package archive

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/inventory"
)

func TestJournal_WriteRead(t *testing.T) {
	price := decimal.RequireFromString("19.90")
	at := time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC)
	records := []*entity.TransactionRecord{
		{ID: "t1", VariantID: "v1", BranchID: "b1", Motive: entity.MotivePurchaseIntake, QuantityDelta: 5, ResultingQuantity: 5, UnitCost: decimal.NewFromInt(10), UserID: "u1", CreatedAt: at},
		{ID: "t2", VariantID: "v1", BranchID: "b1", Motive: entity.MotiveSale, QuantityDelta: -2, PreviousQuantity: 5, ResultingQuantity: 3, UnitSalePrice: &price, UnitCost: decimal.NewFromInt(10), UserID: "u1", CreatedAt: at.Add(time.Minute)},
	}

	var buf bytes.Buffer
	n, err := WriteJournal(&buf, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := ReadJournal(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t2", got[1].ID)
	assert.Equal(t, entity.MotiveSale, got[1].Motive)
	require.NotNil(t, got[1].UnitSalePrice)
	assert.True(t, price.Equal(*got[1].UnitSalePrice))
	assert.Nil(t, got[0].UnitSalePrice)
	assert.True(t, got[1].CreatedAt.Equal(records[1].CreatedAt))

	balances := inventory.Balances(got)
	require.Len(t, balances, 1)
	assert.Equal(t, int64(3), balances[0].Quantity)
	assert.Empty(t, balances[0].NegativeAt)
}

func TestJournal_Vacio(t *testing.T) {
	var buf bytes.Buffer
	_, err := WriteJournal(&buf, nil)
	require.NoError(t, err)

	got, err := ReadJournal(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestJournal_ArchivoCorrupto(t *testing.T) {
	_, err := ReadJournal(bytes.NewReader([]byte("no es zstd")))
	assert.Error(t, err)
}
