package inventory_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/inventory"
)

func TestApplyDelta(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := &entity.InventoryRecord{VariantID: "v1", BranchID: "b1", Quantity: 5}

	prev, err := inventory.ApplyDelta(rec, -3, now)
	require.NoError(t, err)
	assert.Equal(t, int64(5), prev)
	assert.Equal(t, int64(2), rec.Quantity)
	assert.Equal(t, now, rec.UpdatedAt)

	_, err = inventory.ApplyDelta(rec, -3, now.Add(time.Minute))
	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(2), stockErr.Available)
	assert.Equal(t, int64(3), stockErr.Requested)
	assert.Equal(t, int64(2), rec.Quantity, "un rechazo no modifica la existencia")
	assert.Equal(t, now, rec.UpdatedAt)

	_, err = inventory.ApplyDelta(rec, 0, now)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestApplyDelta_FueraDeRango(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		start int64
		delta int64
	}{
		{"delta máximo de int64", 5, math.MaxInt64},
		{"delta mínimo de int64", 5, math.MinInt64},
		{"delta sobre el máximo", 0, entity.MaxQuantity + 1},
		{"resultado sobre el máximo", entity.MaxQuantity - 2, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &entity.InventoryRecord{VariantID: "v1", BranchID: "b1", Quantity: tc.start}
			prev, err := inventory.ApplyDelta(rec, tc.delta, now)
			require.ErrorIs(t, err, domain.ErrInvalidQuantity)
			var stockErr *domain.StockError
			assert.False(t, errors.As(err, &stockErr))
			assert.Equal(t, tc.start, prev)
			assert.Equal(t, tc.start, rec.Quantity)
		})
	}

	rec := &entity.InventoryRecord{VariantID: "v1", BranchID: "b1", Quantity: entity.MaxQuantity - 3}
	_, err := inventory.ApplyDelta(rec, 3, now)
	require.NoError(t, err)
	assert.Equal(t, entity.MaxQuantity, rec.Quantity)
}

func TestBalances_PliegaHistorial(t *testing.T) {
	records := []*entity.TransactionRecord{
		{ID: "t1", VariantID: "v2", BranchID: "b1", QuantityDelta: 5},
		{ID: "t2", VariantID: "v1", BranchID: "b1", QuantityDelta: 4},
		{ID: "t3", VariantID: "v2", BranchID: "b1", QuantityDelta: -3},
		{ID: "t4", VariantID: "v1", BranchID: "b1", QuantityDelta: -6},
	}
	balances := inventory.Balances(records)
	require.Len(t, balances, 2)

	assert.Equal(t, "v1", balances[0].Key.VariantID)
	assert.Equal(t, int64(-2), balances[0].Quantity)
	assert.Equal(t, "t4", balances[0].NegativeAt)

	assert.Equal(t, int64(2), balances[1].Quantity)
	assert.Equal(t, 2, balances[1].Records)
	assert.Empty(t, balances[1].NegativeAt)
}

func TestReconcile(t *testing.T) {
	k1 := entity.StockKey{VariantID: "v1", BranchID: "b1"}
	k2 := entity.StockKey{VariantID: "v2", BranchID: "b1"}
	k3 := entity.StockKey{VariantID: "v3", BranchID: "b1"}

	diffs := inventory.Reconcile(
		map[entity.StockKey]int64{k1: 3, k2: 1},
		map[entity.StockKey]int64{k1: 3, k3: 4},
	)
	require.Len(t, diffs, 2)
	assert.Equal(t, entity.Discrepancy{VariantID: "v2", BranchID: "b1", Quantity: 1, JournalSum: 0}, diffs[0])
	assert.Equal(t, entity.Discrepancy{VariantID: "v3", BranchID: "b1", Quantity: 0, JournalSum: 4}, diffs[1])

	assert.Empty(t, inventory.Reconcile(map[entity.StockKey]int64{k1: 2}, map[entity.StockKey]int64{k1: 2}))
}
