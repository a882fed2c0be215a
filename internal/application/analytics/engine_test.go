package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

// ── Fakes ─────────────────────────────────────────────────────────────────────

type fakeSnapshots struct {
	records  []*entity.TransactionRecord
	branches []*entity.Branch
}

func (f *fakeSnapshots) Snapshot(_ context.Context, from, to *time.Time) (*repository.JournalSnapshot, error) {
	snap := &repository.JournalSnapshot{Branches: f.branches, TakenAt: time.Now()}
	seen := map[string]bool{}
	for _, rec := range f.records {
		if !seen[rec.VariantID] {
			seen[rec.VariantID] = true
			snap.History = append(snap.History, repository.VariantRef{VariantID: rec.VariantID, VariantSKU: rec.VariantSKU})
		}
		if from != nil && rec.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !rec.CreatedAt.Before(*to) {
			continue
		}
		snap.Records = append(snap.Records, rec)
	}
	return snap, nil
}

func (f *fakeSnapshots) Balances(context.Context) (map[entity.StockKey]int64, map[entity.StockKey]int64, error) {
	return nil, nil, nil
}

type fakeInventory struct{ repository.InventoryRepository }

func (fakeInventory) Valuation(context.Context) (entity.InventoryValuation, error) {
	return entity.InventoryValuation{UniqueProducts: 2, Variants: 3, TotalUnits: 7, TotalValue: decimal.RequireFromString("70.004")}, nil
}

var day1 = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func saleRec(variant, branch string, qty int64, price, cost int64, at time.Time) *entity.TransactionRecord {
	p := decimal.NewFromInt(price)
	return &entity.TransactionRecord{
		ID: variant + branch + at.String(), VariantID: variant, BranchID: branch, VariantSKU: "SKU-" + variant,
		Motive: entity.MotiveSale, QuantityDelta: -qty, UnitSalePrice: &p, UnitCost: decimal.NewFromInt(cost), CreatedAt: at,
	}
}

func adjustRec(variant, branch string, delta int64, motive entity.Motive, at time.Time) *entity.TransactionRecord {
	return &entity.TransactionRecord{
		ID: variant + branch + "adj" + at.String(), VariantID: variant, BranchID: branch, VariantSKU: "SKU-" + variant,
		Motive: motive, QuantityDelta: delta, UnitCost: decimal.NewFromInt(10), CreatedAt: at,
	}
}

func newTestEngine() (*Engine, *fakeSnapshots) {
	snaps := &fakeSnapshots{
		branches: []*entity.Branch{{ID: "b1", Name: "Centro"}, {ID: "b2", Name: "Norte"}},
		records: []*entity.TransactionRecord{
			adjustRec("v1", "b1", 10, entity.MotivePurchaseIntake, day1.Add(-time.Hour)),
			adjustRec("v2", "b1", 10, entity.MotivePurchaseIntake, day1.Add(-time.Hour)),
			adjustRec("v3", "b2", 10, entity.MotivePurchaseIntake, day1.Add(-time.Hour)),
			saleRec("v1", "b1", 3, 18, 10, day1),
			saleRec("v2", "b1", 3, 20, 10, day1.Add(time.Hour)),
			saleRec("v2", "b2", 1, 20, 10, day1.AddDate(0, 0, 1)),
			adjustRec("v1", "b1", -2, entity.MotiveDamageLoss, day1.AddDate(0, 0, 1)),
		},
	}
	return NewEngine(snaps, fakeInventory{}, time.UTC, 10), snaps
}

// ── Casos ─────────────────────────────────────────────────────────────────────

func TestTopSellers_OrdenYDesempate(t *testing.T) {
	e, snaps := newTestEngine()
	snaps.records = append(snaps.records, saleRec("v0", "b1", 4, 5, 1, day1))

	top, err := e.TopSellers(context.Background(), Range{}, 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	// v0 y v2 venden 4: desempata variant_id asc.
	assert.Equal(t, "v0", top[0].VariantID)
	assert.Equal(t, "v2", top[1].VariantID)
	assert.Equal(t, "v1", top[2].VariantID)
	assert.Equal(t, int64(3), top[2].UnitsSold)
	assert.True(t, top[1].Revenue.Equal(decimal.NewFromInt(80)))

	top, err = e.TopSellers(context.Background(), Range{}, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestSlowMovers_IncluyeVariantesSinVentas(t *testing.T) {
	e, _ := newTestEngine()
	slow, err := e.SlowMovers(context.Background(), Range{}, 0)
	require.NoError(t, err)
	require.Len(t, slow, 3)
	assert.Equal(t, "v3", slow[0].VariantID)
	assert.Equal(t, int64(0), slow[0].UnitsSold)
	assert.Equal(t, "v1", slow[1].VariantID)
	assert.Equal(t, "v2", slow[2].VariantID)
}

func TestBranchPerformance_SoloVentas(t *testing.T) {
	e, _ := newTestEngine()
	perf, err := e.BranchPerformance(context.Background(), Range{})
	require.NoError(t, err)
	require.Len(t, perf, 2)

	b1 := perf[0]
	assert.Equal(t, "b1", b1.BranchID)
	assert.Equal(t, "Centro", b1.BranchName)
	assert.Equal(t, 2, b1.TransactionCount)
	assert.Equal(t, int64(6), b1.UnitsSold)
	assert.True(t, b1.GrossRevenue.Equal(decimal.NewFromInt(114)))
	assert.True(t, b1.Cost.Equal(decimal.NewFromInt(60)))
	// La pérdida por daño no descuenta utilidad: solo cuentan las ventas.
	assert.True(t, b1.NetProfit.Equal(decimal.NewFromInt(54)))

	assert.Equal(t, "b2", perf[1].BranchID)
	assert.True(t, perf[1].NetProfit.Equal(decimal.NewFromInt(10)))
}

func TestDailyTrend_DiasConVentasEnOrden(t *testing.T) {
	e, _ := newTestEngine()
	trend, err := e.DailyTrend(context.Background(), Range{})
	require.NoError(t, err)
	require.Len(t, trend, 2)
	assert.Equal(t, "2025-03-10", trend[0].Date)
	assert.Equal(t, 2, trend[0].Sales)
	assert.Equal(t, int64(6), trend[0].UnitsSold)
	assert.Equal(t, "2025-03-11", trend[1].Date)
	assert.Equal(t, 1, trend[1].Sales)
}

func TestDailyTrend_ZonaHoraria(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	records := []*entity.TransactionRecord{
		saleRec("v1", "b1", 1, 10, 5, time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC)),
	}
	trend := dailyTrend(records, bogota)
	require.Len(t, trend, 1)
	assert.Equal(t, "2025-03-10", trend[0].Date)
}

func TestRange_FiltraPorDiaInclusivo(t *testing.T) {
	e, _ := newTestEngine()
	r, err := ParseRange("2025-03-11", "2025-03-11", time.UTC)
	require.NoError(t, err)

	top, err := e.TopSellers(context.Background(), r, 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "v2", top[0].VariantID)
	assert.Equal(t, int64(1), top[0].UnitsSold)

	slow, err := e.SlowMovers(context.Background(), r, 0)
	require.NoError(t, err)
	assert.Len(t, slow, 3, "el historial de variantes no depende del rango")
}

func TestParseRange_Errores(t *testing.T) {
	_, err := ParseRange("10/03/2025", "", time.UTC)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ParseRange("2025-03-12", "2025-03-10", time.UTC)
	assert.ErrorIs(t, err, domain.ErrValidation)

	r, err := ParseRange("", "", time.UTC)
	require.NoError(t, err)
	assert.Nil(t, r.From)
	assert.Nil(t, r.To)
}

func TestDashboard_MismaInstantanea(t *testing.T) {
	e, _ := newTestEngine()
	stats, err := e.Dashboard(context.Background(), Range{}, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Inventory.UniqueProducts)
	assert.True(t, stats.Inventory.TotalValue.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, 3, stats.Profit.Sales)
	assert.True(t, stats.Profit.GrossRevenue.Equal(decimal.NewFromInt(134)))
	assert.True(t, stats.Profit.NetProfit.Equal(decimal.NewFromInt(64)))
	assert.Len(t, stats.TopSellers, 2)
	assert.Len(t, stats.SlowMovers, 2)
	assert.Len(t, stats.BranchPerformance, 2)
	assert.Len(t, stats.DailyTrend, 2)
}

func TestFolds_Idempotentes(t *testing.T) {
	_, snaps := newTestEngine()
	snap, err := snaps.Snapshot(context.Background(), nil, nil)
	require.NoError(t, err)

	first := topSellers(snap.Records, snap.History, 10)
	second := topSellers(snap.Records, snap.History, 10)
	assert.Equal(t, first, second)
	assert.Equal(t, branchPerformance(snap.Records, snap.Branches), branchPerformance(snap.Records, snap.Branches))
	assert.Equal(t, dailyTrend(snap.Records, time.UTC), dailyTrend(snap.Records, time.UTC))
}
