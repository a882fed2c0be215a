package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

const (
	defaultTopN = 10
	maxTopN     = 200
)

// Engine calcula rankings y tendencias de ventas sobre el historial.
type Engine struct {
	snapshotRepo  repository.SnapshotRepository
	inventoryRepo repository.InventoryRepository
	loc           *time.Location
	topN          int
}

// NewEngine construye el motor. loc define el día calendario de las tendencias; topN el tamaño por defecto
// de los rankings.
func NewEngine(snapshotRepo repository.SnapshotRepository, inventoryRepo repository.InventoryRepository, loc *time.Location, topN int) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if topN <= 0 {
		topN = defaultTopN
	}
	return &Engine{snapshotRepo: snapshotRepo, inventoryRepo: inventoryRepo, loc: loc, topN: topN}
}

// Location zona horaria de los rangos.
func (e *Engine) Location() *time.Location { return e.loc }

func (e *Engine) limit(n int) int {
	switch {
	case n <= 0:
		return e.topN
	case n > maxTopN:
		return maxTopN
	}
	return n
}

// TopSellers variantes más vendidas del rango.
func (e *Engine) TopSellers(ctx context.Context, r Range, n int) ([]dto.VariantSalesDTO, error) {
	snap, err := e.snapshotRepo.Snapshot(ctx, r.From, r.To)
	if err != nil {
		return nil, err
	}
	return topSellers(snap.Records, snap.History, e.limit(n)), nil
}

// SlowMovers variantes con historial que menos vendieron en el rango.
func (e *Engine) SlowMovers(ctx context.Context, r Range, n int) ([]dto.VariantSalesDTO, error) {
	snap, err := e.snapshotRepo.Snapshot(ctx, r.From, r.To)
	if err != nil {
		return nil, err
	}
	return slowMovers(snap.Records, snap.History, e.limit(n)), nil
}

// BranchPerformance ventas por sucursal en el rango.
func (e *Engine) BranchPerformance(ctx context.Context, r Range) ([]dto.BranchPerformanceDTO, error) {
	snap, err := e.snapshotRepo.Snapshot(ctx, r.From, r.To)
	if err != nil {
		return nil, err
	}
	return branchPerformance(snap.Records, snap.Branches), nil
}

// DailyTrend ventas por día en el rango.
func (e *Engine) DailyTrend(ctx context.Context, r Range) ([]dto.DailyTrendDTO, error) {
	snap, err := e.snapshotRepo.Snapshot(ctx, r.From, r.To)
	if err != nil {
		return nil, err
	}
	return dailyTrend(snap.Records, e.loc), nil
}

// Dashboard arma el resumen completo: valorización del inventario y los cuatro folds
// calculados sobre la misma instantánea. Instantánea y valorización se leen en paralelo.
func (e *Engine) Dashboard(ctx context.Context, r Range, n int) (*dto.DashboardStatsDTO, error) {
	var (
		snap      *repository.JournalSnapshot
		valuation entity.InventoryValuation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = e.snapshotRepo.Snapshot(gctx, r.From, r.To)
		return err
	})
	g.Go(func() error {
		var err error
		valuation, err = e.inventoryRepo.Valuation(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n = e.limit(n)
	out := &dto.DashboardStatsDTO{
		Range: dto.RangeDTO{Start: r.Start, End: r.End},
		Inventory: dto.InventorySummaryDTO{
			UniqueProducts: valuation.UniqueProducts,
			Variants:       valuation.Variants,
			TotalUnits:     valuation.TotalUnits,
			TotalValue:     valuation.TotalValue.Round(2),
		},
	}
	out.Profit = profitSummary(snap.Records)
	out.TopSellers = topSellers(snap.Records, snap.History, n)
	out.SlowMovers = slowMovers(snap.Records, snap.History, n)
	out.BranchPerformance = branchPerformance(snap.Records, snap.Branches)
	out.DailyTrend = dailyTrend(snap.Records, e.loc)
	return out, nil
}
