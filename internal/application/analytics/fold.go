package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

// Folds puros sobre los asientos de una instantánea. No modifican la entrada.

type variantTotals struct {
	units   int64
	revenue decimal.Decimal
}

func salesByVariant(records []*entity.TransactionRecord) map[string]*variantTotals {
	out := make(map[string]*variantTotals)
	for _, rec := range records {
		if !rec.IsSale() {
			continue
		}
		t, ok := out[rec.VariantID]
		if !ok {
			t = &variantTotals{revenue: decimal.Zero}
			out[rec.VariantID] = t
		}
		t.units += rec.UnitsSold()
		t.revenue = t.revenue.Add(rec.Revenue())
	}
	return out
}

func variantDTO(ref repository.VariantRef, t *variantTotals) dto.VariantSalesDTO {
	out := dto.VariantSalesDTO{
		VariantID:   ref.VariantID,
		VariantSKU:  ref.VariantSKU,
		ProductID:   ref.ProductID,
		ProductName: ref.ProductName,
		Model:       ref.Model,
		Color:       ref.Color,
		Revenue:     decimal.Zero,
	}
	if t != nil {
		out.UnitsSold = t.units
		out.Revenue = t.revenue.Round(2)
	}
	return out
}

func refsByVariant(history []repository.VariantRef) map[string]repository.VariantRef {
	out := make(map[string]repository.VariantRef, len(history))
	for _, ref := range history {
		out[ref.VariantID] = ref
	}
	return out
}

// topSellers: variantes con ventas en el rango, unidades desc y variant_id asc.
func topSellers(records []*entity.TransactionRecord, history []repository.VariantRef, n int) []dto.VariantSalesDTO {
	totals := salesByVariant(records)
	refs := refsByVariant(history)
	list := make([]dto.VariantSalesDTO, 0, len(totals))
	for id, t := range totals {
		ref, ok := refs[id]
		if !ok {
			ref = repository.VariantRef{VariantID: id}
		}
		list = append(list, variantDTO(ref, t))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].UnitsSold != list[j].UnitsSold {
			return list[i].UnitsSold > list[j].UnitsSold
		}
		return list[i].VariantID < list[j].VariantID
	})
	return head(list, n)
}

// slowMovers: toda variante con historial, aunque no venda en el rango; unidades asc y variant_id asc.
func slowMovers(records []*entity.TransactionRecord, history []repository.VariantRef, n int) []dto.VariantSalesDTO {
	totals := salesByVariant(records)
	list := make([]dto.VariantSalesDTO, 0, len(history))
	for _, ref := range history {
		list = append(list, variantDTO(ref, totals[ref.VariantID]))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].UnitsSold != list[j].UnitsSold {
			return list[i].UnitsSold < list[j].UnitsSold
		}
		return list[i].VariantID < list[j].VariantID
	})
	return head(list, n)
}

// branchPerformance: sucursales con ventas en el rango, ingreso bruto desc y branch_id asc.
func branchPerformance(records []*entity.TransactionRecord, branches []*entity.Branch) []dto.BranchPerformanceDTO {
	names := make(map[string]string, len(branches))
	for _, b := range branches {
		names[b.ID] = b.Name
	}
	byBranch := make(map[string]*dto.BranchPerformanceDTO)
	for _, rec := range records {
		if !rec.IsSale() {
			continue
		}
		p, ok := byBranch[rec.BranchID]
		if !ok {
			p = &dto.BranchPerformanceDTO{
				BranchID:     rec.BranchID,
				BranchName:   names[rec.BranchID],
				GrossRevenue: decimal.Zero,
				Cost:         decimal.Zero,
				NetProfit:    decimal.Zero,
			}
			byBranch[rec.BranchID] = p
		}
		p.TransactionCount++
		p.UnitsSold += rec.UnitsSold()
		p.GrossRevenue = p.GrossRevenue.Add(rec.Revenue())
		p.Cost = p.Cost.Add(rec.Cost())
		p.NetProfit = p.NetProfit.Add(rec.Profit())
	}
	list := make([]dto.BranchPerformanceDTO, 0, len(byBranch))
	for _, p := range byBranch {
		p.GrossRevenue = p.GrossRevenue.Round(2)
		p.Cost = p.Cost.Round(2)
		p.NetProfit = p.NetProfit.Round(2)
		list = append(list, *p)
	}
	sort.Slice(list, func(i, j int) bool {
		if c := list[i].GrossRevenue.Cmp(list[j].GrossRevenue); c != 0 {
			return c > 0
		}
		return list[i].BranchID < list[j].BranchID
	})
	return list
}

// dailyTrend: un punto por día local con al menos una venta, en orden de fecha.
func dailyTrend(records []*entity.TransactionRecord, loc *time.Location) []dto.DailyTrendDTO {
	byDay := make(map[string]*dto.DailyTrendDTO)
	for _, rec := range records {
		if !rec.IsSale() {
			continue
		}
		day := rec.CreatedAt.In(loc).Format(dateLayout)
		d, ok := byDay[day]
		if !ok {
			d = &dto.DailyTrendDTO{Date: day, GrossRevenue: decimal.Zero, NetProfit: decimal.Zero}
			byDay[day] = d
		}
		d.Sales++
		d.UnitsSold += rec.UnitsSold()
		d.GrossRevenue = d.GrossRevenue.Add(rec.Revenue())
		d.NetProfit = d.NetProfit.Add(rec.Profit())
	}
	list := make([]dto.DailyTrendDTO, 0, len(byDay))
	for _, d := range byDay {
		d.GrossRevenue = d.GrossRevenue.Round(2)
		d.NetProfit = d.NetProfit.Round(2)
		list = append(list, *d)
	}
	// YYYY-MM-DD ordena lexicográficamente igual que cronológicamente.
	sort.Slice(list, func(i, j int) bool { return list[i].Date < list[j].Date })
	return list
}

func profitSummary(records []*entity.TransactionRecord) dto.ProfitSummaryDTO {
	out := dto.ProfitSummaryDTO{
		GrossRevenue: decimal.Zero,
		Cost:         decimal.Zero,
		NetProfit:    decimal.Zero,
		MarginPct:    decimal.Zero,
	}
	for _, rec := range records {
		if !rec.IsSale() {
			continue
		}
		out.Sales++
		out.UnitsSold += rec.UnitsSold()
		out.GrossRevenue = out.GrossRevenue.Add(rec.Revenue())
		out.Cost = out.Cost.Add(rec.Cost())
		out.NetProfit = out.NetProfit.Add(rec.Profit())
	}
	if out.GrossRevenue.IsPositive() {
		out.MarginPct = out.NetProfit.Div(out.GrossRevenue).Mul(decimal.NewFromInt(100)).Round(2)
	}
	out.GrossRevenue = out.GrossRevenue.Round(2)
	out.Cost = out.Cost.Round(2)
	out.NetProfit = out.NetProfit.Round(2)
	return out
}

func head[T any](list []T, n int) []T {
	if n > 0 && len(list) > n {
		return list[:n]
	}
	return list
}
