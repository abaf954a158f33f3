package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/NguyenVietThuong2210/semir/internal/report"
)

// Heuristic pattern tags attached to reconciliation records.
const (
	PatternMultiShopRegDay  = "multi-shop registration day"
	PatternRegDayOtherShops = "registration day then other shops"
	PatternRegDaySeasonLoss = "registration-day season loses one invoice"
	PatternOther            = "other"
)

// maxDetailScopes bounds the per-dimension trace on a record.
const maxDetailScopes = 3

// auditReconciliation re-derives, for every globally-returning
// customer, the shop-scoped and season-scoped classification sums and
// reports each customer whose dimension sum falls short of the global
// returning-invoice count.
//
// Read-only diagnostics: nothing here mutates the aggregation results.
// The shortfall is structural, not a defect. A customer whose first
// purchase day is split across dimension values hands each value a
// slice whose own "first visit" absorbs one invoice, so the slices sum
// below the whole.
func auditReconciliation(ctx context.Context, groups map[string][]Purchase, res *customerResolver, globalReturningInvoices int, shopStats []report.ShopStat, seasonStats []report.SeasonStat) (report.ReconciliationReport, error) {
	rec := report.ReconciliationReport{
		GlobalReturningInvoices: globalReturningInvoices,
		Shops:                   []report.ReconciliationRecord{},
		Seasons:                 []report.ReconciliationRecord{},
	}
	for _, s := range shopStats {
		rec.ShopSum += s.ReturningInvoices
	}
	for _, s := range seasonStats {
		rec.SeasonSum += s.ReturningInvoices
	}
	rec.ShopShortfall = globalReturningInvoices - rec.ShopSum
	rec.SeasonShortfall = globalReturningInvoices - rec.SeasonSum

	for vipID, purchases := range groups {
		if vipID == SentinelVIP || len(purchases) == 0 {
			continue
		}

		_, regDate, name, err := res.Resolve(ctx, vipID, purchases[0].Customer)
		if err != nil {
			return report.ReconciliationReport{}, err
		}

		sorted := sortedByDate(purchases)
		_, globalReturning := ClassifyReturnVisits(sorted, regDate)
		if !globalReturning {
			continue
		}
		globalRetInv := len(purchases)

		byShop := groupByShop(purchases)
		if r, ok := auditScopes(vipID, name, regDate, sorted, byShop, globalRetInv, shopPattern(regDate, sorted, byShop)); ok {
			rec.Shops = append(rec.Shops, r)
		}

		bySeason := groupBySeason(purchases)
		if r, ok := auditScopes(vipID, name, regDate, sorted, bySeason, globalRetInv, ""); ok {
			if r.Shortfall == 1 {
				r.Pattern = PatternRegDaySeasonLoss
			} else {
				r.Pattern = PatternOther
			}
			rec.Seasons = append(rec.Seasons, r)
		}
	}

	sortRecords(rec.Shops)
	sortRecords(rec.Seasons)
	return rec, nil
}

// auditScopes re-classifies each dimension-scoped slice and builds a
// record when the summed returning invoices undercount the global
// count. The pattern may be pre-computed by the caller.
func auditScopes(vipID, name string, regDate time.Time, sorted []Purchase, scopes map[string][]Purchase, globalRetInv int, pattern string) (report.ReconciliationRecord, bool) {
	scopeSum := 0
	for _, scoped := range scopes {
		_, returning := ClassifyReturnVisits(sortedByDate(scoped), regDate)
		if returning {
			scopeSum += len(scoped)
		}
	}

	shortfall := globalRetInv - scopeSum
	if shortfall <= 0 {
		return report.ReconciliationRecord{}, false
	}

	keys := make([]string, 0, len(scopes))
	for k := range scopes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	detail := make([]string, 0, maxDetailScopes)
	for _, k := range keys {
		if len(detail) == maxDetailScopes {
			break
		}
		scoped := scopes[k]
		_, returning := ClassifyReturnVisits(sortedByDate(scoped), regDate)
		detail = append(detail, fmt.Sprintf("%s(%d,ret=%t)", k, len(scoped), returning))
	}

	return report.ReconciliationRecord{
		VIPID:                   vipID,
		Name:                    name,
		RegistrationDate:        report.NewDate(regDate),
		TotalPurchases:          len(sorted),
		GlobalReturningInvoices: globalRetInv,
		DimensionSum:            scopeSum,
		Shortfall:               shortfall,
		Pattern:                 pattern,
		ScopeCount:              len(scopes),
		Detail:                  detail,
	}, true
}

// shopPattern tags the shop-dimension failure mode: a registration day
// split across shops, a registration-day shop followed by others, or
// anything else.
func shopPattern(regDate time.Time, sorted []Purchase, byShop map[string][]Purchase) string {
	regDayShops := make(map[string]struct{})
	regDayPurchases := 0
	for _, p := range sorted {
		if sameDay(p.Date, regDate) {
			regDayPurchases++
			regDayShops[p.Shop] = struct{}{}
		}
	}

	switch {
	case len(regDayShops) >= 2:
		return PatternMultiShopRegDay
	case regDayPurchases >= 1 && len(byShop) >= 2:
		return PatternRegDayOtherShops
	default:
		return PatternOther
	}
}

// sortRecords orders records by shortfall descending with VIP id as the
// deterministic tiebreak.
func sortRecords(records []report.ReconciliationRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Shortfall != records[j].Shortfall {
			return records[i].Shortfall > records[j].Shortfall
		}
		return records[i].VIPID < records[j].VIPID
	})
}
