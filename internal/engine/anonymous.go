package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/NguyenVietThuong2210/semir/internal/report"
)

// anonymousStats builds the buyer-without-info block: in-period totals
// with their share of the including-anonymous period volume, the
// unfiltered all-time totals, and a per-shop breakdown.
func anonymousStats(periodPurchases []Purchase, allTxns []Transaction, periodInvoicesInclAnon int, periodAmountInclAnon decimal.Decimal) report.AnonymousStats {
	periodAmount := sumAmounts(periodPurchases)

	var allTimeInvoices int
	allTimeAmount := decimal.Zero
	for _, t := range allTxns {
		if NormalizeVIPID(t.VIPID) != SentinelVIP {
			continue
		}
		allTimeInvoices++
		allTimeAmount = allTimeAmount.Add(t.SalesAmount)
	}

	type shopAccum struct {
		invoices int
		amount   decimal.Decimal
	}
	byShop := make(map[string]*shopAccum)
	for _, p := range periodPurchases {
		a, ok := byShop[p.Shop]
		if !ok {
			a = &shopAccum{}
			byShop[p.Shop] = a
		}
		a.invoices++
		a.amount = a.amount.Add(p.Amount)
	}

	shops := make([]string, 0, len(byShop))
	for s := range byShop {
		shops = append(shops, s)
	}
	sort.Strings(shops)

	shopStats := make([]report.AnonymousShopStat, 0, len(shops))
	for _, s := range shops {
		a := byShop[s]
		shopStats = append(shopStats, report.AnonymousShopStat{
			ShopName:            s,
			Invoices:            a.invoices,
			Amount:              money(a.amount),
			PctOfPeriodInvoices: rate(a.invoices, periodInvoicesInclAnon),
			PctOfPeriodAmount:   amountPct(a.amount, periodAmountInclAnon),
		})
	}

	return report.AnonymousStats{
		Period: report.AnonymousPeriod{
			TotalInvoices:    len(periodPurchases),
			TotalAmount:      money(periodAmount),
			PctOfAllInvoices: rate(len(periodPurchases), periodInvoicesInclAnon),
			PctOfAllAmount:   amountPct(periodAmount, periodAmountInclAnon),
		},
		AllTime: report.AnonymousAllTime{
			TotalInvoices: allTimeInvoices,
			TotalAmount:   money(allTimeAmount),
		},
		ByShop: shopStats,
	}
}
