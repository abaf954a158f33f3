package engine

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/NguyenVietThuong2210/semir/internal/report"
)

// shopGradeBucket accumulates one grade row inside a shop. Customers
// are tracked as sets because one customer can buy at a shop in many
// transactions.
type shopGradeBucket struct {
	active            map[string]struct{}
	returning         map[string]struct{}
	invoices          int
	amount            decimal.Decimal
	returningInvoices int
	returningAmount   decimal.Decimal
}

func newShopGradeBucket() *shopGradeBucket {
	return &shopGradeBucket{
		active:    make(map[string]struct{}),
		returning: make(map[string]struct{}),
	}
}

// shopBucket accumulates one shop row plus its nested breakdowns.
type shopBucket struct {
	customers         map[string]struct{}
	returning         map[string]struct{}
	invoices          int
	amount            decimal.Decimal
	returningInvoices int
	returningAmount   decimal.Decimal
	anonInvoices      int
	anonAmount        decimal.Decimal
	byGrade           map[string]*shopGradeBucket
	bySeason          map[string]*seasonBucket
}

// aggregateByShop rolls the classification up per shop, with nested
// grade and season breakdowns.
//
// The shop-level returning flag comes from re-classifying the shop's
// own purchase slice. The nested season rows use the same mixed rule
// as the global season table, but with the cross-memory scoped to this
// shop's purchases only: buying at shop X last season makes you a
// returning customer of shop X, not of shop Y.
//
// Every shop emits a season row for every key in allSeasonKeys, zero
// rows included, so cross-shop comparison tables align.
func aggregateByShop(ctx context.Context, groups map[string][]Purchase, res *customerResolver, allSeasonKeys []string) ([]report.ShopStat, error) {
	buckets := make(map[string]*shopBucket)
	bucket := func(shop string) *shopBucket {
		b, ok := buckets[shop]
		if !ok {
			b = &shopBucket{
				customers: make(map[string]struct{}),
				returning: make(map[string]struct{}),
				byGrade:   make(map[string]*shopGradeBucket),
				bySeason:  make(map[string]*seasonBucket),
			}
			// All known dimension keys get buckets before accumulation.
			for _, g := range knownGrades {
				b.byGrade[g] = newShopGradeBucket()
			}
			for _, s := range allSeasonKeys {
				b.bySeason[s] = &seasonBucket{}
			}
			buckets[shop] = b
		}
		return b
	}

	for vipID, purchases := range groups {
		if vipID == SentinelVIP {
			for shop, shopPurchases := range groupByShop(purchases) {
				b := bucket(shop)
				b.anonInvoices += len(shopPurchases)
				b.anonAmount = b.anonAmount.Add(sumAmounts(shopPurchases))
				for season, sp := range groupBySeason(shopPurchases) {
					sb := b.bySeason[season]
					if sb == nil {
						sb = &seasonBucket{}
						b.bySeason[season] = sb
					}
					sb.anonInvoices += len(sp)
					sb.anonAmount = sb.anonAmount.Add(sumAmounts(sp))
				}
			}
			continue
		}

		grade, regDate, _, err := res.Resolve(ctx, vipID, purchases[0].Customer)
		if err != nil {
			return nil, err
		}

		for shop, shopPurchases := range groupByShop(purchases) {
			b := bucket(shop)
			shopSorted := sortedByDate(shopPurchases)
			shopAmt := sumAmounts(shopPurchases)

			b.customers[vipID] = struct{}{}
			b.invoices += len(shopPurchases)
			b.amount = b.amount.Add(shopAmt)

			_, returning := ClassifyReturnVisits(shopSorted, regDate)
			if returning {
				b.returning[vipID] = struct{}{}
				b.returningInvoices += len(shopPurchases)
				b.returningAmount = b.returningAmount.Add(shopAmt)
			}

			gb := b.byGrade[grade]
			if gb == nil {
				gb = newShopGradeBucket()
				b.byGrade[grade] = gb
			}
			gb.active[vipID] = struct{}{}
			gb.invoices += len(shopPurchases)
			gb.amount = gb.amount.Add(shopAmt)
			if returning {
				gb.returning[vipID] = struct{}{}
				gb.returningInvoices += len(shopPurchases)
				gb.returningAmount = gb.returningAmount.Add(shopAmt)
			}

			for season, sp := range groupBySeason(shopPurchases) {
				sb := b.bySeason[season]
				if sb == nil {
					sb = &seasonBucket{}
					b.bySeason[season] = sb
				}
				spSorted := sortedByDate(sp)
				seasonFirst := spSorted[0].Date
				amt := sumAmounts(sp)

				sb.active++
				sb.invoices += len(sp)
				sb.amount = sb.amount.Add(amt)

				// Mixed rule again, with memory scoped to this shop.
				_, retInSeason := ClassifyReturnVisits(spSorted, regDate)
				if retInSeason || hasPurchaseBefore(shopSorted, seasonFirst) {
					sb.returning++
					sb.returningInvoices += len(sp)
					sb.returningAmount = sb.returningAmount.Add(amt)
				}
			}
		}
	}

	return assembleShopStats(buckets, allSeasonKeys), nil
}

func assembleShopStats(buckets map[string]*shopBucket, allSeasonKeys []string) []report.ShopStat {
	stats := make([]report.ShopStat, 0, len(buckets))
	for shop, b := range buckets {
		grades := make([]string, 0, len(b.byGrade))
		for g := range b.byGrade {
			grades = append(grades, g)
		}
		sortGrades(grades)

		byGrade := make([]report.ShopGradeStat, 0, len(grades))
		for _, g := range grades {
			gb := b.byGrade[g]
			a, r := len(gb.active), len(gb.returning)
			byGrade = append(byGrade, report.ShopGradeStat{
				Grade:              g,
				TotalCustomers:     a,
				ReturningCustomers: r,
				ReturnRate:         rate(r, a),
				ReturningInvoices:  gb.returningInvoices,
				ReturningAmount:    money(gb.returningAmount),
				TotalInvoices:      gb.invoices,
				TotalAmount:        money(gb.amount),
			})
		}

		bySeason := make([]report.SeasonStat, 0, len(allSeasonKeys))
		for _, s := range allSeasonKeys {
			sb := b.bySeason[s]
			if sb == nil {
				sb = &seasonBucket{}
			}
			bySeason = append(bySeason, seasonStat(s, sb))
		}

		a, r := len(b.customers), len(b.returning)
		stats = append(stats, report.ShopStat{
			ShopName:              shop,
			TotalCustomers:        a,
			ReturningCustomers:    r,
			ReturnRate:            rate(r, a),
			ReturningInvoices:     b.returningInvoices,
			ReturningAmount:       money(b.returningAmount),
			TotalInvoices:         b.invoices,
			TotalAmount:           money(b.amount),
			TotalInvoicesInclAnon: b.invoices + b.anonInvoices,
			TotalAmountInclAnon:   money(b.amount.Add(b.anonAmount)),
			ByGrade:               byGrade,
			BySeason:              bySeason,
		})
	}

	// Busiest shops first; name breaks ties so output is deterministic.
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalCustomers != stats[j].TotalCustomers {
			return stats[i].TotalCustomers > stats[j].TotalCustomers
		}
		return stats[i].ShopName < stats[j].ShopName
	})
	return stats
}
