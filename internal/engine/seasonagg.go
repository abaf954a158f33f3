package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NguyenVietThuong2210/semir/internal/report"
)

// seasonBucket accumulates one season row, with the anonymous sentinel
// tracked in parallel rather than counted as a customer.
type seasonBucket struct {
	active            int
	returning         int
	invoices          int
	amount            decimal.Decimal
	returningInvoices int
	returningAmount   decimal.Decimal
	anonInvoices      int
	anonAmount        decimal.Decimal
}

// aggregateBySeason splits each customer's purchases into per-season
// sub-lists and classifies each sub-list independently.
//
// A customer is returning in season S when either the classifier on
// S's sub-list alone says so, or the customer has any purchase strictly
// earlier than S's earliest purchase, in any season. The second arm is
// the cross-season memory: without it a season that only sees one
// invoice of an established customer would report them as new.
func aggregateBySeason(ctx context.Context, groups map[string][]Purchase, res *customerResolver) ([]report.SeasonStat, error) {
	buckets := make(map[string]*seasonBucket)
	bucket := func(season string) *seasonBucket {
		b, ok := buckets[season]
		if !ok {
			b = &seasonBucket{}
			buckets[season] = b
		}
		return b
	}

	for vipID, purchases := range groups {
		if vipID == SentinelVIP {
			for season, sp := range groupBySeason(purchases) {
				b := bucket(season)
				b.anonInvoices += len(sp)
				b.anonAmount = b.anonAmount.Add(sumAmounts(sp))
			}
			continue
		}

		_, regDate, _, err := res.Resolve(ctx, vipID, purchases[0].Customer)
		if err != nil {
			return nil, err
		}

		allSorted := sortedByDate(purchases)

		for season, sp := range groupBySeason(purchases) {
			spSorted := sortedByDate(sp)
			seasonFirst := spSorted[0].Date

			b := bucket(season)
			amt := sumAmounts(sp)
			b.active++
			b.invoices += len(sp)
			b.amount = b.amount.Add(amt)

			_, retInSeason := ClassifyReturnVisits(spSorted, regDate)
			if retInSeason || hasPurchaseBefore(allSorted, seasonFirst) {
				b.returning++
				b.returningInvoices += len(sp)
				b.returningAmount = b.returningAmount.Add(amt)
			}
		}
	}

	labels := make([]string, 0, len(buckets))
	for s := range buckets {
		labels = append(labels, s)
	}
	sortSeasonLabels(labels)

	stats := make([]report.SeasonStat, 0, len(labels))
	for _, s := range labels {
		stats = append(stats, seasonStat(s, buckets[s]))
	}
	return stats, nil
}

func seasonStat(label string, b *seasonBucket) report.SeasonStat {
	return report.SeasonStat{
		Season:                label,
		TotalCustomers:        b.active,
		ReturningCustomers:    b.returning,
		ReturnRate:            rate(b.returning, b.active),
		ReturningInvoices:     b.returningInvoices,
		ReturningAmount:       money(b.returningAmount),
		TotalInvoices:         b.invoices,
		TotalAmount:           money(b.amount),
		TotalInvoicesInclAnon: b.invoices + b.anonInvoices,
		TotalAmountInclAnon:   money(b.amount.Add(b.anonAmount)),
	}
}

// groupBySeason partitions purchases by their precomputed season label.
func groupBySeason(ps []Purchase) map[string][]Purchase {
	out := make(map[string][]Purchase)
	for _, p := range ps {
		out[p.Season] = append(out[p.Season], p)
	}
	return out
}

// groupByShop partitions purchases by shop name.
func groupByShop(ps []Purchase) map[string][]Purchase {
	out := make(map[string][]Purchase)
	for _, p := range ps {
		out[p.Shop] = append(out[p.Shop], p)
	}
	return out
}

// hasPurchaseBefore reports whether any purchase in the date-sorted
// slice falls strictly before the cutoff.
func hasPurchaseBefore(sorted []Purchase, cutoff time.Time) bool {
	// Sorted input: the earliest purchase decides.
	return len(sorted) > 0 && sorted[0].Date.Before(cutoff)
}
