package engine

import "sort"

// GroupPurchases buckets raw transactions by normalized VIP key and
// derives one Purchase per transaction. Pure transform: missing shop
// names default to UnknownShop, the season label is computed once here,
// and the anonymous sentinel keeps no customer reference.
func GroupPurchases(txns []Transaction) map[string][]Purchase {
	groups := make(map[string][]Purchase)

	for _, t := range txns {
		key := NormalizeVIPID(t.VIPID)

		shop := t.ShopName
		if shop == "" {
			shop = UnknownShop
		}

		cust := t.Customer
		if key == SentinelVIP {
			cust = nil
		}

		groups[key] = append(groups[key], Purchase{
			Date:     t.SalesDate,
			Invoice:  t.InvoiceNumber,
			Amount:   t.SalesAmount,
			Shop:     shop,
			Customer: cust,
			Season:   SeasonLabel(t.SalesDate),
		})
	}

	return groups
}

// sortedByDate returns a date-ascending copy of a purchase slice.
// Classification requires sorted input; callers never mutate the
// original grouping.
func sortedByDate(ps []Purchase) []Purchase {
	out := make([]Purchase, len(ps))
	copy(out, ps)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
