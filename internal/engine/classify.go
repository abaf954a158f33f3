package engine

import "time"

// ClassifyReturnVisits counts return-visit invoices in a date-sorted
// purchase subset against a reference date (the customer's registration
// date).
//
// Rule, counted in INVOICES, not unique days:
//
//   - reference date present and equal to the subset's first purchase
//     date: the first-day invoice is the first visit, every other
//     invoice is a return. returnVisits = n - 1.
//   - otherwise: the customer was already established before this
//     subset begins, so every invoice is a return. returnVisits = n.
//
// The same rule runs on the customer's entire history and, separately,
// on every dimension-scoped slice. Because a dimension slice has its
// own first purchase date, the slice-level results can legitimately sum
// below the global result; the reconciliation auditor reports exactly
// that gap. Do not change this rule in one scope without the others.
func ClassifyReturnVisits(purchasesSorted []Purchase, refDate time.Time) (returnVisits int, isReturning bool) {
	n := len(purchasesSorted)
	if n == 0 {
		return 0, false
	}

	firstDate := purchasesSorted[0].Date

	if sameDay(refDate, firstDate) {
		returnVisits = n - 1
	} else {
		returnVisits = n
	}

	return returnVisits, returnVisits > 0
}
