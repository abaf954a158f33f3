package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/NguyenVietThuong2210/semir/internal/report"
)

// gradeBucket accumulates one grade row.
type gradeBucket struct {
	active            int
	returning         int
	invoices          int
	amount            decimal.Decimal
	returningInvoices int
	returningAmount   decimal.Decimal
}

// aggregateByGrade groups the already-classified global customer
// records by normalized grade. Returning sub-totals count the full
// invoice/amount volume of globally-returning customers.
func aggregateByGrade(globals []customerGlobal, allTimeByGrade map[string]int) []report.GradeStat {
	buckets := make(map[string]*gradeBucket)
	// Known grades get buckets up front so zero rows are emitted.
	for _, g := range knownGrades {
		buckets[g] = &gradeBucket{}
	}

	for _, c := range globals {
		b, ok := buckets[c.grade]
		if !ok {
			b = &gradeBucket{}
			buckets[c.grade] = b
		}
		b.active++
		b.invoices += c.purchases
		b.amount = b.amount.Add(c.amount)
		if c.returning {
			b.returning++
			b.returningInvoices += c.purchases
			b.returningAmount = b.returningAmount.Add(c.amount)
		}
	}

	grades := make([]string, 0, len(buckets))
	for g := range buckets {
		grades = append(grades, g)
	}
	sortGrades(grades)

	stats := make([]report.GradeStat, 0, len(grades))
	for _, g := range grades {
		b := buckets[g]
		inDB := allTimeByGrade[g]
		stats = append(stats, report.GradeStat{
			Grade:              g,
			TotalCustomers:     b.active,
			TotalInDB:          inDB,
			ReturningCustomers: b.returning,
			ReturnRate:         rate(b.returning, b.active),
			ReturnRateAllTime:  rate(b.returning, inDB),
			ReturningInvoices:  b.returningInvoices,
			ReturningAmount:    money(b.returningAmount),
			TotalInvoices:      b.invoices,
			TotalAmount:        money(b.amount),
		})
	}
	return stats
}

// normalizeGradeCounts merges raw-grade counts from the customer store
// under their normalized grade names.
func normalizeGradeCounts(raw map[string]int) map[string]int {
	out := make(map[string]int, len(raw))
	for g, n := range raw {
		out[NormalizeGrade(g)] += n
	}
	return out
}

// sortGrades orders grade names by display rank, unknown grades after
// the known ones in lexical order.
func sortGrades(grades []string) {
	sort.Slice(grades, func(i, j int) bool {
		ri, iok := gradeRank[grades[i]]
		rj, jok := gradeRank[grades[j]]
		if !iok {
			ri = 99
		}
		if !jok {
			rj = 99
		}
		if ri != rj {
			return ri < rj
		}
		return grades[i] < grades[j]
	})
}
