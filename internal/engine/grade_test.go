package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateByGrade(t *testing.T) {
	globals := []customerGlobal{
		{vipID: "V1", grade: GradeGold, purchases: 4, amount: decimal.RequireFromString("454.40"), returning: true},
		{vipID: "V2", grade: GradeGold, purchases: 1, amount: decimal.RequireFromString("59.90"), returning: false},
		{vipID: "V3", grade: GradeNone, purchases: 2, amount: decimal.RequireFromString("100.10"), returning: true},
	}
	allTime := map[string]int{GradeGold: 10, GradeNone: 3}

	stats := aggregateByGrade(globals, allTime)

	// Every known grade emits a row, zero rows included.
	require.Len(t, stats, len(knownGrades))
	grades := make([]string, 0, len(stats))
	for _, s := range stats {
		grades = append(grades, s.Grade)
	}
	assert.Equal(t, knownGrades, grades)

	gold := stats[3]
	assert.Equal(t, GradeGold, gold.Grade)
	assert.Equal(t, 2, gold.TotalCustomers)
	assert.Equal(t, 10, gold.TotalInDB)
	assert.Equal(t, 1, gold.ReturningCustomers)
	assert.Equal(t, 50.0, gold.ReturnRate)
	assert.Equal(t, 10.0, gold.ReturnRateAllTime)
	assert.Equal(t, 4, gold.ReturningInvoices)
	assert.Equal(t, 454.4, gold.ReturningAmount)
	assert.Equal(t, 5, gold.TotalInvoices)
	assert.Equal(t, 514.3, gold.TotalAmount)

	none := stats[0]
	assert.Equal(t, GradeNone, none.Grade)
	assert.Equal(t, 1, none.TotalCustomers)
	assert.Equal(t, 100.0, none.ReturnRate)

	silver := stats[2]
	assert.Equal(t, GradeSilver, silver.Grade)
	assert.Zero(t, silver.TotalCustomers)
	assert.Zero(t, silver.ReturnRate)
	assert.Zero(t, silver.TotalAmount)
}

func TestAggregateByGrade_UnknownGradeSortsLast(t *testing.T) {
	globals := []customerGlobal{
		{vipID: "V1", grade: "Platinum", purchases: 1, amount: decimal.New(10, 0)},
	}
	stats := aggregateByGrade(globals, nil)
	require.Len(t, stats, len(knownGrades)+1)
	assert.Equal(t, "Platinum", stats[len(stats)-1].Grade)
}

func TestNormalizeGradeCounts(t *testing.T) {
	raw := map[string]int{"Golden": 2, "gold": 1, "": 4, "Member": 5}
	got := normalizeGradeCounts(raw)
	assert.Equal(t, map[string]int{GradeGold: 3, GradeNone: 4, GradeMember: 5}, got)
}

func TestSortGrades(t *testing.T) {
	grades := []string{"Zeta", GradeDiamond, GradeNone, "Alpha", GradeMember}
	sortGrades(grades)
	assert.Equal(t, []string{GradeNone, GradeMember, GradeDiamond, "Alpha", "Zeta"}, grades)
}

func TestRateRounding(t *testing.T) {
	assert.Equal(t, 0.0, rate(1, 0))
	assert.Equal(t, 100.0, rate(3, 3))
	assert.Equal(t, 33.33, rate(1, 3))
	assert.Equal(t, 66.67, rate(2, 3))
}
