package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateBySeason_CrossSeasonMemory(t *testing.T) {
	// V1 buys in February, registers in May, and buys once on the
	// registration day. The May slice alone classifies as not
	// returning (single invoice on the registration day), but the
	// February history makes the May season returning anyway.
	store := &fakeCustomerStore{records: map[string]CustomerRecord{
		"V1": {VIPID: "V1", Name: "Alice", GradeRaw: "Gold", RegistrationDate: day(t, "2025-05-15")},
	}}
	res := newCustomerResolver(store)

	groups := map[string][]Purchase{
		"V1": {
			purchase(t, "2025-02-10", "100.00", "Semir Plaza"),
			purchase(t, "2025-05-15", "50.00", "Semir Plaza"),
		},
	}

	stats, err := aggregateBySeason(context.Background(), groups, res)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	feb := stats[0]
	assert.Equal(t, "M2-4 2025", feb.Season)
	assert.Equal(t, 1, feb.TotalCustomers)
	assert.Equal(t, 1, feb.ReturningCustomers, "off registration day, locally returning")
	assert.Equal(t, 1, feb.TotalInvoices)
	assert.Equal(t, 100.0, feb.TotalAmount)

	may := stats[1]
	assert.Equal(t, "M5-7 2025", may.Season)
	assert.Equal(t, 1, may.TotalCustomers)
	assert.Equal(t, 1, may.ReturningCustomers)
	assert.Equal(t, 100.0, may.ReturnRate)
	assert.Equal(t, 1, may.ReturningInvoices)
	assert.Equal(t, 50.0, may.ReturningAmount)
}

func TestAggregateBySeason_RegistrationSeasonNotReturning(t *testing.T) {
	// One invoice on the registration day and nothing earlier: the
	// season is not returning under either arm of the rule.
	store := &fakeCustomerStore{records: map[string]CustomerRecord{
		"V1": {VIPID: "V1", RegistrationDate: day(t, "2025-03-01")},
	}}
	res := newCustomerResolver(store)

	groups := map[string][]Purchase{
		"V1": {purchase(t, "2025-03-01", "10.00", "Semir Plaza")},
	}

	stats, err := aggregateBySeason(context.Background(), groups, res)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].TotalCustomers)
	assert.Equal(t, 0, stats[0].ReturningCustomers)
}

func TestAggregateBySeason_LocalRuleAlone(t *testing.T) {
	// Two purchases in one season, neither on the registration day:
	// the local classifier marks the season returning by itself.
	store := &fakeCustomerStore{records: map[string]CustomerRecord{
		"V1": {VIPID: "V1", RegistrationDate: day(t, "2024-01-01")},
	}}
	res := newCustomerResolver(store)

	groups := map[string][]Purchase{
		"V1": {
			purchase(t, "2025-03-01", "10.00", "Semir Plaza"),
			purchase(t, "2025-03-05", "20.00", "Semir Plaza"),
		},
	}

	stats, err := aggregateBySeason(context.Background(), groups, res)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].ReturningCustomers)
	assert.Equal(t, 2, stats[0].ReturningInvoices)
	assert.Equal(t, 30.0, stats[0].ReturningAmount)
}

func TestAggregateBySeason_AnonymousTrackedInParallel(t *testing.T) {
	store := &fakeCustomerStore{records: map[string]CustomerRecord{
		"V1": {VIPID: "V1", RegistrationDate: day(t, "2024-01-01")},
	}}
	res := newCustomerResolver(store)

	groups := map[string][]Purchase{
		"V1":        {purchase(t, "2025-03-01", "10.00", "Semir Plaza")},
		SentinelVIP: {purchase(t, "2025-03-02", "25.00", "Semir Plaza")},
	}

	stats, err := aggregateBySeason(context.Background(), groups, res)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	s := stats[0]
	assert.Equal(t, 1, s.TotalCustomers, "sentinel is not a customer")
	assert.Equal(t, 1, s.TotalInvoices)
	assert.Equal(t, 10.0, s.TotalAmount)
	assert.Equal(t, 2, s.TotalInvoicesInclAnon)
	assert.Equal(t, 35.0, s.TotalAmountInclAnon)
}

func TestAggregateBySeason_ChronologicalOrder(t *testing.T) {
	store := &fakeCustomerStore{}
	res := newCustomerResolver(store)

	groups := map[string][]Purchase{
		SentinelVIP: {
			purchase(t, "2025-05-01", "1.00", "A"),
			purchase(t, "2024-12-25", "1.00", "A"),
			purchase(t, "2025-01-05", "1.00", "A"),
			purchase(t, "2025-03-01", "1.00", "A"),
		},
	}

	stats, err := aggregateBySeason(context.Background(), groups, res)
	require.NoError(t, err)

	labels := make([]string, 0, len(stats))
	for _, s := range stats {
		labels = append(labels, s.Season)
	}
	assert.Equal(t, []string{"M11-1 2024-2025", "M2-4 2025", "M5-7 2025"}, labels)
}

func TestHasPurchaseBefore(t *testing.T) {
	sorted := sortedByDate([]Purchase{
		purchase(t, "2025-03-01", "1.00", "A"),
		purchase(t, "2025-05-01", "1.00", "A"),
	})
	assert.True(t, hasPurchaseBefore(sorted, day(t, "2025-04-01")))
	assert.False(t, hasPurchaseBefore(sorted, day(t, "2025-03-01")), "strictly before")
	assert.False(t, hasPurchaseBefore(nil, day(t, "2025-03-01")))
}
