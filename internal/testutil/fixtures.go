// Package testutil provides in-memory collaborator fakes and fixture
// helpers shared by tests across packages.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NguyenVietThuong2210/semir/internal/engine"
)

// Day parses a YYYY-MM-DD date for fixtures.
func Day(t *testing.T, v string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", v, err)
	}
	return d
}

// Amount parses an exact decimal for fixtures.
func Amount(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("bad fixture amount %q: %v", v, err)
	}
	return d
}

// Txn builds one sales transaction. An empty date means unknown.
func Txn(t *testing.T, invoice, date, amount, shop, vipID string) engine.Transaction {
	t.Helper()
	var d time.Time
	if date != "" {
		d = Day(t, date)
	}
	return engine.Transaction{
		InvoiceNumber: invoice,
		SalesDate:     d,
		SalesAmount:   Amount(t, amount),
		ShopName:      shop,
		VIPID:         vipID,
	}
}

// MemorySource is an in-memory TransactionSource.
type MemorySource struct {
	Txns []engine.Transaction
}

// Transactions filters the in-memory slice the way the SQLite source
// filters its rows.
func (m *MemorySource) Transactions(_ context.Context, from, to time.Time, filter engine.ShopFilter) ([]engine.Transaction, error) {
	var out []engine.Transaction
	for _, t := range m.Txns {
		if !from.IsZero() && (t.SalesDate.IsZero() || t.SalesDate.Before(from)) {
			continue
		}
		if !to.IsZero() && (t.SalesDate.IsZero() || t.SalesDate.After(to)) {
			continue
		}
		if filter != nil && !filter.Match(t.ShopName) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// AllTransactions returns everything.
func (m *MemorySource) AllTransactions(context.Context) ([]engine.Transaction, error) {
	return m.Txns, nil
}

// MemoryCustomers is an in-memory CustomerStore. Lookups counts how
// many point lookups were issued, so tests can assert the resolver
// cache is doing its job.
type MemoryCustomers struct {
	Records map[string]engine.CustomerRecord
	Lookups int
}

// Lookup returns the record or (nil, nil) on a miss.
func (m *MemoryCustomers) Lookup(_ context.Context, vipID string) (*engine.CustomerRecord, error) {
	m.Lookups++
	rec, ok := m.Records[vipID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// GradeCounts counts records by raw grade.
func (m *MemoryCustomers) GradeCounts(context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, rec := range m.Records {
		counts[rec.GradeRaw]++
	}
	return counts, nil
}

// Counts reports totals with active meaning points > 0.
func (m *MemoryCustomers) Counts(context.Context) (engine.CustomerCounts, error) {
	var c engine.CustomerCounts
	for _, rec := range m.Records {
		c.Total++
		if rec.Points > 0 {
			c.Active++
		} else {
			c.Inactive++
		}
	}
	return c, nil
}
