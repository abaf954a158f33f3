package engine

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SentinelVIP is the collapsed customer key for transactions with no
// identified loyalty member. It is excluded from every customer-level
// metric and tracked in the parallel including-anonymous totals.
const SentinelVIP = "0"

// UnknownShop is the default shop name for transactions without one.
const UnknownShop = "Unknown Shop"

// Transaction is one raw sales record from the transaction source,
// with the customer row already joined in when the source has it.
type Transaction struct {
	InvoiceNumber string
	SalesDate     time.Time // zero when the source date is null/unparseable
	SalesAmount   decimal.Decimal
	ShopName      string
	VIPID         string
	Customer      *CustomerRecord // nil when not linked
}

// CustomerRecord is one row of the external customer store.
type CustomerRecord struct {
	VIPID            string
	Name             string
	GradeRaw         string
	RegistrationDate time.Time // zero when unknown
	Points           int64
}

// CustomerCounts are the database-wide customer totals used by the
// overview block. Active means points > 0.
type CustomerCounts struct {
	Total    int
	Active   int
	Inactive int
}

// Purchase is the immutable per-invoice record the engine works on,
// derived 1:1 from a Transaction at grouping time.
type Purchase struct {
	Date     time.Time
	Invoice  string
	Amount   decimal.Decimal
	Shop     string
	Customer *CustomerRecord
	Season   string
}

// TransactionSource is the external transaction collaborator.
// Implementations return transactions ordered by sales date.
type TransactionSource interface {
	// Transactions returns the period's transactions, bounded by from/to
	// when non-zero, restricted by filter when non-nil.
	Transactions(ctx context.Context, from, to time.Time, filter ShopFilter) ([]Transaction, error)

	// AllTransactions returns every transaction regardless of period or
	// filter. Used only for the all-time anonymous-buyer block.
	AllTransactions(ctx context.Context) ([]Transaction, error)
}

// CustomerStore is the external customer collaborator.
type CustomerStore interface {
	// Lookup returns the customer for a VIP id, or (nil, nil) on a miss.
	// A miss is not an error: the resolver degrades to defaults.
	Lookup(ctx context.Context, vipID string) (*CustomerRecord, error)

	// GradeCounts returns all-time customer counts keyed by raw grade.
	// The engine normalizes and merges the keys.
	GradeCounts(ctx context.Context) (map[string]int, error)

	// Counts returns the database-wide customer totals.
	Counts(ctx context.Context) (CustomerCounts, error)
}

// ShopFilter restricts a transaction query to a set of shops.
// A nil ShopFilter matches everything.
type ShopFilter interface {
	Match(shopName string) bool
}

// NormalizeVIPID collapses blank, "0", and null-like identifiers to the
// anonymous sentinel key. Every code path that partitions by customer
// must use this, including the all-time anonymous scan.
func NormalizeVIPID(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" || v == "0" || v == "None" {
		return SentinelVIP
	}
	return v
}

// sameDay reports whether two dates fall on the same calendar day.
// Zero times never match anything.
func sameDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// sumAmounts adds the amounts of a purchase slice exactly.
func sumAmounts(ps []Purchase) decimal.Decimal {
	total := decimal.Zero
	for _, p := range ps {
		total = total.Add(p.Amount)
	}
	return total
}
