package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NguyenVietThuong2210/semir/internal/report"
)

// Params select the period and optional shop-group scope of a run.
// Zero From/To mean an unbounded period on that side.
type Params struct {
	From      time.Time
	To        time.Time
	ShopGroup string // name from the shop-group config, "" for all shops
}

// Engine runs return-visit aggregations against the external
// transaction source and customer store.
//
// An Engine is stateless across runs; the only mutable run state is
// the resolver cache constructed inside Run, so one Engine value may
// serve concurrent report requests.
type Engine struct {
	txns      TransactionSource
	customers CustomerStore
	groups    *ShopGroups
	runTokens RunTokenGenerator
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunTokens overrides the run token generator. Tests use
// FixedGenerator for stable golden output.
func WithRunTokens(g RunTokenGenerator) Option {
	return func(e *Engine) {
		e.runTokens = g
	}
}

// WithShopGroups overrides the built-in shop-group configuration.
func WithShopGroups(sg *ShopGroups) Option {
	return func(e *Engine) {
		e.groups = sg
	}
}

// New creates an Engine over the given collaborators.
func New(txns TransactionSource, customers CustomerStore, opts ...Option) *Engine {
	e := &Engine{
		txns:      txns,
		customers: customers,
		groups:    DefaultShopGroups(),
		runTokens: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// customerGlobal is the result of the global classifier pass for one
// identified customer.
type customerGlobal struct {
	vipID         string
	name          string
	grade         string
	regDate       time.Time
	firstPurchase time.Time
	purchases     int
	returnVisits  int
	amount        decimal.Decimal
	returning     bool
}

// Run executes one full aggregation over the requested period.
//
// Returns (nil, nil) when the period holds no transactions: callers
// render a no-data state, not an error. Any failure aborts the run
// with no partial report.
func (e *Engine) Run(ctx context.Context, params Params) (*report.Report, error) {
	runID := e.runTokens.Generate()
	log := slog.With("run_id", runID)
	log.Info("aggregation start",
		"from", report.NewDate(params.From).String(),
		"to", report.NewDate(params.To).String(),
		"shop_group", params.ShopGroup)

	// Fresh resolver per run; the cache must not outlive us.
	resolver := newCustomerResolver(e.customers)

	filter, err := e.groups.FilterFor(params.ShopGroup)
	if err != nil {
		return nil, err
	}

	counts, err := e.customers.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("customer counts: %w", err)
	}

	txns, err := e.txns.Transactions(ctx, params.From, params.To, filter)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if len(txns) == 0 {
		log.Info("aggregation empty", "reason", "no transactions in period")
		return nil, nil
	}

	allTxns, err := e.txns.AllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load all transactions: %w", err)
	}

	dateRange := observedRange(txns)
	groups := GroupPurchases(txns)
	anonPurchases := groups[SentinelVIP]
	log.Info("transactions grouped",
		"transactions", len(txns),
		"customers", len(groups),
		"anonymous_invoices", len(anonPurchases))

	// Global classifier pass.
	newMemberLo, newMemberHi := params.From, params.To
	if newMemberLo.IsZero() {
		newMemberLo = dateRange.Start.Time
	}
	if newMemberHi.IsZero() {
		newMemberHi = dateRange.End.Time
	}

	var (
		globals           []customerGlobal
		returningCount    int
		returningInvoices int
		newMembers        int
		totalInvoices     int
	)
	returningAmount := decimal.Zero
	totalAmount := decimal.Zero

	for vipID, purchases := range groups {
		if vipID == SentinelVIP {
			continue
		}

		sorted := sortedByDate(purchases)
		grade, regDate, name, err := resolver.Resolve(ctx, vipID, sorted[0].Customer)
		if err != nil {
			return nil, err
		}

		amt := sumAmounts(sorted)
		totalInvoices += len(sorted)
		totalAmount = totalAmount.Add(amt)

		visits, returning := ClassifyReturnVisits(sorted, regDate)
		if returning {
			returningCount++
			returningInvoices += len(sorted)
			returningAmount = returningAmount.Add(amt)
		}

		if !regDate.IsZero() && !regDate.Before(newMemberLo) && !regDate.After(newMemberHi) {
			newMembers++
		}

		globals = append(globals, customerGlobal{
			vipID:         vipID,
			name:          name,
			grade:         grade,
			regDate:       regDate,
			firstPurchase: sorted[0].Date,
			purchases:     len(sorted),
			returnVisits:  visits,
			amount:        amt,
			returning:     returning,
		})
	}

	activeCustomers := len(groups)
	if anonPurchases != nil {
		activeCustomers--
	}

	anonAmount := sumAmounts(anonPurchases)
	invoicesInclAnon := totalInvoices + len(anonPurchases)
	amountInclAnon := totalAmount.Add(anonAmount)

	// Dimension rollups.
	rawGradeCounts, err := e.customers.GradeCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("grade counts: %w", err)
	}
	byGrade := aggregateByGrade(globals, normalizeGradeCounts(rawGradeCounts))

	bySeason, err := aggregateBySeason(ctx, groups, resolver)
	if err != nil {
		return nil, fmt.Errorf("aggregate by season: %w", err)
	}

	allSeasonKeys := make([]string, 0, len(bySeason))
	for _, s := range bySeason {
		allSeasonKeys = append(allSeasonKeys, s.Season)
	}

	byShop, err := aggregateByShop(ctx, groups, resolver, allSeasonKeys)
	if err != nil {
		return nil, fmt.Errorf("aggregate by shop: %w", err)
	}

	anonymous := anonymousStats(anonPurchases, allTxns, invoicesInclAnon, amountInclAnon)

	reconciliation, err := auditReconciliation(ctx, groups, resolver, returningInvoices, byShop, bySeason)
	if err != nil {
		return nil, fmt.Errorf("reconciliation audit: %w", err)
	}

	details := make([]report.CustomerDetail, 0, len(globals))
	for _, c := range globals {
		details = append(details, report.CustomerDetail{
			VIPID:             c.vipID,
			Name:              c.name,
			Grade:             c.grade,
			RegistrationDate:  report.NewDate(c.regDate),
			FirstPurchaseDate: report.NewDate(c.firstPurchase),
			TotalPurchases:    c.purchases,
			ReturnVisits:      c.returnVisits,
			TotalSpent:        money(c.amount),
		})
	}
	sort.Slice(details, func(i, j int) bool {
		if details[i].ReturnVisits != details[j].ReturnVisits {
			return details[i].ReturnVisits > details[j].ReturnVisits
		}
		return details[i].VIPID < details[j].VIPID
	})

	rep := &report.Report{
		RunID:      runID,
		DateRange:  dateRange,
		SeasonHint: SeasonForRange(params.From, params.To),
		Overview: report.Overview{
			ActiveCustomers:       activeCustomers,
			ReturningCustomers:    returningCount,
			ReturnRate:            rate(returningCount, activeCustomers),
			ReturnRateAllTime:     rate(returningCount, counts.Total),
			ReturningInvoices:     returningInvoices,
			ReturningAmount:       money(returningAmount),
			TotalAmountPeriod:     money(totalAmount),
			AnonymousInvoices:     len(anonPurchases),
			NewMembersInPeriod:    newMembers,
			TotalCustomersInDB:    counts.Total,
			MemberActiveAllTime:   counts.Active,
			MemberInactiveAllTime: counts.Inactive,
			TotalInvoices:         totalInvoices,
			TotalAmount:           money(totalAmount),
			TotalInvoicesInclAnon: invoicesInclAnon,
			TotalAmountInclAnon:   money(amountInclAnon),
		},
		ByGrade:        byGrade,
		BySeason:       bySeason,
		ByShop:         byShop,
		CustomerDetail: details,
		Anonymous:      anonymous,
		Reconciliation: reconciliation,
	}

	log.Info("aggregation done",
		"active_customers", activeCustomers,
		"returning_customers", returningCount,
		"shops", len(byShop),
		"seasons", len(bySeason),
		"shop_shortfall", reconciliation.ShopShortfall,
		"season_shortfall", reconciliation.SeasonShortfall)
	return rep, nil
}

// observedRange returns the min/max non-zero sales date in the period.
func observedRange(txns []Transaction) report.DateRange {
	var lo, hi time.Time
	for _, t := range txns {
		if t.SalesDate.IsZero() {
			continue
		}
		if lo.IsZero() || t.SalesDate.Before(lo) {
			lo = t.SalesDate
		}
		if hi.IsZero() || t.SalesDate.After(hi) {
			hi = t.SalesDate
		}
	}
	return report.DateRange{Start: report.NewDate(lo), End: report.NewDate(hi)}
}
