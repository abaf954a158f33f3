package report

import (
	"fmt"
	"time"
)

// Date is a day-precision date at the report boundary.
// Zero value marshals as JSON null and renders as an empty string.
type Date struct {
	time.Time
}

// NewDate wraps a time.Time as a report Date.
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// String renders the date as YYYY-MM-DD, or "" when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// MarshalJSON renders the date as "YYYY-MM-DD" or null when absent.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", d.Format("2006-01-02"))), nil
}

// UnmarshalJSON parses "YYYY-MM-DD" or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(`"2006-01-02"`, s)
	if err != nil {
		return fmt.Errorf("parse date %s: %w", s, err)
	}
	d.Time = t
	return nil
}

// DateRange is the min/max transaction date actually observed in the run.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Report is the complete result of one aggregation run.
// A run over an empty transaction set produces no Report at all
// (the engine returns nil), so every Report is fully populated.
type Report struct {
	RunID          string               `json:"run_id"`
	DateRange      DateRange            `json:"date_range"`
	SeasonHint     string               `json:"season_hint,omitempty"`
	Overview       Overview             `json:"overview"`
	ByGrade        []GradeStat          `json:"by_grade"`
	BySeason       []SeasonStat         `json:"by_season"`
	ByShop         []ShopStat           `json:"by_shop"`
	CustomerDetail []CustomerDetail     `json:"customer_detail"`
	Anonymous      AnonymousStats       `json:"anonymous"`
	Reconciliation ReconciliationReport `json:"reconciliation"`
}

// Overview holds the period-level counters. Customer metrics exclude the
// anonymous sentinel; the *InclAnonymous fields carry the parallel
// totals that include it.
type Overview struct {
	ActiveCustomers       int     `json:"active_customers"`
	ReturningCustomers    int     `json:"returning_customers"`
	ReturnRate            float64 `json:"return_rate"`
	ReturnRateAllTime     float64 `json:"return_rate_all_time"`
	ReturningInvoices     int     `json:"returning_invoices"`
	ReturningAmount       float64 `json:"returning_amount"`
	TotalAmountPeriod     float64 `json:"total_amount_period"`
	AnonymousInvoices     int     `json:"anonymous_invoices"`
	NewMembersInPeriod    int     `json:"new_members_in_period"`
	TotalCustomersInDB    int     `json:"total_customers_in_db"`
	MemberActiveAllTime   int     `json:"member_active_all_time"`
	MemberInactiveAllTime int     `json:"member_inactive_all_time"`
	TotalInvoices         int     `json:"total_invoices"`
	TotalAmount           float64 `json:"total_amount"`
	TotalInvoicesInclAnon int     `json:"total_invoices_incl_anonymous"`
	TotalAmountInclAnon   float64 `json:"total_amount_incl_anonymous"`
}

// GradeStat is one row of the by-grade table.
type GradeStat struct {
	Grade              string  `json:"grade"`
	TotalCustomers     int     `json:"total_customers"`
	TotalInDB          int     `json:"total_in_db"`
	ReturningCustomers int     `json:"returning_customers"`
	ReturnRate         float64 `json:"return_rate"`
	ReturnRateAllTime  float64 `json:"return_rate_all_time"`
	ReturningInvoices  int     `json:"returning_invoices"`
	ReturningAmount    float64 `json:"returning_amount"`
	TotalInvoices      int     `json:"total_invoices"`
	TotalAmount        float64 `json:"total_amount"`
}

// SeasonStat is one row of the by-season table. The same shape is reused
// for the per-shop season breakdown.
type SeasonStat struct {
	Season                string  `json:"season"`
	TotalCustomers        int     `json:"total_customers"`
	ReturningCustomers    int     `json:"returning_customers"`
	ReturnRate            float64 `json:"return_rate"`
	ReturningInvoices     int     `json:"returning_invoices"`
	ReturningAmount       float64 `json:"returning_amount"`
	TotalInvoices         int     `json:"total_invoices"`
	TotalAmount           float64 `json:"total_amount"`
	TotalInvoicesInclAnon int     `json:"total_invoices_incl_anonymous"`
	TotalAmountInclAnon   float64 `json:"total_amount_incl_anonymous"`
}

// ShopGradeStat is one row of the per-shop grade breakdown.
type ShopGradeStat struct {
	Grade              string  `json:"grade"`
	TotalCustomers     int     `json:"total_customers"`
	ReturningCustomers int     `json:"returning_customers"`
	ReturnRate         float64 `json:"return_rate"`
	ReturningInvoices  int     `json:"returning_invoices"`
	ReturningAmount    float64 `json:"returning_amount"`
	TotalInvoices      int     `json:"total_invoices"`
	TotalAmount        float64 `json:"total_amount"`
}

// ShopStat is one row of the by-shop table, with nested grade and
// season breakdowns. Season rows are emitted for every season key known
// to the run, including zero rows, so tables align across shops.
type ShopStat struct {
	ShopName              string          `json:"shop_name"`
	TotalCustomers        int             `json:"total_customers"`
	ReturningCustomers    int             `json:"returning_customers"`
	ReturnRate            float64         `json:"return_rate"`
	ReturningInvoices     int             `json:"returning_invoices"`
	ReturningAmount       float64         `json:"returning_amount"`
	TotalInvoices         int             `json:"total_invoices"`
	TotalAmount           float64         `json:"total_amount"`
	TotalInvoicesInclAnon int             `json:"total_invoices_incl_anonymous"`
	TotalAmountInclAnon   float64         `json:"total_amount_incl_anonymous"`
	ByGrade               []ShopGradeStat `json:"by_grade"`
	BySeason              []SeasonStat    `json:"by_season"`
}

// CustomerDetail is one row of the customer detail list, sorted by
// return visits descending.
type CustomerDetail struct {
	VIPID             string  `json:"vip_id"`
	Name              string  `json:"name"`
	Grade             string  `json:"grade"`
	RegistrationDate  Date    `json:"registration_date"`
	FirstPurchaseDate Date    `json:"first_purchase_date"`
	TotalPurchases    int     `json:"total_purchases"`
	ReturnVisits      int     `json:"return_visits"`
	TotalSpent        float64 `json:"total_spent"`
}

// AnonymousStats covers invoices with no identified loyalty member.
type AnonymousStats struct {
	Period  AnonymousPeriod     `json:"period"`
	AllTime AnonymousAllTime    `json:"all_time"`
	ByShop  []AnonymousShopStat `json:"by_shop"`
}

// AnonymousPeriod is the in-period anonymous block with its share of the
// including-anonymous period totals.
type AnonymousPeriod struct {
	TotalInvoices    int     `json:"total_invoices"`
	TotalAmount      float64 `json:"total_amount"`
	PctOfAllInvoices float64 `json:"pct_of_all_invoices"`
	PctOfAllAmount   float64 `json:"pct_of_all_amount"`
}

// AnonymousAllTime is the unfiltered all-time anonymous block.
type AnonymousAllTime struct {
	TotalInvoices int     `json:"total_invoices"`
	TotalAmount   float64 `json:"total_amount"`
}

// AnonymousShopStat is one per-shop row of anonymous activity in the
// period, sorted by shop name.
type AnonymousShopStat struct {
	ShopName            string  `json:"shop_name"`
	Invoices            int     `json:"invoices"`
	Amount              float64 `json:"amount"`
	PctOfPeriodInvoices float64 `json:"pct_of_period_invoices"`
	PctOfPeriodAmount   float64 `json:"pct_of_period_amount"`
}

// ReconciliationReport explains why dimension-level returning-invoice
// sums can undercount the global count. The shortfalls here are
// expected output of the classification rule, not data corruption.
type ReconciliationReport struct {
	GlobalReturningInvoices int                    `json:"global_returning_invoices"`
	ShopSum                 int                    `json:"shop_sum"`
	ShopShortfall           int                    `json:"shop_shortfall"`
	SeasonSum               int                    `json:"season_sum"`
	SeasonShortfall         int                    `json:"season_shortfall"`
	Shops                   []ReconciliationRecord `json:"shops"`
	Seasons                 []ReconciliationRecord `json:"seasons"`
}

// ReconciliationRecord is one customer whose dimension-summed returning
// invoices fall short of their global returning-invoice count.
type ReconciliationRecord struct {
	VIPID                   string   `json:"vip_id"`
	Name                    string   `json:"name"`
	RegistrationDate        Date     `json:"registration_date"`
	TotalPurchases          int      `json:"total_purchases"`
	GlobalReturningInvoices int      `json:"global_returning_invoices"`
	DimensionSum            int      `json:"dimension_sum"`
	Shortfall               int      `json:"shortfall"`
	Pattern                 string   `json:"pattern"`
	ScopeCount              int      `json:"scope_count"`
	Detail                  []string `json:"detail"`
}
