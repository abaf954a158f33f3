package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Grade names in display order. Unrecognized raw grades pass through
// and sort after the known ones.
const (
	GradeNone    = "No Grade"
	GradeMember  = "Member"
	GradeSilver  = "Silver"
	GradeGold    = "Gold"
	GradeDiamond = "Diamond"
)

// gradeRank orders grades in every grade table. Unknown grades rank 99.
var gradeRank = map[string]int{
	GradeNone:    0,
	GradeMember:  1,
	GradeSilver:  2,
	GradeGold:    3,
	GradeDiamond: 4,
}

// knownGrades are pre-created as buckets in every grade table so zero
// rows are emitted and tables align across shops.
var knownGrades = []string{GradeNone, GradeMember, GradeSilver, GradeGold, GradeDiamond}

// anonymousName is the display name for the sentinel key.
const anonymousName = "Unknown (No VIP)"

// NormalizeGrade maps raw grade strings to their standard names.
// Known misspellings of Gold collapse to "Gold"; empty input becomes
// "No Grade"; anything else passes through trimmed.
func NormalizeGrade(raw string) string {
	g := strings.TrimSpace(raw)
	if g == "" {
		return GradeNone
	}
	switch strings.ToLower(g) {
	case "olden", "gold", "golden":
		return GradeGold
	}
	return g
}

// customerResolver resolves grade, registration date, and display name
// per VIP key. The lookup cache is owned by exactly one aggregation
// run: Run constructs a fresh resolver and lets it die with the run,
// so concurrent runs can never observe each other's cache state.
type customerResolver struct {
	store CustomerStore
	cache map[string]*CustomerRecord // includes negative entries (nil)
}

func newCustomerResolver(store CustomerStore) *customerResolver {
	return &customerResolver{
		store: store,
		cache: make(map[string]*CustomerRecord),
	}
}

// Resolve returns (grade, registration date, name) for a VIP key.
//
// The sentinel key short-circuits to fixed defaults with no lookup.
// An inline record from the transaction join wins over a store lookup.
// A store miss is not an error: it degrades to the same defaults and
// the miss itself is cached. A store failure is an error and aborts
// the whole run; no partial report is emitted.
func (r *customerResolver) Resolve(ctx context.Context, vipID string, inline *CustomerRecord) (grade string, regDate time.Time, name string, err error) {
	if vipID == SentinelVIP {
		return GradeNone, time.Time{}, anonymousName, nil
	}

	cust := inline
	if cust == nil {
		cached, ok := r.cache[vipID]
		if ok {
			cust = cached
		} else {
			found, lookupErr := r.store.Lookup(ctx, vipID)
			if lookupErr != nil {
				return "", time.Time{}, "", fmt.Errorf("lookup customer %s: %w", vipID, lookupErr)
			}
			if found == nil {
				slog.Debug("customer lookup miss", "vip_id", vipID)
			}
			r.cache[vipID] = found
			cust = found
		}
	}

	if cust == nil {
		return GradeNone, time.Time{}, "Unknown", nil
	}

	name = cust.Name
	if name == "" {
		name = "Unknown"
	}
	return NormalizeGrade(cust.GradeRaw), cust.RegistrationDate, name, nil
}
