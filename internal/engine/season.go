package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// UnknownSeason is the bucket for null or unparseable dates.
// It sorts after every real season.
const UnknownSeason = "Unknown"

// seasonDef is one fixed 3-month retail season.
type seasonDef struct {
	prefix string
	months [3]time.Month
}

// Seasons are year-aware: M11-1 crosses the year boundary, so a January
// date belongs to the previous year's Nov-Jan bucket.
var seasonDefs = []seasonDef{
	{"M2-4", [3]time.Month{time.February, time.March, time.April}},
	{"M5-7", [3]time.Month{time.May, time.June, time.July}},
	{"M8-10", [3]time.Month{time.August, time.September, time.October}},
	{"M11-1", [3]time.Month{time.November, time.December, time.January}},
}

var seasonOrder = map[string]int{"M2-4": 0, "M5-7": 1, "M8-10": 2, "M11-1": 3}

// SeasonLabel maps a date to its year-aware season label.
//
//	2025-02-15 -> "M2-4 2025"
//	2024-12-25 -> "M11-1 2024-2025"
//	2025-01-05 -> "M11-1 2024-2025"
//	zero       -> "Unknown"
func SeasonLabel(d time.Time) string {
	if d.IsZero() {
		return UnknownSeason
	}

	m, y := d.Month(), d.Year()
	for _, def := range seasonDefs {
		if def.months[0] != m && def.months[1] != m && def.months[2] != m {
			continue
		}
		if def.prefix == "M11-1" {
			if m == time.January {
				return fmt.Sprintf("M11-1 %d-%d", y-1, y)
			}
			return fmt.Sprintf("M11-1 %d-%d", y, y+1)
		}
		return fmt.Sprintf("%s %d", def.prefix, y)
	}

	return UnknownSeason
}

// SeasonSortKey converts a season label to a chronological (year,
// ordinal) key. Unparseable labels, including "Unknown", sort last.
func SeasonSortKey(label string) (year, ordinal int) {
	idx := strings.LastIndex(label, " ")
	if idx < 0 {
		return 9999, 99
	}

	prefix, years := label[:idx], label[idx+1:]

	// First year of "2025" or "2024-2025".
	firstYear, err := strconv.Atoi(strings.SplitN(years, "-", 2)[0])
	if err != nil {
		return 9999, 99
	}

	ord, ok := seasonOrder[prefix]
	if !ok {
		ord = 99
	}
	return firstYear, ord
}

// sortSeasonLabels orders labels chronologically in place, with ties
// broken lexically for determinism.
func sortSeasonLabels(labels []string) {
	sort.Slice(labels, func(i, j int) bool {
		yi, oi := SeasonSortKey(labels[i])
		yj, oj := SeasonSortKey(labels[j])
		if yi != yj {
			return yi < yj
		}
		if oi != oj {
			return oi < oj
		}
		return labels[i] < labels[j]
	})
}

// SeasonForRange returns the season prefix when every calendar month
// touched by [from, to] belongs to one season's month set, else "".
// Display hint only, never used for classification.
func SeasonForRange(from, to time.Time) string {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return ""
	}

	touched := map[time.Month]bool{}
	cur := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(end) {
		touched[cur.Month()] = true
		cur = cur.AddDate(0, 1, 0)
	}

	for _, def := range seasonDefs {
		inSeason := 0
		for m := range touched {
			if def.months[0] == m || def.months[1] == m || def.months[2] == m {
				inSeason++
			}
		}
		if inSeason == len(touched) {
			return def.prefix
		}
	}
	return ""
}
