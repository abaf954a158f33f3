package engine

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeasonLabel(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2025-02-15", "M2-4 2025"},
		{"2025-03-01", "M2-4 2025"},
		{"2025-04-30", "M2-4 2025"},
		{"2025-05-01", "M5-7 2025"},
		{"2025-06-10", "M5-7 2025"},
		{"2025-08-01", "M8-10 2025"},
		{"2025-10-31", "M8-10 2025"},
		{"2024-11-01", "M11-1 2024-2025"},
		{"2024-12-25", "M11-1 2024-2025"},
		// January belongs to the previous year's Nov-Jan bucket.
		{"2025-01-05", "M11-1 2024-2025"},
		{"2026-01-31", "M11-1 2025-2026"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, SeasonLabel(day(t, tt.date)))
		})
	}
}

func TestSeasonLabel_ZeroDate(t *testing.T) {
	assert.Equal(t, UnknownSeason, SeasonLabel(time.Time{}))
}

func TestSeasonSortKey(t *testing.T) {
	tests := []struct {
		label    string
		wantYear int
		wantOrd  int
	}{
		{"M2-4 2024", 2024, 0},
		{"M5-7 2024", 2024, 1},
		{"M8-10 2024", 2024, 2},
		{"M11-1 2024-2025", 2024, 3},
		{"M2-4 2025", 2025, 0},
		{"Unknown", 9999, 99},
		{"garbage", 9999, 99},
		{"M2-4 notayear", 9999, 99},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			year, ord := SeasonSortKey(tt.label)
			assert.Equal(t, tt.wantYear, year)
			assert.Equal(t, tt.wantOrd, ord)
		})
	}
}

func TestSeasonSortKey_RoundTripOrdersYear(t *testing.T) {
	// Labeling each month of 2025 then sorting must give a consistent
	// chronological order, with January first (it belongs to the
	// 2024-2025 Nov-Jan bucket).
	var labels []string
	for m := time.January; m <= time.December; m++ {
		d := time.Date(2025, m, 15, 0, 0, 0, 0, time.UTC)
		labels = append(labels, SeasonLabel(d))
	}
	sortSeasonLabels(labels)

	assert.Equal(t, "M11-1 2024-2025", labels[0])
	assert.Equal(t, "M11-1 2025-2026", labels[len(labels)-1])

	keys := make([][2]int, len(labels))
	for i, l := range labels {
		y, o := SeasonSortKey(l)
		keys[i] = [2]int{y, o}
	}
	assert.True(t, sort.SliceIsSorted(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	}), fmt.Sprintf("labels not chronological: %v", labels))
}

func TestSeasonForRange(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     string
	}{
		{"single season", "2025-02-01", "2025-04-30", "M2-4"},
		{"cross season", "2025-02-01", "2025-06-30", ""},
		{"cross year single season", "2024-11-01", "2025-01-31", "M11-1"},
		{"single month", "2025-06-05", "2025-06-20", "M5-7"},
		{"inverted", "2025-06-01", "2025-02-01", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SeasonForRange(day(t, tt.from), day(t, tt.to)))
		})
	}
}

func TestSeasonForRange_OpenEnds(t *testing.T) {
	assert.Equal(t, "", SeasonForRange(time.Time{}, day(t, "2025-02-01")))
	assert.Equal(t, "", SeasonForRange(day(t, "2025-02-01"), time.Time{}))
}
