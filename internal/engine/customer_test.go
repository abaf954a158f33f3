package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCustomerStore is a map-backed CustomerStore that counts lookups.
type fakeCustomerStore struct {
	records map[string]CustomerRecord
	lookups int
	err     error
}

func (f *fakeCustomerStore) Lookup(_ context.Context, vipID string) (*CustomerRecord, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.records[vipID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeCustomerStore) GradeCounts(context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, rec := range f.records {
		counts[rec.GradeRaw]++
	}
	return counts, nil
}

func (f *fakeCustomerStore) Counts(context.Context) (CustomerCounts, error) {
	var c CustomerCounts
	for _, rec := range f.records {
		c.Total++
		if rec.Points > 0 {
			c.Active++
		} else {
			c.Inactive++
		}
	}
	return c, nil
}

func TestNormalizeGrade(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", GradeNone},
		{"  ", GradeNone},
		{"Gold", GradeGold},
		{"gold", GradeGold},
		{"Golden", GradeGold},
		{"olden", GradeGold},
		{"GOLDEN", GradeGold},
		{"Silver", GradeSilver},
		{"Diamond", GradeDiamond},
		{" Member ", GradeMember},
		{"Platinum", "Platinum"}, // unknown grades pass through
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeGrade(tt.raw), "raw=%q", tt.raw)
	}
}

func TestResolve_Sentinel(t *testing.T) {
	store := &fakeCustomerStore{}
	res := newCustomerResolver(store)

	grade, regDate, name, err := res.Resolve(context.Background(), SentinelVIP, nil)
	require.NoError(t, err)
	assert.Equal(t, GradeNone, grade)
	assert.True(t, regDate.IsZero())
	assert.Equal(t, "Unknown (No VIP)", name)
	assert.Zero(t, store.lookups, "sentinel must not hit the store")
}

func TestResolve_InlineRecordWins(t *testing.T) {
	store := &fakeCustomerStore{records: map[string]CustomerRecord{
		"V1": {VIPID: "V1", Name: "Stored", GradeRaw: "Silver"},
	}}
	res := newCustomerResolver(store)

	inline := &CustomerRecord{VIPID: "V1", Name: "Inline", GradeRaw: "Golden", RegistrationDate: day(t, "2025-01-01")}
	grade, regDate, name, err := res.Resolve(context.Background(), "V1", inline)
	require.NoError(t, err)
	assert.Equal(t, GradeGold, grade)
	assert.Equal(t, day(t, "2025-01-01"), regDate)
	assert.Equal(t, "Inline", name)
	assert.Zero(t, store.lookups)
}

func TestResolve_CachesLookupsAndMisses(t *testing.T) {
	store := &fakeCustomerStore{records: map[string]CustomerRecord{
		"V1": {VIPID: "V1", Name: "Alice", GradeRaw: "Member", Points: 5},
	}}
	res := newCustomerResolver(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		grade, _, name, err := res.Resolve(ctx, "V1", nil)
		require.NoError(t, err)
		assert.Equal(t, GradeMember, grade)
		assert.Equal(t, "Alice", name)
	}
	assert.Equal(t, 1, store.lookups, "hit must be cached")

	for i := 0; i < 3; i++ {
		grade, regDate, name, err := res.Resolve(ctx, "V404", nil)
		require.NoError(t, err)
		assert.Equal(t, GradeNone, grade)
		assert.True(t, regDate.IsZero())
		assert.Equal(t, "Unknown", name)
	}
	assert.Equal(t, 2, store.lookups, "miss must be cached too")
}

func TestResolve_FreshResolverFreshCache(t *testing.T) {
	store := &fakeCustomerStore{records: map[string]CustomerRecord{}}

	_, _, _, err := newCustomerResolver(store).Resolve(context.Background(), "V1", nil)
	require.NoError(t, err)
	_, _, _, err = newCustomerResolver(store).Resolve(context.Background(), "V1", nil)
	require.NoError(t, err)

	// Two runs, two resolvers, two lookups: the cache dies with its run.
	assert.Equal(t, 2, store.lookups)
}

func TestResolve_StoreFailureIsFatal(t *testing.T) {
	store := &fakeCustomerStore{err: errors.New("disk gone")}
	res := newCustomerResolver(store)

	_, _, _, err := res.Resolve(context.Background(), "V1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "V1")
}

func TestResolve_EmptyNameDefaults(t *testing.T) {
	store := &fakeCustomerStore{records: map[string]CustomerRecord{
		"V1": {VIPID: "V1", GradeRaw: ""},
	}}
	res := newCustomerResolver(store)

	grade, regDate, name, err := res.Resolve(context.Background(), "V1", nil)
	require.NoError(t, err)
	assert.Equal(t, GradeNone, grade)
	assert.Equal(t, time.Time{}, regDate)
	assert.Equal(t, "Unknown", name)
}
