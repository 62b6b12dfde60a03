package internal

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

// testOptions gives a fixed clock and sequential ids id-1, id-2, ...
func testOptions() StoreOptions {
	n := 0
	return StoreOptions{
		Now: func() time.Time { return testNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

func newSub(name, cost string, f Frequency, next string) NewSubscription {
	return NewSubscription{
		Name:      name,
		Category:  "Other",
		Cost:      decimal.RequireFromString(cost),
		Frequency: f,
		NextDate:  date(next),
	}
}

func names(subs []Subscription) []string {
	var result []string
	for _, s := range subs {
		result = append(result, s.Name)
	}
	return result
}

var errSetFailed = errors.New("set failed")

// flakyStorage is memory storage whose writes can be switched off
type flakyStorage struct {
	*MemoryStorage
	failSet bool
}

func (f *flakyStorage) Set(ctx context.Context, key string, blob []byte) error {
	if f.failSet {
		return errSetFailed
	}
	return f.MemoryStorage.Set(ctx, key, blob)
}

func seed(t *testing.T, storage Storage, subs ...Subscription) {
	t.Helper()
	blob, err := EncodeSubscriptions(subs)
	require.NoError(t, err)
	require.NoError(t, storage.Set(context.Background(), DefaultStorageKey, blob))
}

func TestStore_AddKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store, outcome, err := Open(ctx, NewMemoryStorage(), testOptions())
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)

	for _, name := range []string{"A", "B", "C"} {
		_, err := store.Add(ctx, newSub(name, "10", FrequencyMonthly, "2024-07-01"))
		require.NoError(t, err)
	}

	outcome, err = store.Delete(ctx, "id-2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"A", "C"}, names(store.List()))
}

func TestStore_AddAssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), StoreOptions{Now: testOptions().Now})

	a, err := store.Add(ctx, newSub("A", "1", FrequencyMonthly, "2024-07-01"))
	require.NoError(t, err)
	b, err := store.Add(ctx, newSub("A", "1", FrequencyMonthly, "2024-07-01"))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestStore_AddNormalizesFrequency(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), testOptions())

	sub, err := store.Add(ctx, newSub("A", "1", Frequency("biweekly"), "2024-07-01"))
	require.NoError(t, err)
	assert.Equal(t, FrequencyMonthly, sub.Frequency)
}

func TestStore_UpdateMissingIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	store, _, err := Open(ctx, storage, testOptions())
	require.NoError(t, err)
	_, err = store.Add(ctx, newSub("A", "10", FrequencyMonthly, "2024-07-01"))
	require.NoError(t, err)

	before := store.List()
	blobBefore, _, _ := storage.Get(ctx, DefaultStorageKey)

	name := "X"
	outcome, err := store.Update(ctx, "missing-id", Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
	assert.Equal(t, before, store.List())

	blobAfter, _, _ := storage.Get(ctx, DefaultStorageKey)
	assert.Equal(t, blobBefore, blobAfter)
}

func TestStore_DeleteMissingIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), testOptions())
	_, err := store.Add(ctx, newSub("A", "10", FrequencyMonthly, "2024-07-01"))
	require.NoError(t, err)

	outcome, err := store.Delete(ctx, "nope")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
	assert.Len(t, store.List(), 1)
}

func TestStore_UpdateKeepsIDAndPosition(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), testOptions())
	for _, name := range []string{"A", "B", "C"} {
		_, err := store.Add(ctx, newSub(name, "10", FrequencyMonthly, "2024-07-01"))
		require.NoError(t, err)
	}

	current, outcome := store.Edit("id-2")
	require.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, "B", current.Name)

	name := "Renamed"
	cost := decimal.RequireFromString("99.5")
	freq := FrequencyYearly
	outcome, err := store.Update(ctx, current.ID, Patch{Name: &name, Cost: &cost, Frequency: &freq})
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, "id-2", list[1].ID)
	assert.Equal(t, "Renamed", list[1].Name)
	assert.True(t, list[1].Cost.Equal(cost))
	assert.Equal(t, FrequencyYearly, list[1].Frequency)
	assert.Equal(t, "Other", list[1].Category, "fields not in the patch are kept")
	assert.Equal(t, date("2024-07-01"), list[1].NextDate)
}

func TestStore_EditMissing(t *testing.T) {
	store := NewStore(NewMemoryStorage(), testOptions())
	_, outcome := store.Edit("nope")
	assert.Equal(t, OutcomeNotFound, outcome)
}

func TestOpen_RollsForward(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	seed(t, storage,
		Subscription{ID: "daily", Name: "Daily", Cost: decimal.NewFromInt(1), Frequency: FrequencyDaily, NextDate: date("2024-05-16")},
		Subscription{ID: "monthly", Name: "Monthly", Cost: decimal.NewFromInt(10), Frequency: FrequencyMonthly, NextDate: date("2024-01-31")},
		Subscription{ID: "weekly", Name: "Weekly", Cost: decimal.NewFromInt(5), Frequency: FrequencyWeekly, NextDate: date("2024-06-14")},
		Subscription{ID: "yearly", Name: "Yearly", Cost: decimal.NewFromInt(100), Frequency: FrequencyYearly, NextDate: date("2020-02-29")},
		Subscription{ID: "future", Name: "Future", Cost: decimal.NewFromInt(3), Frequency: FrequencyMonthly, NextDate: date("2024-06-20")},
		Subscription{ID: "today", Name: "Today", Cost: decimal.NewFromInt(3), Frequency: FrequencyMonthly, NextDate: date("2024-06-15")},
	)

	store, outcome, err := Open(ctx, storage, testOptions())
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)

	want := map[string]string{
		"daily":   "2024-06-15", // 30 days overdue, lands on today
		"monthly": "2024-07-02", // Jan 31 overflows to Mar 2, then the 2nd each month
		"weekly":  "2024-06-21",
		"yearly":  "2025-03-01", // Feb 29 overflows to Mar 1 and stays there
		"future":  "2024-06-20",
		"today":   "2024-06-15",
	}
	today := Today(testNow)
	for _, sub := range store.List() {
		assert.Equal(t, want[sub.ID], sub.NextDate.String(), sub.ID)
		assert.GreaterOrEqual(t, DaysUntil(today, sub.NextDate), 0, sub.ID)
	}

	reloaded := NewStore(storage, testOptions())
	_, err = reloaded.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.List(), reloaded.List(), "rolled dates are persisted")
}

func TestRollForward_ReportsCount(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	seed(t, storage,
		Subscription{ID: "a", Name: "A", Cost: decimal.NewFromInt(1), Frequency: FrequencyDaily, NextDate: date("2024-06-01")},
		Subscription{ID: "b", Name: "B", Cost: decimal.NewFromInt(1), Frequency: FrequencyDaily, NextDate: date("2024-07-01")},
	)
	store := NewStore(storage, testOptions())
	_, err := store.Load(ctx)
	require.NoError(t, err)

	n, err := store.RollForward(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.RollForward(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRollDate_Terminates(t *testing.T) {
	today := date("2024-06-15")
	from := date("1990-01-01")
	for _, f := range Frequencies {
		got := RollDate(from, f, today)
		days := DaysUntil(today, got)
		assert.GreaterOrEqual(t, days, 0, string(f))
		// lands within one period of today
		assert.LessOrEqual(t, days, 366, string(f))
	}
}

func TestStore_PersistenceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	store := NewStore(storage, testOptions())
	_, err := store.Add(ctx, NewSubscription{
		Name:      "Netflix",
		Category:  "Entertainment",
		Cost:      decimal.RequireFromString("15.49"),
		Frequency: FrequencyMonthly,
		NextDate:  date("2024-07-01"),
		Notes:     "family plan",
	})
	require.NoError(t, err)
	_, err = store.Add(ctx, newSub("Domain", "12", FrequencyYearly, "2025-01-01"))
	require.NoError(t, err)

	_, err = store.Load(ctx)
	require.NoError(t, err)
	first := store.List()

	require.NoError(t, store.Save(ctx))
	_, err = store.Load(ctx)
	require.NoError(t, err)

	second := store.List()
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, first[i].Category, second[i].Category)
		assert.True(t, first[i].Cost.Equal(second[i].Cost))
		assert.Equal(t, first[i].Frequency, second[i].Frequency)
		assert.Equal(t, first[i].NextDate, second[i].NextDate)
		assert.Equal(t, first[i].Notes, second[i].Notes)
	}
}

func TestStore_LoadMissingBlob(t *testing.T) {
	store := NewStore(NewMemoryStorage(), testOptions())
	outcome, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Empty(t, store.List())
}

func TestOpen_CorruptBlobResetsToEmpty(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, DefaultStorageKey, []byte("{not json")))

	core, logs := observer.New(zap.WarnLevel)
	opts := testOptions()
	opts.Logger = zap.New(core)

	store, outcome, err := Open(ctx, storage, opts)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorruptState, outcome)
	assert.Empty(t, store.List())
	assert.Equal(t, 1, logs.FilterMessageSnippet("corrupt").Len())

	blob, ok, err := storage.Get(ctx, DefaultStorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, string(blob))
}

func TestStore_FailedSaveLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	storage := &flakyStorage{MemoryStorage: NewMemoryStorage()}
	store := NewStore(storage, testOptions())
	_, err := store.Add(ctx, newSub("A", "10", FrequencyMonthly, "2024-07-01"))
	require.NoError(t, err)
	before := store.List()

	storage.failSet = true

	_, err = store.Add(ctx, newSub("B", "10", FrequencyMonthly, "2024-07-01"))
	assert.ErrorIs(t, err, errSetFailed)

	name := "X"
	_, err = store.Update(ctx, "id-1", Patch{Name: &name})
	assert.ErrorIs(t, err, errSetFailed)

	_, err = store.Delete(ctx, "id-1")
	assert.ErrorIs(t, err, errSetFailed)

	assert.Equal(t, before, store.List())
}

func TestStore_LoadStorageError(t *testing.T) {
	store := NewStore(brokenStorage{}, testOptions())
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, errGetFailed)
}

var errGetFailed = errors.New("get failed")

type brokenStorage struct{}

func (brokenStorage) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errGetFailed }
func (brokenStorage) Set(context.Context, string, []byte) error { return nil }

func TestStore_ResolveID(t *testing.T) {
	ctx := context.Background()
	ids := []string{"abc123", "abd456", "xyz789"}
	i := 0
	store := NewStore(NewMemoryStorage(), StoreOptions{NewID: func() string {
		id := ids[i]
		i++
		return id
	}})
	for range ids {
		_, err := store.Add(ctx, newSub("S", "1", FrequencyMonthly, "2024-07-01"))
		require.NoError(t, err)
	}

	tests := []struct {
		prefix  string
		want    string
		outcome Outcome
	}{
		{"abc123", "abc123", OutcomeOK},
		{"abc", "abc123", OutcomeOK},
		{"x", "xyz789", OutcomeOK},
		{"ab", "", OutcomeNotFound}, // ambiguous
		{"q", "", OutcomeNotFound},
		{"", "", OutcomeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, outcome := store.ResolveID(tt.prefix)
			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_Summary(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), testOptions())
	_, err := store.Add(ctx, newSub("Monthly", "10", FrequencyMonthly, "2024-06-16"))
	require.NoError(t, err)
	_, err = store.Add(ctx, newSub("Yearly", "120", FrequencyYearly, "2024-12-01"))
	require.NoError(t, err)

	summary := store.Summary()
	assert.Equal(t, 2, summary.Count)
	assert.True(t, summary.TotalMonthly.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 1, summary.Rows[0].DaysLeft)
	assert.Equal(t, BucketDueSoon, summary.Rows[0].Bucket)
}
