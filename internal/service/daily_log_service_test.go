package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/habitlog/internal/db"
)

type fakeProvider struct {
	name   string
	values map[string]float64
	err    error
	panic  bool
	calls  []string
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) FetchValue(_ context.Context, habit db.Habit, isoDate string) (*float64, error) {
	p.calls = append(p.calls, habit.ID+"@"+isoDate)
	if p.panic {
		panic("provider exploded")
	}
	if p.err != nil {
		return nil, p.err
	}
	value, ok := p.values[habit.ID]
	if !ok {
		return nil, nil
	}
	return &value, nil
}

// countingStore 统计 Save 调用次数
type countingStore struct {
	EntryStore
	saves int
}

func (s *countingStore) Save(log *DailyLog) error {
	s.saves++
	return s.EntryStore.Save(log)
}

var fixedNow = time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC)

func setupDailyLogTest(t *testing.T, providers ...DataProvider) (*DailyLogService, *countingStore, func()) {
	t.Helper()

	gdb, cleanup := setupServiceTestDB(t)
	habits := newTestCatalog(t, gdb)
	store := &countingStore{EntryStore: NewEntryRepository(gdb)}
	svc := NewDailyLogService(store, habits).
		WithProviders(providers...).
		WithClock(func() time.Time { return fixedNow }).
		WithLogger(quietLogger())
	return svc, store, cleanup
}

func TestDailyLogServiceGetOrCreateReturnsEmptyLog(t *testing.T) {
	svc, store, cleanup := setupDailyLogTest(t)
	defer cleanup()

	log, err := svc.GetOrCreate(mustDate(t, "2024-01-02"))
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	if len(log.Entries) != 0 || FormatDate(log.Date) != "2024-01-02" {
		t.Fatalf("unexpected log: %+v", log)
	}
	if store.saves != 0 {
		t.Fatal("GetOrCreate should not persist")
	}
}

func TestDailyLogServiceRecordManual(t *testing.T) {
	svc, _, cleanup := setupDailyLogTest(t)
	defer cleanup()

	date := mustDate(t, "2024-01-02")
	if _, err := svc.RecordManual(date, "reading", 12); err != nil {
		t.Fatalf("RecordManual returned error: %v", err)
	}
	log, err := svc.RecordManual(date, "reading", 30)
	if err != nil {
		t.Fatalf("RecordManual returned error: %v", err)
	}

	entry, ok := log.Entry("reading")
	if !ok || entry.Value != 30 || entry.Source != db.SourceManual {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if !entry.RecordedAt.Equal(fixedNow) {
		t.Fatalf("expected recorded_at from clock, got %s", entry.RecordedAt)
	}

	stored, err := svc.GetOrCreate(date)
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	if len(stored.Entries) != 1 || stored.Entries["reading"].Value != 30 {
		t.Fatalf("expected last write to win, got %+v", stored.Entries)
	}
}

func TestDailyLogServiceRecordManualUnknownHabit(t *testing.T) {
	svc, store, cleanup := setupDailyLogTest(t)
	defer cleanup()

	if _, err := svc.RecordManual(mustDate(t, "2024-01-02"), "juggling", 1); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound, got %v", err)
	}
	if store.saves != 0 {
		t.Fatal("nothing should be saved for an unknown habit")
	}
}

func TestDailyLogServiceSyncSkipsFailingProviders(t *testing.T) {
	garmin := &fakeProvider{name: ProviderGarmin, values: map[string]float64{"steps": 12000, "exercise": 45}}
	github := &fakeProvider{name: ProviderGitHub, err: &ProviderError{Provider: ProviderGitHub, Kind: ProviderErrorRateLimit}}
	goodreads := &fakeProvider{name: ProviderGoodreads, panic: true}

	svc, store, cleanup := setupDailyLogTest(t, garmin, github, goodreads)
	defer cleanup()

	date := mustDate(t, "2024-01-02")
	if _, err := svc.RecordManual(date, "reading", 12); err != nil {
		t.Fatalf("RecordManual returned error: %v", err)
	}
	store.saves = 0

	log, err := svc.SyncAutomatic(context.Background(), date)
	if err != nil {
		t.Fatalf("SyncAutomatic returned error: %v", err)
	}

	if store.saves != 1 {
		t.Fatalf("expected a single save, got %d", store.saves)
	}
	if len(garmin.calls) != 3 {
		t.Fatalf("expected garmin to be asked for 3 habits, got %v", garmin.calls)
	}
	if len(github.calls) != 1 || len(goodreads.calls) != 1 {
		t.Fatalf("expected failing providers to be called once each: %v %v", github.calls, goodreads.calls)
	}

	ids := log.HabitIDs()
	want := []string{"exercise", "reading", "steps"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
	if log.Entries["steps"].Source != db.SourceAutomatic || log.Entries["reading"].Source != db.SourceManual {
		t.Fatalf("unexpected sources: %+v", log.Entries)
	}

	stored, err := svc.GetOrCreate(date)
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	if stored.Entries["steps"].Value != 12000 {
		t.Fatalf("synced value not persisted: %+v", stored.Entries)
	}
}

func TestDailyLogServiceSyncUsesFirstMatchingProvider(t *testing.T) {
	first := &fakeProvider{name: ProviderGitHub, values: map[string]float64{"github_contributions": 7}}
	second := &fakeProvider{name: ProviderGitHub, values: map[string]float64{"github_contributions": 99}}

	svc, _, cleanup := setupDailyLogTest(t, first, second)
	defer cleanup()

	log, err := svc.SyncAutomatic(context.Background(), mustDate(t, "2024-01-02"))
	if err != nil {
		t.Fatalf("SyncAutomatic returned error: %v", err)
	}
	if log.Entries["github_contributions"].Value != 7 {
		t.Fatalf("expected first provider to win, got %+v", log.Entries["github_contributions"])
	}
	if len(second.calls) != 0 {
		t.Fatalf("second provider should not be called: %v", second.calls)
	}
	if first.calls[0] != "github_contributions@2024-01-02" {
		t.Fatalf("unexpected provider call: %v", first.calls)
	}
}

func TestDailyLogServiceSyncWithoutProviders(t *testing.T) {
	svc, store, cleanup := setupDailyLogTest(t)
	defer cleanup()

	log, err := svc.SyncAutomatic(context.Background(), mustDate(t, "2024-01-02"))
	if err != nil {
		t.Fatalf("SyncAutomatic returned error: %v", err)
	}
	if len(log.Entries) != 0 {
		t.Fatalf("expected no entries, got %+v", log.Entries)
	}
	if store.saves != 1 {
		t.Fatalf("expected sync to save once, got %d", store.saves)
	}
}

func TestDailyLogServiceRangeQueries(t *testing.T) {
	svc, _, cleanup := setupDailyLogTest(t)
	defer cleanup()

	for _, day := range []string{"2024-01-01", "2024-01-03"} {
		if _, err := svc.RecordManual(mustDate(t, day), "meditation", 10); err != nil {
			t.Fatalf("RecordManual returned error: %v", err)
		}
	}

	logs, err := svc.GetByDateRange(mustDate(t, "2024-01-01"), mustDate(t, "2024-01-31"))
	if err != nil || len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d (err=%v)", len(logs), err)
	}
	entries, err := svc.EntriesByHabit("meditation", mustDate(t, "2024-01-02"), mustDate(t, "2024-01-03"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d (err=%v)", len(entries), err)
	}
	if _, err := svc.GetByDateRange(mustDate(t, "2024-01-31"), mustDate(t, "2024-01-01")); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if _, err := svc.EntriesByHabit("juggling", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-02")); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound, got %v", err)
	}
}

func TestProviderErrorMatchesKind(t *testing.T) {
	cause := errors.New("boom")
	err := error(&ProviderError{Provider: ProviderGitHub, Kind: ProviderErrorRateLimit, RetryAfter: 30 * time.Second, Err: cause})

	if !errors.Is(err, ErrProvider) || !errors.Is(err, cause) {
		t.Fatalf("expected ProviderError to match ErrProvider and its cause: %v", err)
	}
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) || providerErr.RetryAfter != 30*time.Second {
		t.Fatalf("expected errors.As to expose RetryAfter, got %+v", providerErr)
	}
}
