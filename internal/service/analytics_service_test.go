package service

import (
	"errors"
	"testing"
	"time"
)

func setupAnalyticsTest(t *testing.T) (*AnalyticsService, *EntryRepository, func()) {
	t.Helper()

	gdb, cleanup := setupServiceTestDB(t)
	habits := newTestCatalog(t, gdb)
	store := NewEntryRepository(gdb)
	return NewAnalyticsService(store, habits), store, cleanup
}

func TestAnalyticsStatistics(t *testing.T) {
	svc, store, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	seedEntries(t, store, "reading", map[string]float64{
		"2024-01-01": 10,
		"2024-01-02": 30,
		"2024-01-04": 20,
	})

	stats, err := svc.Statistics("reading", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-07"))
	if err != nil {
		t.Fatalf("Statistics returned error: %v", err)
	}

	if stats.Min != 10 || stats.Max != 30 || stats.Total != 60 || stats.Average != 20 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Count != 3 || stats.DaysLogged != 3 || stats.DaysInRange != 7 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
}

func TestAnalyticsStatisticsWithoutEntries(t *testing.T) {
	svc, _, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	stats, err := svc.Statistics("reading", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-31"))
	if err != nil {
		t.Fatalf("Statistics returned error: %v", err)
	}
	if stats.Min != 0 || stats.Max != 0 || stats.Average != 0 || stats.Total != 0 || stats.Count != 0 || stats.DaysLogged != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
	if stats.DaysInRange != 31 {
		t.Fatalf("expected 31 days in range, got %d", stats.DaysInRange)
	}
}

func TestAnalyticsRejectsUnknownHabitAndInvertedRange(t *testing.T) {
	svc, _, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	start := mustDate(t, "2024-01-10")
	end := mustDate(t, "2024-01-01")

	if _, err := svc.Statistics("juggling", end, start); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound, got %v", err)
	}
	if _, err := svc.Statistics("reading", start, end); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if _, err := svc.Trend("reading", start, end); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange from Trend, got %v", err)
	}
	if _, err := svc.CurrentStreak("juggling", time.Time{}); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound from CurrentStreak, got %v", err)
	}
}

func TestAnalyticsCurrentStreak(t *testing.T) {
	svc, store, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	seedEntries(t, store, "meditation", map[string]float64{
		"2024-01-01": 10,
		"2024-01-03": 10,
		"2024-01-04": 10,
		"2024-01-05": 10,
	})

	streak, err := svc.CurrentStreak("meditation", mustDate(t, "2024-01-05"))
	if err != nil {
		t.Fatalf("CurrentStreak returned error: %v", err)
	}
	if streak != 3 {
		t.Fatalf("expected streak 3, got %d", streak)
	}

	streak, err = svc.CurrentStreak("meditation", mustDate(t, "2024-01-06"))
	if err != nil {
		t.Fatalf("CurrentStreak returned error: %v", err)
	}
	if streak != 0 {
		t.Fatalf("expected streak 0 when as_of is missing, got %d", streak)
	}
}

func TestAnalyticsCurrentStreakDefaultsToToday(t *testing.T) {
	svc, store, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	seedEntries(t, store, "reading", map[string]float64{"2024-06-01": 5, "2024-06-02": 5})
	svc.WithClock(func() time.Time { return time.Date(2024, 6, 2, 21, 0, 0, 0, time.UTC) })

	streak, err := svc.CurrentStreak("reading", time.Time{})
	if err != nil {
		t.Fatalf("CurrentStreak returned error: %v", err)
	}
	if streak != 2 {
		t.Fatalf("expected streak 2, got %d", streak)
	}
}

func TestAnalyticsCurrentStreakRespectsLookback(t *testing.T) {
	svc, store, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	values := map[string]float64{}
	for day := 1; day <= 10; day++ {
		values[FormatDate(time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC))] = 1
	}
	seedEntries(t, store, "reading", values)

	svc.WithStreakLookback(4)
	streak, err := svc.CurrentStreak("reading", mustDate(t, "2024-01-10"))
	if err != nil {
		t.Fatalf("CurrentStreak returned error: %v", err)
	}
	if streak != 4 {
		t.Fatalf("expected lookback to cap streak at 4, got %d", streak)
	}
}

func TestAnalyticsLongestStreakFirstMaximalRunWins(t *testing.T) {
	svc, store, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	seedEntries(t, store, "reading", map[string]float64{
		"2024-01-01": 1,
		"2024-01-02": 1,
		"2024-01-04": 1,
		"2024-01-05": 1,
		"2024-01-07": 1,
	})

	run, err := svc.LongestStreak("reading", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-07"))
	if err != nil {
		t.Fatalf("LongestStreak returned error: %v", err)
	}
	if run.Length != 2 {
		t.Fatalf("expected length 2, got %d", run.Length)
	}
	if FormatDate(*run.Start) != "2024-01-01" || FormatDate(*run.End) != "2024-01-02" {
		t.Fatalf("expected first run to win, got %s..%s", FormatDate(*run.Start), FormatDate(*run.End))
	}
}

func TestAnalyticsLongestStreakWithoutEntries(t *testing.T) {
	svc, _, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	run, err := svc.LongestStreak("reading", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-07"))
	if err != nil {
		t.Fatalf("LongestStreak returned error: %v", err)
	}
	if run.Length != 0 || run.Start != nil || run.End != nil {
		t.Fatalf("expected empty run, got %+v", run)
	}
}

func TestAnalyticsCalendarLeapYear(t *testing.T) {
	svc, store, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	seedEntries(t, store, "steps", map[string]float64{"2024-02-29": 8000})

	points, err := svc.CalendarData("steps", 2024, time.February)
	if err != nil {
		t.Fatalf("CalendarData returned error: %v", err)
	}
	if len(points) != 29 {
		t.Fatalf("expected 29 points for February 2024, got %d", len(points))
	}
	last := points[len(points)-1]
	if FormatDate(last.Date) != "2024-02-29" || last.Value != 8000 {
		t.Fatalf("unexpected last point: %+v", last)
	}
	if points[0].Value != 0 {
		t.Fatalf("missing days should be 0, got %v", points[0].Value)
	}
}

func TestAnalyticsCalendarDecemberAndInvalidMonth(t *testing.T) {
	svc, _, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	points, err := svc.CalendarData("steps", 2023, time.December)
	if err != nil {
		t.Fatalf("CalendarData returned error: %v", err)
	}
	if len(points) != 31 || FormatDate(points[30].Date) != "2023-12-31" {
		t.Fatalf("unexpected December calendar: %d points", len(points))
	}

	if _, err := svc.CalendarData("steps", 2023, 13); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for month 13, got %v", err)
	}
	if _, err := svc.CalendarData("steps", 2023, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for month 0, got %v", err)
	}
}

func TestAnalyticsTrendFillsGaps(t *testing.T) {
	svc, store, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	seedEntries(t, store, "deep_work", map[string]float64{"2024-01-02": 2.5})

	points, err := svc.Trend("deep_work", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-03"))
	if err != nil {
		t.Fatalf("Trend returned error: %v", err)
	}
	want := []float64{0, 2.5, 0}
	if len(points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(points))
	}
	for i, v := range want {
		if points[i].Value != v {
			t.Fatalf("point %d: expected %v, got %v", i, v, points[i].Value)
		}
	}
}

func TestAnalyticsDailySummary(t *testing.T) {
	svc, store, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	seedEntries(t, store, "steps", map[string]float64{"2024-01-01": 9000})
	seedEntries(t, store, "reading", map[string]float64{"2024-01-01": 12})

	summary, err := svc.DailySummary(mustDate(t, "2024-01-01"))
	if err != nil {
		t.Fatalf("DailySummary returned error: %v", err)
	}
	if summary.TotalHabits != len(defaultHabitDefinitions) || summary.LoggedHabits != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.LoggedHabitIDs[0] != "reading" || summary.LoggedHabitIDs[1] != "steps" {
		t.Fatalf("expected sorted ids, got %v", summary.LoggedHabitIDs)
	}
}

func TestAnalyticsDailySummaryEmptyCatalog(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	habits := NewHabitService(gdb).WithLogger(quietLogger()).WithDefinitions(nil)
	svc := NewAnalyticsService(NewEntryRepository(gdb), habits)

	summary, err := svc.DailySummary(mustDate(t, "2024-01-01"))
	if err != nil {
		t.Fatalf("DailySummary returned error: %v", err)
	}
	if summary.TotalHabits != 0 || summary.LoggedHabits != 0 || len(summary.LoggedHabitIDs) != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}

func TestAnalyticsCompletionRate(t *testing.T) {
	svc, store, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	seedEntries(t, store, "reading", map[string]float64{
		"2024-01-01": 5,
		"2024-01-02": 0,
		"2024-01-03": 10,
	})

	rate, err := svc.CompletionRate("reading", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-03"), 0)
	if err != nil {
		t.Fatalf("CompletionRate returned error: %v", err)
	}
	if rate.DaysCompleted != 2 || rate.TotalDays != 3 {
		t.Fatalf("unexpected counts: %+v", rate)
	}
	if rate.Rate != 66.67 {
		t.Fatalf("expected 66.67, got %v", rate.Rate)
	}

	// 阈值是严格大于
	rate, err = svc.CompletionRate("reading", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-03"), 5)
	if err != nil {
		t.Fatalf("CompletionRate returned error: %v", err)
	}
	if rate.DaysCompleted != 1 || rate.Rate != 33.33 {
		t.Fatalf("unexpected rate with threshold 5: %+v", rate)
	}
}
