package service

import (
	"testing"

	"github.com/habitlog/internal/db"
)

func setupDashboardTest(t *testing.T) (*DashboardService, *GoalService, *EntryRepository, func()) {
	t.Helper()

	gdb, cleanup := setupServiceTestDB(t)
	habits := newTestCatalog(t, gdb)
	store := NewEntryRepository(gdb)
	logs := NewDailyLogService(store, habits).WithLogger(quietLogger())
	analytics := NewAnalyticsService(store, habits)
	goals := NewGoalService(NewGoalRepository(gdb), store, habits).WithLogger(quietLogger())
	return NewDashboardService(logs, analytics, goals), goals, store, cleanup
}

func seedDashboardWeek(t *testing.T, goals *GoalService, store *EntryRepository) {
	t.Helper()

	seedEntries(t, store, "reading", map[string]float64{"2024-01-05": 20, "2024-01-06": 20, "2024-01-07": 20})
	seedEntries(t, store, "steps", map[string]float64{"2024-01-07": 12000})
	seedEntries(t, store, "meditation", map[string]float64{"2024-01-01": 10, "2024-01-07": 10})

	inputs := []GoalInput{
		{ID: "steps-daily", HabitID: "steps", TargetValue: 10000, Comparison: db.ComparisonAtLeast, Period: db.PeriodDaily, StartDate: mustDate(t, "2024-01-01")},
		{ID: "reading-daily", HabitID: "reading", TargetValue: 100, Comparison: db.ComparisonAtLeast, Period: db.PeriodDaily, StartDate: mustDate(t, "2024-01-01")},
		{ID: "future", HabitID: "reading", TargetValue: 1, Comparison: db.ComparisonAtLeast, Period: db.PeriodDaily, StartDate: mustDate(t, "2024-02-01")},
	}
	for _, input := range inputs {
		if _, err := goals.Create(input); err != nil {
			t.Fatalf("Create(%s) returned error: %v", input.ID, err)
		}
	}
}

func TestDashboardAggregatesDay(t *testing.T) {
	svc, goals, store, cleanup := setupDashboardTest(t)
	defer cleanup()
	seedDashboardWeek(t, goals, store)

	board, err := svc.Dashboard(mustDate(t, "2024-01-07"))
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}

	if board.TotalHabits != len(defaultHabitDefinitions) || board.LoggedHabits != 3 {
		t.Fatalf("unexpected summary: total=%d logged=%d", board.TotalHabits, board.LoggedHabits)
	}
	if board.CompletionPercentage != 37.5 {
		t.Fatalf("expected 37.5%%, got %v", board.CompletionPercentage)
	}

	if len(board.ActiveGoals) != 2 || board.GoalsMet != 1 {
		t.Fatalf("expected 2 active goals with 1 met, got %d/%d", len(board.ActiveGoals), board.GoalsMet)
	}

	wantStreaks := []HabitStreak{{"reading", 3}, {"meditation", 1}, {"steps", 1}}
	if len(board.CurrentStreaks) != len(wantStreaks) {
		t.Fatalf("unexpected streaks: %+v", board.CurrentStreaks)
	}
	for i, want := range wantStreaks {
		if board.CurrentStreaks[i] != want {
			t.Fatalf("streak %d: expected %+v, got %+v", i, want, board.CurrentStreaks[i])
		}
	}

	if FormatDate(board.WeekStart) != "2024-01-01" || FormatDate(board.WeekEnd) != "2024-01-07" {
		t.Fatalf("unexpected week window: %s..%s", FormatDate(board.WeekStart), FormatDate(board.WeekEnd))
	}
	wantTop := []HabitActivity{{"reading", 3}, {"meditation", 2}, {"steps", 1}}
	for i, want := range wantTop {
		if board.TopHabits[i] != want {
			t.Fatalf("top habit %d: expected %+v, got %+v", i, want, board.TopHabits[i])
		}
	}
	if board.WeeklyLogs != 6 {
		t.Fatalf("expected 6 weekly logs, got %d", board.WeeklyLogs)
	}
}

func TestDashboardEmptyDay(t *testing.T) {
	svc, _, _, cleanup := setupDashboardTest(t)
	defer cleanup()

	board, err := svc.Dashboard(mustDate(t, "2024-03-01"))
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if board.LoggedHabits != 0 || board.CompletionPercentage != 0 || board.WeeklyLogs != 0 {
		t.Fatalf("expected empty dashboard, got %+v", board)
	}
	if board.ActiveGoals == nil || board.CurrentStreaks == nil || board.TopHabits == nil {
		t.Fatal("empty collections should be non-nil for JSON output")
	}
}

func TestQuickDashboard(t *testing.T) {
	svc, goals, store, cleanup := setupDashboardTest(t)
	defer cleanup()
	seedDashboardWeek(t, goals, store)

	quick, err := svc.QuickDashboard(mustDate(t, "2024-01-07"))
	if err != nil {
		t.Fatalf("QuickDashboard returned error: %v", err)
	}
	if quick.HabitsLogged != 3 || quick.TotalHabits != len(defaultHabitDefinitions) {
		t.Fatalf("unexpected counts: %+v", quick)
	}
	if quick.ActiveGoals != 2 || quick.GoalsMet != 1 || quick.CompletionPercentage != 37.5 {
		t.Fatalf("unexpected goal counts: %+v", quick)
	}
}
