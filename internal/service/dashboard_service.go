package service

import (
	"cmp"
	"slices"
	"time"

	"github.com/habitlog/internal/db"
)

const (
	dashboardTopN      = 5
	dashboardWeekDays  = 7
	completionDecimals = 1
)

// DashboardService 把统计、目标与日志聚合成首页所需的数据
type DashboardService struct {
	logs      *DailyLogService
	analytics *AnalyticsService
	goals     *GoalService
}

// DashboardGoal 是某个生效目标及其当天进度
type DashboardGoal struct {
	Goal     db.Goal
	Progress GoalProgress
}

// HabitStreak 是某习惯截至当天的连续天数
type HabitStreak struct {
	HabitID string
	Streak  int
}

// HabitActivity 是某习惯在一段时间内的记录天数
type HabitActivity struct {
	HabitID    string
	DaysLogged int
}

// Dashboard 汇总某天的完成度、目标、连续天数与近 7 天情况
type Dashboard struct {
	Date                 time.Time
	TotalHabits          int
	LoggedHabits         int
	CompletionPercentage float64
	ActiveGoals          []DashboardGoal
	GoalsMet             int
	CurrentStreaks       []HabitStreak
	WeekStart            time.Time
	WeekEnd              time.Time
	TopHabits            []HabitActivity
	WeeklyLogs           int
}

// QuickDashboard 只包含最核心的几个数字
type QuickDashboard struct {
	Date                 time.Time
	HabitsLogged         int
	TotalHabits          int
	CompletionPercentage float64
	ActiveGoals          int
	GoalsMet             int
}

// NewDashboardService 构造 DashboardService
func NewDashboardService(logs *DailyLogService, analytics *AnalyticsService, goals *GoalService) *DashboardService {
	return &DashboardService{logs: logs, analytics: analytics, goals: goals}
}

// Dashboard 生成完整的看板数据
func (s *DashboardService) Dashboard(date time.Time) (*Dashboard, error) {
	day := normalizeToDate(date)

	summary, err := s.analytics.DailySummary(day)
	if err != nil {
		return nil, err
	}

	board := &Dashboard{
		Date:                 day,
		TotalHabits:          summary.TotalHabits,
		LoggedHabits:         summary.LoggedHabits,
		CompletionPercentage: completionPercentage(summary),
		ActiveGoals:          []DashboardGoal{},
		CurrentStreaks:       []HabitStreak{},
		TopHabits:            []HabitActivity{},
	}

	goals, err := s.goals.List()
	if err != nil {
		return nil, err
	}
	for _, goal := range goals {
		if !GoalActiveOn(goal, day) {
			continue
		}
		progress, err := s.goals.evaluate(goal, day)
		if err != nil {
			return nil, err
		}
		board.ActiveGoals = append(board.ActiveGoals, DashboardGoal{Goal: goal, Progress: *progress})
		if progress.IsMet != nil && *progress.IsMet {
			board.GoalsMet++
		}
	}

	for _, habitID := range summary.LoggedHabitIDs {
		streak, err := s.analytics.CurrentStreak(habitID, day)
		if err != nil {
			return nil, err
		}
		board.CurrentStreaks = append(board.CurrentStreaks, HabitStreak{HabitID: habitID, Streak: streak})
	}
	slices.SortStableFunc(board.CurrentStreaks, func(a, b HabitStreak) int {
		return cmp.Compare(b.Streak, a.Streak)
	})
	board.CurrentStreaks = truncate(board.CurrentStreaks, dashboardTopN)

	board.WeekStart = day.AddDate(0, 0, -(dashboardWeekDays - 1))
	board.WeekEnd = day
	logs, err := s.logs.GetByDateRange(board.WeekStart, board.WeekEnd)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var activity []HabitActivity
	for _, log := range logs {
		for _, habitID := range log.HabitIDs() {
			i, ok := index[habitID]
			if !ok {
				i = len(activity)
				index[habitID] = i
				activity = append(activity, HabitActivity{HabitID: habitID})
			}
			activity[i].DaysLogged++
			board.WeeklyLogs++
		}
	}
	slices.SortStableFunc(activity, func(a, b HabitActivity) int {
		return cmp.Compare(b.DaysLogged, a.DaysLogged)
	})
	if len(activity) > 0 {
		board.TopHabits = truncate(activity, dashboardTopN)
	}

	return board, nil
}

// QuickDashboard 生成精简版看板
func (s *DashboardService) QuickDashboard(date time.Time) (*QuickDashboard, error) {
	day := normalizeToDate(date)

	summary, err := s.analytics.DailySummary(day)
	if err != nil {
		return nil, err
	}

	progress, err := s.goals.CheckDailyGoals(day)
	if err != nil {
		return nil, err
	}

	quick := &QuickDashboard{
		Date:                 day,
		HabitsLogged:         summary.LoggedHabits,
		TotalHabits:          summary.TotalHabits,
		CompletionPercentage: completionPercentage(summary),
		ActiveGoals:          len(progress),
	}
	for _, p := range progress {
		if p.IsMet != nil && *p.IsMet {
			quick.GoalsMet++
		}
	}
	return quick, nil
}

func completionPercentage(summary *DailySummary) float64 {
	if summary.TotalHabits == 0 {
		return 0
	}
	return roundTo(float64(summary.LoggedHabits)/float64(summary.TotalHabits)*100, completionDecimals)
}

func truncate[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
