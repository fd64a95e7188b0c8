package service

import (
	"fmt"
	"math"
	"time"

	"github.com/habitlog/internal/db"
)

// DefaultStreakLookbackDays 是当前连续天数向前回溯的默认上限
const DefaultStreakLookbackDays = 365

// AnalyticsService 基于原始记录计算统计、连续天数、趋势与完成率。
// 所有按习惯的计算都会先确认习惯存在。
type AnalyticsService struct {
	entries        EntryStore
	habits         HabitCatalog
	streakLookback int
	now            func() time.Time
}

// HabitStatistics 汇总区间内的数值统计
type HabitStatistics struct {
	HabitID     string
	Start       time.Time
	End         time.Time
	Min         float64
	Max         float64
	Average     float64
	Total       float64
	Count       int
	DaysLogged  int
	DaysInRange int
}

// StreakRun 描述一段连续记录；没有记录时 Start/End 为 nil
type StreakRun struct {
	HabitID string
	Length  int
	Start   *time.Time
	End     *time.Time
}

// DataPoint 是按天补齐的序列中的一个点
type DataPoint struct {
	Date  time.Time
	Value float64
}

// DailySummary 描述某天的记录概况
type DailySummary struct {
	Date           time.Time
	TotalHabits    int
	LoggedHabits   int
	LoggedHabitIDs []string
}

// CompletionRate 描述区间完成率（百分比，保留两位小数）
type CompletionRate struct {
	HabitID       string
	Threshold     float64
	Rate          float64
	DaysCompleted int
	TotalDays     int
}

// NewAnalyticsService 创建 AnalyticsService，默认回溯 365 天。
func NewAnalyticsService(entries EntryStore, habits HabitCatalog) *AnalyticsService {
	return &AnalyticsService{
		entries:        entries,
		habits:         habits,
		streakLookback: DefaultStreakLookbackDays,
		now:            time.Now,
	}
}

// WithStreakLookback 调整当前连续天数的回溯上限。
func (s *AnalyticsService) WithStreakLookback(days int) *AnalyticsService {
	if days <= 0 {
		return s
	}
	s.streakLookback = days
	return s
}

// WithClock 替换“今天”的来源，便于测试。
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *AnalyticsService) ensureHabit(habitID string) error {
	if _, err := s.habits.Get(habitID); err != nil {
		return err
	}
	return nil
}

func (s *AnalyticsService) habitEntries(habitID string, start, end time.Time) ([]db.HabitEntry, error) {
	if err := s.ensureHabit(habitID); err != nil {
		return nil, err
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	return s.entries.GetRange(habitID, normalizeToDate(start), normalizeToDate(end))
}

// Statistics 计算区间内的最小、最大、平均、合计与记录天数
func (s *AnalyticsService) Statistics(habitID string, start, end time.Time) (*HabitStatistics, error) {
	entries, err := s.habitEntries(habitID, start, end)
	if err != nil {
		return nil, err
	}

	stats := &HabitStatistics{
		HabitID:     habitID,
		Start:       normalizeToDate(start),
		End:         normalizeToDate(end),
		DaysInRange: daysInRange(start, end),
	}
	if len(entries) == 0 {
		return stats, nil
	}

	days := make(map[string]struct{}, len(entries))
	stats.Min = entries[0].Value
	stats.Max = entries[0].Value
	for _, entry := range entries {
		stats.Min = math.Min(stats.Min, entry.Value)
		stats.Max = math.Max(stats.Max, entry.Value)
		stats.Total += entry.Value
		days[entry.EntryDate] = struct{}{}
	}
	stats.Count = len(entries)
	stats.DaysLogged = len(days)
	stats.Average = stats.Total / float64(stats.Count)

	return stats, nil
}

// CurrentStreak 从 asOf（零值表示今天）向前逐天检查，遇到第一天无记录即停止
func (s *AnalyticsService) CurrentStreak(habitID string, asOf time.Time) (int, error) {
	if err := s.ensureHabit(habitID); err != nil {
		return 0, err
	}
	if asOf.IsZero() {
		asOf = s.now()
	}

	streak := 0
	day := normalizeToDate(asOf)
	for i := 0; i < s.streakLookback; i++ {
		entry, err := s.entries.Get(habitID, day)
		if err != nil {
			return 0, fmt.Errorf("current streak: %w", err)
		}
		if entry == nil {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

// LongestStreak 在区间内寻找最长连续记录，长度相同时保留最早的一段
func (s *AnalyticsService) LongestStreak(habitID string, start, end time.Time) (*StreakRun, error) {
	entries, err := s.habitEntries(habitID, start, end)
	if err != nil {
		return nil, err
	}

	run := &StreakRun{HabitID: habitID}
	if len(entries) == 0 {
		return run, nil
	}

	logged := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		logged[entry.EntryDate] = struct{}{}
	}

	var (
		current      int
		currentStart time.Time
	)
	eachDay(start, end, func(day time.Time) {
		if _, ok := logged[FormatDate(day)]; !ok {
			current = 0
			return
		}
		if current == 0 {
			currentStart = day
		}
		current++
		if current > run.Length {
			runStart, runEnd := currentStart, day
			run.Length = current
			run.Start = &runStart
			run.End = &runEnd
		}
	})

	return run, nil
}

// CalendarData 返回某月每天的数值，缺失的天补 0
func (s *AnalyticsService) CalendarData(habitID string, year int, month time.Month) ([]DataPoint, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month must be between 1 and 12, got %d", ErrValidation, month)
	}
	first, last := monthBounds(year, month)
	return s.Trend(habitID, first, last)
}

// Trend 返回区间内每天的数值，缺失的天补 0
func (s *AnalyticsService) Trend(habitID string, start, end time.Time) ([]DataPoint, error) {
	entries, err := s.habitEntries(habitID, start, end)
	if err != nil {
		return nil, err
	}

	values := make(map[string]float64, len(entries))
	for _, entry := range entries {
		values[entry.EntryDate] = entry.Value
	}

	points := make([]DataPoint, 0, daysInRange(start, end))
	eachDay(start, end, func(day time.Time) {
		points = append(points, DataPoint{Date: day, Value: values[FormatDate(day)]})
	})
	return points, nil
}

// DailySummary 统计某天已记录的习惯数量，目录为空时同样返回结果
func (s *AnalyticsService) DailySummary(date time.Time) (*DailySummary, error) {
	habits, err := s.habits.List()
	if err != nil {
		return nil, err
	}

	log, err := s.entries.GetByDate(normalizeToDate(date))
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{
		Date:           normalizeToDate(date),
		TotalHabits:    len(habits),
		LoggedHabitIDs: []string{},
	}
	if log != nil {
		summary.LoggedHabitIDs = log.HabitIDs()
	}
	summary.LoggedHabits = len(summary.LoggedHabitIDs)

	return summary, nil
}

// CompletionRate 统计数值严格大于 threshold 的天数占比
func (s *AnalyticsService) CompletionRate(habitID string, start, end time.Time, threshold float64) (*CompletionRate, error) {
	entries, err := s.habitEntries(habitID, start, end)
	if err != nil {
		return nil, err
	}

	result := &CompletionRate{
		HabitID:   habitID,
		Threshold: threshold,
		TotalDays: daysInRange(start, end),
	}
	for _, entry := range entries {
		if entry.Value > threshold {
			result.DaysCompleted++
		}
	}
	if result.TotalDays > 0 {
		result.Rate = roundTo(float64(result.DaysCompleted)/float64(result.TotalDays)*100, 2)
	}
	return result, nil
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
