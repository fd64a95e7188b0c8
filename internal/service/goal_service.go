package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/habitlog/internal/db"
	"github.com/sirupsen/logrus"
)

// GoalService 管理目标并按周期评估完成情况
type GoalService struct {
	goals   GoalStore
	entries EntryStore
	habits  HabitCatalog
	log     logrus.FieldLogger
}

// GoalInput 创建目标时的参数，ID 为空时自动生成
type GoalInput struct {
	ID          string
	HabitID     string
	TargetValue float64
	Comparison  db.GoalComparison
	Period      db.GoalPeriod
	StartDate   time.Time
	EndDate     *time.Time
	Description string
}

// GoalUpdate 只更新非 nil 的字段
type GoalUpdate struct {
	TargetValue *float64
	Comparison  *db.GoalComparison
	EndDate     *time.Time
	Description *string
}

// GoalProgress 描述目标在某天的评估结果。
// 未生效或周期内没有记录时 ActualValue 为 nil，此时不给出 IsMet。
type GoalProgress struct {
	GoalID      string
	HabitID     string
	Date        time.Time
	IsActive    bool
	ActualValue *float64
	TargetValue *float64
	Comparison  *db.GoalComparison
	IsMet       *bool
}

// NewGoalService 构造 GoalService
func NewGoalService(goals GoalStore, entries EntryStore, habits HabitCatalog) *GoalService {
	return &GoalService{goals: goals, entries: entries, habits: habits, log: logrus.StandardLogger()}
}

// WithLogger 设置日志输出
func (s *GoalService) WithLogger(logger logrus.FieldLogger) *GoalService {
	if logger != nil {
		s.log = logger
	}
	return s
}

// Create 校验并保存新目标
func (s *GoalService) Create(input GoalInput) (*db.Goal, error) {
	if _, err := s.habits.Get(input.HabitID); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.NewString()
	}
	existing, err := s.goals.Get(id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: goal %s already exists", ErrDuplicateResource, id)
	}

	if !input.Comparison.Valid() {
		return nil, fmt.Errorf("%w: unsupported comparison %q", ErrValidation, input.Comparison)
	}
	if !input.Period.Valid() {
		return nil, fmt.Errorf("%w: unsupported period %q", ErrValidation, input.Period)
	}
	if input.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", ErrValidation)
	}
	start := normalizeToDate(input.StartDate)
	if input.EndDate != nil && normalizeToDate(*input.EndDate).Before(start) {
		return nil, fmt.Errorf("%w: start date must be on or before end date", ErrInvalidGoalConfig)
	}

	goal := &db.Goal{
		ID:          id,
		HabitID:     input.HabitID,
		TargetValue: input.TargetValue,
		Comparison:  input.Comparison,
		Period:      input.Period,
		StartDate:   FormatDate(start),
		Description: sanitizeGoalDescription(input.Description),
	}
	if input.EndDate != nil {
		end := FormatDate(*input.EndDate)
		goal.EndDate = &end
	}

	if err := s.goals.Save(goal); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"goal_id": goal.ID, "habit_id": goal.HabitID}).Info("goal created")
	return goal, nil
}

// Update 部分更新目标
func (s *GoalService) Update(id string, update GoalUpdate) (*db.Goal, error) {
	goal, err := s.mustGet(id)
	if err != nil {
		return nil, err
	}

	if update.TargetValue != nil {
		goal.TargetValue = *update.TargetValue
	}
	if update.Comparison != nil {
		if !update.Comparison.Valid() {
			return nil, fmt.Errorf("%w: unsupported comparison %q", ErrValidation, *update.Comparison)
		}
		goal.Comparison = *update.Comparison
	}
	if update.EndDate != nil {
		end := FormatDate(*update.EndDate)
		if end < goal.StartDate {
			return nil, fmt.Errorf("%w: end date %s precedes start date %s", ErrInvalidGoalConfig, end, goal.StartDate)
		}
		goal.EndDate = &end
	}
	if update.Description != nil {
		goal.Description = sanitizeGoalDescription(*update.Description)
	}

	if err := s.goals.Save(goal); err != nil {
		return nil, err
	}
	s.log.WithField("goal_id", goal.ID).Info("goal updated")
	return goal, nil
}

// Delete 删除目标
func (s *GoalService) Delete(id string) error {
	if _, err := s.mustGet(id); err != nil {
		return err
	}
	if err := s.goals.Delete(id); err != nil {
		return err
	}
	s.log.WithField("goal_id", id).Info("goal deleted")
	return nil
}

// Get 获取目标，不存在时返回 ErrGoalNotFound
func (s *GoalService) Get(id string) (*db.Goal, error) {
	return s.mustGet(id)
}

func (s *GoalService) List() ([]db.Goal, error) {
	return s.goals.List()
}

func (s *GoalService) ListByHabit(habitID string) ([]db.Goal, error) {
	return s.goals.ListByHabit(habitID)
}

// ActiveGoals 返回某习惯在指定日期生效的目标
func (s *GoalService) ActiveGoals(habitID string, date time.Time) ([]db.Goal, error) {
	return s.goals.ListActive(habitID, normalizeToDate(date))
}

// CheckProgress 评估目标在指定日期的完成情况
func (s *GoalService) CheckProgress(id string, date time.Time) (*GoalProgress, error) {
	goal, err := s.mustGet(id)
	if err != nil {
		return nil, err
	}
	return s.evaluate(*goal, date)
}

// CheckDailyGoals 返回指定日期所有生效目标的进度
func (s *GoalService) CheckDailyGoals(date time.Time) ([]GoalProgress, error) {
	goals, err := s.goals.List()
	if err != nil {
		return nil, err
	}

	results := make([]GoalProgress, 0, len(goals))
	for _, goal := range goals {
		if !GoalActiveOn(goal, date) {
			continue
		}
		progress, err := s.evaluate(goal, date)
		if err != nil {
			return nil, err
		}
		results = append(results, *progress)
	}
	return results, nil
}

func (s *GoalService) evaluate(goal db.Goal, date time.Time) (*GoalProgress, error) {
	day := normalizeToDate(date)
	progress := &GoalProgress{GoalID: goal.ID, HabitID: goal.HabitID, Date: day}
	if !GoalActiveOn(goal, day) {
		return progress, nil
	}
	progress.IsActive = true

	actual, err := s.actualValue(goal, day)
	if err != nil {
		return nil, err
	}
	if actual == nil {
		return progress, nil
	}

	target := goal.TargetValue
	comparison := goal.Comparison
	met := GoalMet(comparison, *actual, target)
	progress.ActualValue = actual
	progress.TargetValue = &target
	progress.Comparison = &comparison
	progress.IsMet = &met
	return progress, nil
}

// actualValue 汇总目标周期内的记录，没有任何记录时返回 nil
func (s *GoalService) actualValue(goal db.Goal, day time.Time) (*float64, error) {
	start, end, err := PeriodBounds(goal.Period, day)
	if err != nil {
		return nil, err
	}

	entries, err := s.entries.GetRange(goal.HabitID, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate goal %s: %w", goal.ID, err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	var total float64
	for _, entry := range entries {
		total += entry.Value
	}
	return &total, nil
}

func (s *GoalService) mustGet(id string) (*db.Goal, error) {
	goal, err := s.goals.Get(id)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, fmt.Errorf("%w: %s", ErrGoalNotFound, id)
	}
	return goal, nil
}

// PeriodBounds 返回包含 day 的统计周期：当天、周一至周日、或整月
func PeriodBounds(period db.GoalPeriod, day time.Time) (time.Time, time.Time, error) {
	day = normalizeToDate(day)
	switch period {
	case db.PeriodDaily:
		return day, day, nil
	case db.PeriodWeekly:
		start, end := weekBounds(day)
		return start, end, nil
	case db.PeriodMonthly:
		start, end := monthBounds(day.Year(), day.Month())
		return start, end, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: unsupported period %q", ErrValidation, period)
}

// GoalActiveOn 判断目标在 date 是否生效；日期按 YYYY-MM-DD 字典序比较
func GoalActiveOn(goal db.Goal, date time.Time) bool {
	day := FormatDate(normalizeToDate(date))
	if day < goal.StartDate {
		return false
	}
	return goal.EndDate == nil || day <= *goal.EndDate
}

// GoalMet 按比较符判断是否达标。
// "==" 是精确的浮点比较，没有容差。
func GoalMet(comparison db.GoalComparison, actual, target float64) bool {
	switch comparison {
	case db.ComparisonAtLeast:
		return actual >= target
	case db.ComparisonAtMost:
		return actual <= target
	case db.ComparisonEqual:
		return actual == target
	}
	return false
}
