package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/metrics"
	"github.com/sirupsen/logrus"
)

// DataProvider 从外部系统拉取自动习惯的数值。
// 当天没有数据时返回 nil, nil。
type DataProvider interface {
	Name() string
	FetchValue(ctx context.Context, habit db.Habit, isoDate string) (*float64, error)
}

// DailyLogService 负责手动记录与自动同步
type DailyLogService struct {
	entries   EntryStore
	habits    HabitCatalog
	providers []DataProvider
	now       func() time.Time
	log       logrus.FieldLogger
}

// NewDailyLogService 构造 DailyLogService，默认没有任何数据源
func NewDailyLogService(entries EntryStore, habits HabitCatalog) *DailyLogService {
	return &DailyLogService{
		entries: entries,
		habits:  habits,
		now:     time.Now,
		log:     logrus.StandardLogger(),
	}
}

// WithProviders 按注册顺序设置数据源，同名时先注册的优先
func (s *DailyLogService) WithProviders(providers ...DataProvider) *DailyLogService {
	s.providers = append([]DataProvider(nil), providers...)
	return s
}

// WithClock 替换记录时间的来源
func (s *DailyLogService) WithClock(now func() time.Time) *DailyLogService {
	if now != nil {
		s.now = now
	}
	return s
}

// WithLogger 设置日志输出
func (s *DailyLogService) WithLogger(logger logrus.FieldLogger) *DailyLogService {
	if logger != nil {
		s.log = logger
	}
	return s
}

// GetOrCreate 返回当天的日志，没有记录时返回空日志（不落库）
func (s *DailyLogService) GetOrCreate(date time.Time) (*DailyLog, error) {
	log, err := s.entries.GetByDate(normalizeToDate(date))
	if err != nil {
		return nil, err
	}
	if log != nil {
		return log, nil
	}
	return NewDailyLog(date), nil
}

// GetByDateRange 返回区间内有记录的日志
func (s *DailyLogService) GetByDateRange(start, end time.Time) ([]DailyLog, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	return s.entries.GetByDateRange(normalizeToDate(start), normalizeToDate(end))
}

// EntriesByHabit 返回某习惯在区间内的记录
func (s *DailyLogService) EntriesByHabit(habitID string, start, end time.Time) ([]db.HabitEntry, error) {
	if _, err := s.habits.Get(habitID); err != nil {
		return nil, err
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	return s.entries.GetRange(habitID, normalizeToDate(start), normalizeToDate(end))
}

// RecordManual 手动记录某习惯在某天的数值，已有记录时覆盖
func (s *DailyLogService) RecordManual(date time.Time, habitID string, value float64) (*DailyLog, error) {
	habit, err := s.habits.Get(habitID)
	if err != nil {
		return nil, err
	}

	log, err := s.GetOrCreate(date)
	if err != nil {
		return nil, err
	}
	if err := log.AddOrUpdate(newEntry(habit.ID, log.Date, value, db.SourceManual, s.now())); err != nil {
		return nil, err
	}
	if err := s.entries.Save(log); err != nil {
		return nil, err
	}

	metrics.RecordEntries(string(db.SourceManual), 1)
	s.log.WithFields(logrus.Fields{"habit_id": habit.ID, "date": FormatDate(log.Date), "value": value}).Info("habit recorded")
	return log, nil
}

// SyncAutomatic 为全部自动习惯拉取数据并一次性保存。
// 单个数据源失败（包括 panic）只会跳过对应习惯，不会中断同步。
func (s *DailyLogService) SyncAutomatic(ctx context.Context, date time.Time) (*DailyLog, error) {
	log, err := s.GetOrCreate(date)
	if err != nil {
		return nil, err
	}

	habits, err := s.habits.List()
	if err != nil {
		return nil, err
	}

	isoDate := FormatDate(log.Date)
	synced := 0
	for _, habit := range habits {
		if !habit.IsAutomatic() {
			continue
		}
		fields := logrus.Fields{"habit_id": habit.ID, "provider": habit.ProviderName, "date": isoDate}

		provider := s.findProvider(habit)
		if provider == nil {
			s.log.WithFields(fields).Debug("no provider registered, skipping")
			metrics.RecordProviderFetch(habit.ProviderName, metrics.OutcomeSkipped, 0)
			continue
		}

		started := time.Now()
		value, err := fetchSafely(ctx, provider, habit, isoDate)
		elapsed := time.Since(started)
		if err != nil {
			outcome := metrics.OutcomeError
			var panicErr *providerPanic
			if errors.As(err, &panicErr) {
				outcome = metrics.OutcomePanic
			}
			metrics.RecordProviderFetch(provider.Name(), outcome, elapsed)
			s.log.WithFields(fields).WithError(err).Warn("provider fetch failed, skipping habit")
			continue
		}
		if value == nil {
			metrics.RecordProviderFetch(provider.Name(), metrics.OutcomeNoData, elapsed)
			continue
		}
		metrics.RecordProviderFetch(provider.Name(), metrics.OutcomeValue, elapsed)

		if err := log.AddOrUpdate(newEntry(habit.ID, log.Date, *value, db.SourceAutomatic, s.now())); err != nil {
			return nil, err
		}
		synced++
	}

	if err := s.entries.Save(log); err != nil {
		return nil, err
	}
	metrics.RecordEntries(string(db.SourceAutomatic), synced)
	s.log.WithFields(logrus.Fields{"date": isoDate, "synced": synced}).Info("automatic habits synced")
	return log, nil
}

func (s *DailyLogService) findProvider(habit db.Habit) DataProvider {
	if !habit.HasProvider() {
		return nil
	}
	for _, provider := range s.providers {
		if provider != nil && provider.Name() == habit.ProviderName {
			return provider
		}
	}
	return nil
}

type providerPanic struct {
	provider string
	value    any
}

func (p *providerPanic) Error() string {
	return fmt.Sprintf("provider %s panicked: %v", p.provider, p.value)
}

func fetchSafely(ctx context.Context, provider DataProvider, habit db.Habit, isoDate string) (value *float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = &providerPanic{provider: provider.Name(), value: r}
		}
	}()
	return provider.FetchValue(ctx, habit, isoDate)
}
