package handler

import (
	"time"

	"github.com/habitlog/internal/service"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	habits    *service.HabitService
	logs      *service.DailyLogService
	goals     *service.GoalService
	analytics *service.AnalyticsService
	dashboard *service.DashboardService
	log       logrus.FieldLogger
	now       func() time.Time
}

// Options 配置 API 依赖的可选项
type Options struct {
	Providers          []service.DataProvider
	StreakLookbackDays int
	Logger             logrus.FieldLogger
	Now                func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	entries := service.NewEntryRepository(db)
	goals := service.NewGoalRepository(db)
	habits := service.NewHabitService(db).WithLogger(logger)

	logs := service.NewDailyLogService(entries, habits).
		WithProviders(opts.Providers...).
		WithClock(now).
		WithLogger(logger)
	analytics := service.NewAnalyticsService(entries, habits).
		WithStreakLookback(opts.StreakLookbackDays).
		WithClock(now)
	goalService := service.NewGoalService(goals, entries, habits).WithLogger(logger)

	return &API{
		db:        db,
		habits:    habits,
		logs:      logs,
		goals:     goalService,
		analytics: analytics,
		dashboard: service.NewDashboardService(logs, analytics, goalService),
		log:       logger,
		now:       now,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Habits 返回习惯目录，启动时用于写入内置定义
func (a *API) Habits() *service.HabitService {
	return a.habits
}

// DailyLogs 返回记录服务，供定时同步与命令行复用
func (a *API) DailyLogs() *service.DailyLogService {
	return a.logs
}

func (a *API) today() time.Time {
	return a.now()
}
