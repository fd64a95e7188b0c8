package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/habitlog/internal/metrics"
	"github.com/habitlog/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Syncer 是定时任务调用的同步入口
type Syncer interface {
	SyncAutomatic(ctx context.Context, date time.Time) (*service.DailyLog, error)
}

// SyncScheduler 按 cron 表达式同步当天的自动习惯，上一轮未结束时跳过本轮
type SyncScheduler struct {
	cron    *cron.Cron
	syncer  Syncer
	timeout time.Duration
	now     func() time.Time
	log     logrus.FieldLogger
}

// New 解析 schedule 并注册同步任务，调用 Start 后才会运行
func New(schedule string, syncer Syncer, timeout time.Duration, logger logrus.FieldLogger) (*SyncScheduler, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return nil, fmt.Errorf("sync schedule is empty")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	s := &SyncScheduler{
		syncer:  syncer,
		timeout: timeout,
		now:     time.Now,
		log:     logger.WithField("component", "scheduler"),
	}
	cronLogger := cron.PrintfLogger(s.log)
	s.cron = cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("parse sync schedule %q: %w", schedule, err)
	}
	return s, nil
}

// RunOnce 同步今天的数据，失败只记录日志
func (s *SyncScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	date := s.now()
	log, err := s.syncer.SyncAutomatic(ctx, date)
	metrics.RecordSyncRun("cron", err == nil)
	if err != nil {
		s.log.WithError(err).Error("scheduled sync failed")
		return
	}
	s.log.WithFields(logrus.Fields{"date": service.FormatDate(log.Date), "entries": len(log.Entries)}).Info("scheduled sync finished")
}

// Start 在后台运行调度器
func (s *SyncScheduler) Start() {
	s.cron.Start()
	s.log.Info("sync scheduler started")
}

// Stop 停止调度并等待正在运行的任务结束或 ctx 超时
func (s *SyncScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("sync scheduler stop timed out")
	}
}
