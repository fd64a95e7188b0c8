package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/habitlog/internal/handler"
	"github.com/habitlog/internal/metrics"
	"github.com/sirupsen/logrus"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, logger logrus.FieldLogger) *gin.Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger), metrics.Middleware())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/habits", api.ListHabits)
		apiGroup.GET("/habits/:id", api.GetHabit)
		apiGroup.GET("/categories", api.ListCategories)

		// 目标
		apiGroup.POST("/habits/:id/goals", api.CreateGoal)
		apiGroup.GET("/habits/:id/goals", api.ListHabitGoals)
		apiGroup.GET("/goals", api.ListGoals)
		apiGroup.GET("/goals/:id", api.GetGoal)
		apiGroup.PUT("/goals/:id", api.UpdateGoal)
		apiGroup.DELETE("/goals/:id", api.DeleteGoal)
		apiGroup.GET("/goals/:id/progress", api.GetGoalProgress)

		// 日志
		apiGroup.GET("/daily-logs", api.ListDailyLogs)
		apiGroup.GET("/daily-logs/:date", api.GetDailyLog)
		apiGroup.POST("/daily-logs/:date/habits/:habit_id", api.RecordHabit)
		apiGroup.POST("/daily-logs/:date/sync", api.SyncDailyLog)
		apiGroup.GET("/daily-logs/:date/summary", api.GetDailySummary)
		apiGroup.GET("/daily-logs/:date/goals", api.CheckDailyGoals)

		// 统计
		apiGroup.GET("/habits/:id/stats", api.GetHabitStats)
		apiGroup.GET("/habits/:id/streak", api.GetCurrentStreak)
		apiGroup.GET("/habits/:id/longest-streak", api.GetLongestStreak)
		apiGroup.GET("/habits/:id/calendar", api.GetHabitCalendar)
		apiGroup.GET("/habits/:id/trend", api.GetHabitTrend)
		apiGroup.GET("/habits/:id/completion-rate", api.GetCompletionRate)

		apiGroup.GET("/dashboard", api.GetDashboard)
		apiGroup.GET("/dashboard/quick", api.GetQuickDashboard)
	}

	return r
}

const requestIDHeader = "X-Request-ID"

// requestLogger 记录每个请求，并沿用或生成 X-Request-ID
func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last()).Error("request failed")
			return
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request completed with server error")
			return
		}
		entry.Debug("request completed")
	}
}
