package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/metrics"
	"github.com/habitlog/internal/service"
)

type recordHabitPayload struct {
	Value *float64 `json:"value"`
}

// ListDailyLogs 返回区间内有记录的日志
func (a *API) ListDailyLogs(c *gin.Context) {
	start, end, ok := parseRangeQuery(c)
	if !ok {
		return
	}

	logs, err := a.logs.GetByDateRange(start, end)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(logs))
	for i := range logs {
		items = append(items, dailyLogToPayload(&logs[i]))
	}
	respondSuccess(c, http.StatusOK, items)
}

// GetDailyLog 返回某天的日志，没有记录时返回空列表
func (a *API) GetDailyLog(c *gin.Context) {
	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	log, err := a.logs.GetOrCreate(date)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, dailyLogToPayload(log))
}

// RecordHabit 手动记录习惯数值
func (a *API) RecordHabit(c *gin.Context) {
	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	var payload recordHabitPayload
	if !bindJSON(c, &payload, "请求参数错误") {
		return
	}
	if payload.Value == nil {
		respondError(c, http.StatusBadRequest, "缺少 value")
		return
	}

	log, err := a.logs.RecordManual(date, c.Param("habit_id"), *payload.Value)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, dailyLogToPayload(log))
}

// SyncDailyLog 触发自动习惯同步
func (a *API) SyncDailyLog(c *gin.Context) {
	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	log, err := a.logs.SyncAutomatic(c.Request.Context(), date)
	metrics.RecordSyncRun("api", err == nil)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, dailyLogToPayload(log))
}

// GetDailySummary 返回某天已记录习惯的概况
func (a *API) GetDailySummary(c *gin.Context) {
	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	summary, err := a.analytics.DailySummary(date)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"date":             service.FormatDate(summary.Date),
		"total_habits":     summary.TotalHabits,
		"logged_habits":    summary.LoggedHabits,
		"logged_habit_ids": summary.LoggedHabitIDs,
	})
}

func dailyLogToPayload(log *service.DailyLog) gin.H {
	entries := make([]gin.H, 0, len(log.Entries))
	for _, entry := range log.SortedEntries() {
		entries = append(entries, entryToPayload(entry))
	}
	return gin.H{
		"date":    service.FormatDate(log.Date),
		"entries": entries,
	}
}

func entryToPayload(entry db.HabitEntry) gin.H {
	return gin.H{
		"habit_id":    entry.HabitID,
		"value":       entry.Value,
		"recorded_at": entry.RecordedAt.UTC().Format(time.RFC3339),
		"source":      entry.Source,
	}
}
