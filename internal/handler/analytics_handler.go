package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/service"
)

// GetHabitStats 返回区间统计
func (a *API) GetHabitStats(c *gin.Context) {
	start, end, ok := parseRangeQuery(c)
	if !ok {
		return
	}

	stats, err := a.analytics.Statistics(c.Param("id"), start, end)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"habit_id":      stats.HabitID,
		"start_date":    service.FormatDate(stats.Start),
		"end_date":      service.FormatDate(stats.End),
		"min":           stats.Min,
		"max":           stats.Max,
		"average":       stats.Average,
		"total":         stats.Total,
		"count":         stats.Count,
		"days_logged":   stats.DaysLogged,
		"days_in_range": stats.DaysInRange,
	})
}

// GetCurrentStreak 返回截至 as_of（默认今天）的连续天数
func (a *API) GetCurrentStreak(c *gin.Context) {
	asOf, ok := parseOptionalDateQuery(c, "as_of", time.Time{})
	if !ok {
		return
	}

	habitID := c.Param("id")
	streak, err := a.analytics.CurrentStreak(habitID, asOf)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"habit_id": habitID, "current_streak": streak})
}

// GetLongestStreak 返回区间内最长的连续记录
func (a *API) GetLongestStreak(c *gin.Context) {
	start, end, ok := parseRangeQuery(c)
	if !ok {
		return
	}

	run, err := a.analytics.LongestStreak(c.Param("id"), start, end)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"habit_id":   run.HabitID,
		"length":     run.Length,
		"start_date": formatOptionalDate(run.Start),
		"end_date":   formatOptionalDate(run.End),
	})
}

// GetHabitCalendar 返回某月每天的数值
func (a *API) GetHabitCalendar(c *gin.Context) {
	year, ok := parseIntQuery(c, "year")
	if !ok {
		return
	}
	month, ok := parseIntQuery(c, "month")
	if !ok {
		return
	}
	if month < 1 || month > 12 {
		respondError(c, http.StatusBadRequest, "月份必须在 1 到 12 之间")
		return
	}

	habitID := c.Param("id")
	points, err := a.analytics.CalendarData(habitID, year, time.Month(month))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"habit_id": habitID,
		"year":     year,
		"month":    month,
		"data":     dataPointsToPayload(points),
	})
}

// GetHabitTrend 返回区间内每天的数值
func (a *API) GetHabitTrend(c *gin.Context) {
	start, end, ok := parseRangeQuery(c)
	if !ok {
		return
	}

	habitID := c.Param("id")
	points, err := a.analytics.Trend(habitID, start, end)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"habit_id":   habitID,
		"start_date": service.FormatDate(start),
		"end_date":   service.FormatDate(end),
		"data":       dataPointsToPayload(points),
	})
}

// GetCompletionRate 返回区间完成率
func (a *API) GetCompletionRate(c *gin.Context) {
	start, end, ok := parseRangeQuery(c)
	if !ok {
		return
	}
	threshold, ok := parseFloatQuery(c, "threshold", 0)
	if !ok {
		return
	}

	rate, err := a.analytics.CompletionRate(c.Param("id"), start, end, threshold)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"habit_id":        rate.HabitID,
		"completion_rate": rate.Rate,
		"days_completed":  rate.DaysCompleted,
		"total_days":      rate.TotalDays,
	})
}

func dataPointsToPayload(points []service.DataPoint) []gin.H {
	items := make([]gin.H, 0, len(points))
	for _, point := range points {
		items = append(items, gin.H{"date": service.FormatDate(point.Date), "value": point.Value})
	}
	return items
}
