package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/service"
)

// GetDashboard 返回 target_date（默认今天）的完整看板
func (a *API) GetDashboard(c *gin.Context) {
	date, ok := parseOptionalDateQuery(c, "target_date", a.today())
	if !ok {
		return
	}

	board, err := a.dashboard.Dashboard(date)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	goals := make([]gin.H, 0, len(board.ActiveGoals))
	for _, item := range board.ActiveGoals {
		goals = append(goals, gin.H{
			"goal_id":      item.Goal.ID,
			"habit_id":     item.Goal.HabitID,
			"description":  item.Goal.Description,
			"target_value": item.Goal.TargetValue,
			"comparison":   item.Goal.Comparison,
			"period":       item.Goal.Period,
			"progress":     progressToPayload(item.Progress),
		})
	}

	streaks := make([]gin.H, 0, len(board.CurrentStreaks))
	for _, streak := range board.CurrentStreaks {
		streaks = append(streaks, gin.H{"habit_id": streak.HabitID, "streak": streak.Streak})
	}

	topHabits := make([]gin.H, 0, len(board.TopHabits))
	for _, habit := range board.TopHabits {
		topHabits = append(topHabits, gin.H{"habit_id": habit.HabitID, "days_logged": habit.DaysLogged})
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"date": service.FormatDate(board.Date),
		"daily_summary": gin.H{
			"total_habits":          board.TotalHabits,
			"logged_habits":         board.LoggedHabits,
			"completion_percentage": board.CompletionPercentage,
		},
		"goals": gin.H{
			"active_count": len(board.ActiveGoals),
			"met_today":    board.GoalsMet,
			"details":      goals,
		},
		"streaks": gin.H{"current": streaks},
		"weekly_summary": gin.H{
			"period":     fmt.Sprintf("%s to %s", service.FormatDate(board.WeekStart), service.FormatDate(board.WeekEnd)),
			"top_habits": topHabits,
			"total_logs": board.WeeklyLogs,
		},
	})
}

// GetQuickDashboard 返回精简看板
func (a *API) GetQuickDashboard(c *gin.Context) {
	date, ok := parseOptionalDateQuery(c, "target_date", a.today())
	if !ok {
		return
	}

	quick, err := a.dashboard.QuickDashboard(date)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"date":                  service.FormatDate(quick.Date),
		"habits_logged":         quick.HabitsLogged,
		"total_habits":          quick.TotalHabits,
		"completion_percentage": quick.CompletionPercentage,
		"active_goals":          quick.ActiveGoals,
		"goals_met_today":       quick.GoalsMet,
	})
}
