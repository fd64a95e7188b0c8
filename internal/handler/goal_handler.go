package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/service"
)

const invalidGoalEnumMessage = "比较符只能是 >=、<=、==，周期只能是 daily、weekly、monthly"

type createGoalPayload struct {
	ID          string   `json:"id"`
	HabitID     string   `json:"habit_id"`
	TargetValue *float64 `json:"target_value"`
	Comparison  string   `json:"comparison"`
	Period      string   `json:"period"`
	StartDate   string   `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	Description string   `json:"description"`
}

type updateGoalPayload struct {
	TargetValue *float64 `json:"target_value"`
	Comparison  *string  `json:"comparison"`
	EndDate     *string  `json:"end_date"`
	Description *string  `json:"description"`
}

// CreateGoal 为习惯创建目标
func (a *API) CreateGoal(c *gin.Context) {
	habitID := c.Param("id")

	var payload createGoalPayload
	if !bindJSON(c, &payload, "请求参数错误") {
		return
	}
	input, ok := parseGoalInput(c, habitID, payload)
	if !ok {
		return
	}

	goal, err := a.goals.Create(input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, goalToPayload(*goal))
}

// ListHabitGoals 返回某习惯的全部目标
func (a *API) ListHabitGoals(c *gin.Context) {
	goals, err := a.goals.ListByHabit(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, goalsToPayload(goals))
}

// ListGoals 返回全部目标
func (a *API) ListGoals(c *gin.Context) {
	goals, err := a.goals.List()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, goalsToPayload(goals))
}

// GetGoal 返回单个目标
func (a *API) GetGoal(c *gin.Context) {
	goal, err := a.goals.Get(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, goalToPayload(*goal))
}

// UpdateGoal 部分更新目标
func (a *API) UpdateGoal(c *gin.Context) {
	var payload updateGoalPayload
	if !bindJSON(c, &payload, "请求参数错误") {
		return
	}

	update := service.GoalUpdate{
		TargetValue: payload.TargetValue,
		Description: payload.Description,
	}
	if payload.Comparison != nil && strings.TrimSpace(*payload.Comparison) != "" {
		comparison := db.GoalComparison(strings.TrimSpace(*payload.Comparison))
		if !comparison.Valid() {
			respondError(c, http.StatusBadRequest, invalidGoalEnumMessage)
			return
		}
		update.Comparison = &comparison
	}
	if payload.EndDate != nil && strings.TrimSpace(*payload.EndDate) != "" {
		end, err := service.ParseDate(*payload.EndDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, invalidDateMessage)
			return
		}
		update.EndDate = &end
	}

	goal, err := a.goals.Update(c.Param("id"), update)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, goalToPayload(*goal))
}

// DeleteGoal 删除目标
func (a *API) DeleteGoal(c *gin.Context) {
	if err := a.goals.Delete(c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetGoalProgress 返回目标在指定日期的进度
func (a *API) GetGoalProgress(c *gin.Context) {
	date, ok := parseRequiredDateQuery(c, "date")
	if !ok {
		return
	}

	progress, err := a.goals.CheckProgress(c.Param("id"), date)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, progressToPayload(*progress))
}

// CheckDailyGoals 返回当天所有生效目标的进度
func (a *API) CheckDailyGoals(c *gin.Context) {
	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	results, err := a.goals.CheckDailyGoals(date)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(results))
	for _, progress := range results {
		items = append(items, progressToPayload(progress))
	}
	respondSuccess(c, http.StatusOK, items)
}

func parseGoalInput(c *gin.Context, habitID string, payload createGoalPayload) (service.GoalInput, bool) {
	bodyHabit := strings.TrimSpace(payload.HabitID)
	if bodyHabit != "" && bodyHabit != habitID {
		respondError(c, http.StatusBadRequest, "请求体中的 habit_id 与路径不一致")
		return service.GoalInput{}, false
	}
	if payload.TargetValue == nil {
		respondError(c, http.StatusBadRequest, "缺少 target_value")
		return service.GoalInput{}, false
	}

	comparison := db.GoalComparison(strings.TrimSpace(payload.Comparison))
	period := db.GoalPeriod(strings.ToLower(strings.TrimSpace(payload.Period)))
	if !comparison.Valid() || !period.Valid() {
		respondError(c, http.StatusBadRequest, invalidGoalEnumMessage)
		return service.GoalInput{}, false
	}

	start, err := service.ParseDate(payload.StartDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, invalidDateMessage)
		return service.GoalInput{}, false
	}
	var end *time.Time
	if payload.EndDate != nil && strings.TrimSpace(*payload.EndDate) != "" {
		parsed, err := service.ParseDate(*payload.EndDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, invalidDateMessage)
			return service.GoalInput{}, false
		}
		end = &parsed
	}

	return service.GoalInput{
		ID:          payload.ID,
		HabitID:     habitID,
		TargetValue: *payload.TargetValue,
		Comparison:  comparison,
		Period:      period,
		StartDate:   start,
		EndDate:     end,
		Description: payload.Description,
	}, true
}

func goalsToPayload(goals []db.Goal) []gin.H {
	items := make([]gin.H, 0, len(goals))
	for _, goal := range goals {
		items = append(items, goalToPayload(goal))
	}
	return items
}

func goalToPayload(goal db.Goal) gin.H {
	return gin.H{
		"id":               goal.ID,
		"habit_id":         goal.HabitID,
		"target_value":     goal.TargetValue,
		"comparison":       goal.Comparison,
		"period":           goal.Period,
		"start_date":       goal.StartDate,
		"end_date":         goal.EndDate,
		"description":      goal.Description,
		"description_html": service.RenderGoalDescription(goal.Description),
	}
}

func progressToPayload(progress service.GoalProgress) gin.H {
	return gin.H{
		"goal_id":      progress.GoalID,
		"habit_id":     progress.HabitID,
		"date":         service.FormatDate(progress.Date),
		"is_active":    progress.IsActive,
		"actual_value": progress.ActualValue,
		"target_value": progress.TargetValue,
		"comparison":   progress.Comparison,
		"is_met":       progress.IsMet,
	}
}
