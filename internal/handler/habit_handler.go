package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/db"
)

// ListHabits 返回全部内置习惯
func (a *API) ListHabits(c *gin.Context) {
	habits, err := a.habits.List()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		items = append(items, habitToPayload(habit))
	}
	respondSuccess(c, http.StatusOK, items)
}

// GetHabit 返回单个习惯
func (a *API) GetHabit(c *gin.Context) {
	habit, err := a.habits.Get(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, habitToPayload(*habit))
}

// ListCategories 返回全部分类
func (a *API) ListCategories(c *gin.Context) {
	categories, err := a.habits.Categories()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		items = append(items, gin.H{
			"id":          category.ID,
			"name":        category.Name,
			"description": category.Description,
			"color":       category.Color,
		})
	}
	respondSuccess(c, http.StatusOK, items)
}

func habitToPayload(habit db.Habit) gin.H {
	var providerConfig gin.H
	if habit.HasProvider() {
		providerConfig = gin.H{
			"provider": habit.ProviderName,
			"metric":   habit.ProviderMetric,
		}
	}

	return gin.H{
		"id":              habit.ID,
		"name":            habit.Name,
		"unit":            habit.Unit,
		"source":          habit.Source,
		"description":     habit.Description,
		"category_id":     habit.CategoryID,
		"provider_config": providerConfig,
	}
}
