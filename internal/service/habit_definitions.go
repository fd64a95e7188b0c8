package service

import "github.com/habitlog/internal/db"

// 已接入或预留的数据提供方名称，需与 DataProvider.Name() 一致
const (
	ProviderGarmin    = "garmin"
	ProviderGoodreads = "goodreads"
	ProviderGitHub    = "github"
)

// 分类 ID
const (
	CategoryHealth       = "health"
	CategoryLearning     = "learning"
	CategoryProductivity = "productivity"
	CategorySocial       = "social"
	CategoryFinance      = "finance"
)

// HabitDefinition 是内置习惯的不可变定义，应用启动时写入数据库
type HabitDefinition struct {
	ID             string
	Name           string
	Unit           string
	Source         db.HabitSource
	CategoryID     string
	Description    string
	ProviderName   string
	ProviderMetric string
}

func (d HabitDefinition) toHabit() db.Habit {
	habit := db.Habit{
		ID:             d.ID,
		Name:           d.Name,
		Unit:           d.Unit,
		Source:         d.Source,
		Description:    d.Description,
		ProviderName:   d.ProviderName,
		ProviderMetric: d.ProviderMetric,
	}
	if d.CategoryID != "" {
		category := d.CategoryID
		habit.CategoryID = &category
	}
	return habit
}

var defaultHabitDefinitions = []HabitDefinition{
	{
		ID: "steps", Name: "Daily Steps", Unit: "steps", Source: db.SourceAutomatic,
		CategoryID: CategoryHealth, Description: "Total steps walked per day",
		ProviderName: ProviderGarmin, ProviderMetric: "steps",
	},
	{
		ID: "heart_rate", Name: "Resting Heart Rate", Unit: "bpm", Source: db.SourceAutomatic,
		CategoryID: CategoryHealth, Description: "Resting heart rate measurement",
		ProviderName: ProviderGarmin, ProviderMetric: "heart_rate",
	},
	{
		ID: "exercise", Name: "Total Exercise", Unit: "minutes", Source: db.SourceAutomatic,
		CategoryID: CategoryHealth, Description: "All exercise activities combined",
		ProviderName: ProviderGarmin, ProviderMetric: "exercise",
	},
	{
		ID: "reading", Name: "Reading", Unit: "pages", Source: db.SourceManual,
		CategoryID: CategoryLearning, Description: "Pages read per day",
	},
	{
		ID: "goodreads_books", Name: "Books Completed", Unit: "books", Source: db.SourceAutomatic,
		CategoryID: CategoryLearning, Description: "Books finished on Goodreads",
		ProviderName: ProviderGoodreads, ProviderMetric: "books_read",
	},
	{
		ID: "meditation", Name: "Meditation", Unit: "minutes", Source: db.SourceManual,
		CategoryID: CategoryHealth, Description: "Daily meditation practice",
	},
	{
		ID: "deep_work", Name: "Deep Work", Unit: "hours", Source: db.SourceManual,
		CategoryID: CategoryProductivity, Description: "Focused work sessions",
	},
	{
		ID: "github_contributions", Name: "GitHub Contributions", Unit: "contributions", Source: db.SourceAutomatic,
		CategoryID: CategoryProductivity, Description: "Daily GitHub contributions (commits + PRs + issues)",
		ProviderName: ProviderGitHub, ProviderMetric: "contributions",
	},
}

var defaultCategories = []db.Category{
	{ID: CategoryHealth, Name: "Health", Description: "Physical and mental wellbeing", Color: "#4CAF50"},
	{ID: CategoryLearning, Name: "Learning", Description: "Reading and skill building", Color: "#2196F3"},
	{ID: CategoryProductivity, Name: "Productivity", Description: "Focused work and output", Color: "#FF9800"},
	{ID: CategorySocial, Name: "Social", Description: "Relationships and community", Color: "#E91E63"},
	{ID: CategoryFinance, Name: "Finance", Description: "Saving and spending habits", Color: "#9C27B0"},
}

// DefaultHabitDefinitions 返回内置习惯定义的副本
func DefaultHabitDefinitions() []HabitDefinition {
	return append([]HabitDefinition(nil), defaultHabitDefinitions...)
}

// DefaultCategories 返回内置分类的副本
func DefaultCategories() []db.Category {
	return append([]db.Category(nil), defaultCategories...)
}
