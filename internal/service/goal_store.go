package service

import (
	"fmt"
	"time"

	"github.com/habitlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GoalStore 持久化用户目标
type GoalStore interface {
	Get(id string) (*db.Goal, error)
	List() ([]db.Goal, error)
	ListByHabit(habitID string) ([]db.Goal, error)
	ListActive(habitID string, date time.Time) ([]db.Goal, error)
	Save(goal *db.Goal) error
	Delete(id string) error
}

// GoalRepository 基于 gorm 的 GoalStore 实现
type GoalRepository struct {
	db *gorm.DB
}

// NewGoalRepository 构造 GoalRepository
func NewGoalRepository(gdb *gorm.DB) *GoalRepository {
	return &GoalRepository{db: gdb}
}

// Get 不存在时返回 nil, nil
func (r *GoalRepository) Get(id string) (*db.Goal, error) {
	var goals []db.Goal
	if err := r.db.Where("id = ?", id).Limit(1).Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	if len(goals) == 0 {
		return nil, nil
	}
	return &goals[0], nil
}

func (r *GoalRepository) List() ([]db.Goal, error) {
	var goals []db.Goal
	if err := r.db.Order("created_at ASC, id ASC").Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (r *GoalRepository) ListByHabit(habitID string) ([]db.Goal, error) {
	var goals []db.Goal
	if err := r.db.Where("habit_id = ?", habitID).
		Order("created_at ASC, id ASC").
		Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("list goals by habit: %w", err)
	}
	return goals, nil
}

// ListActive 返回某习惯在指定日期生效的目标
func (r *GoalRepository) ListActive(habitID string, date time.Time) ([]db.Goal, error) {
	day := FormatDate(date)

	var goals []db.Goal
	if err := r.db.Where("habit_id = ?", habitID).
		Where("start_date <= ?", day).
		Where("(end_date IS NULL OR end_date >= ?)", day).
		Order("created_at ASC, id ASC").
		Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("list active goals: %w", err)
	}
	return goals, nil
}

// Save 按 ID upsert
func (r *GoalRepository) Save(goal *db.Goal) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"habit_id", "target_value", "comparison", "period",
			"start_date", "end_date", "description", "updated_at",
		}),
	}).Create(goal).Error; err != nil {
		return fmt.Errorf("save goal: %w", err)
	}
	return nil
}

func (r *GoalRepository) Delete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&db.Goal{}).Error; err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}
