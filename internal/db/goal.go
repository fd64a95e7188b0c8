package db

import "time"

// GoalComparison 描述实际值与目标值的比较方式
type GoalComparison string

const (
	ComparisonAtLeast GoalComparison = ">="
	ComparisonAtMost  GoalComparison = "<="
	ComparisonEqual   GoalComparison = "=="
)

// Valid 判断比较符是否受支持
func (c GoalComparison) Valid() bool {
	switch c {
	case ComparisonAtLeast, ComparisonAtMost, ComparisonEqual:
		return true
	}
	return false
}

// GoalPeriod 描述目标的统计周期
type GoalPeriod string

const (
	PeriodDaily   GoalPeriod = "daily"
	PeriodWeekly  GoalPeriod = "weekly"
	PeriodMonthly GoalPeriod = "monthly"
)

// Valid 判断周期是否受支持
func (p GoalPeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// Goal 用户为某个习惯设定的目标
// StartDate/EndDate 以 YYYY-MM-DD 存储；EndDate 为空表示长期有效
type Goal struct {
	ID          string         `gorm:"primaryKey;size:64"`
	HabitID     string         `gorm:"size:64;not null;index"`
	TargetValue float64        `gorm:"not null"`
	Comparison  GoalComparison `gorm:"size:2;not null"`
	Period      GoalPeriod     `gorm:"size:16;not null"`
	StartDate   string         `gorm:"size:10;not null;index"`
	EndDate     *string        `gorm:"size:10"`
	Description string         `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 固定表名
func (Goal) TableName() string {
	return "goals"
}
