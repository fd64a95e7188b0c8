package db

import "time"

// HabitSource 标记习惯数据来源：手动记录或由外部服务自动同步
type HabitSource string

const (
	SourceManual    HabitSource = "manual"
	SourceAutomatic HabitSource = "automatic"
)

// Valid 判断来源取值是否合法
func (s HabitSource) Valid() bool {
	return s == SourceManual || s == SourceAutomatic
}

// Habit 定义了可追踪的习惯
// 习惯由应用内置定义列表在启动时写入，不通过接口创建或删除
// ProviderName/ProviderMetric 仅对自动习惯有效，用于匹配数据提供方
type Habit struct {
	ID             string      `gorm:"primaryKey;size:64"`
	Name           string      `gorm:"not null"`
	Unit           string      `gorm:"size:32"`
	Source         HabitSource `gorm:"size:16;not null"`
	Description    string
	CategoryID     *string `gorm:"size:32;index"`
	ProviderName   string  `gorm:"size:32"`
	ProviderMetric string  `gorm:"size:64"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName 固定表名
func (Habit) TableName() string {
	return "habits"
}

// IsAutomatic 表示习惯数据是否由外部服务同步
func (h Habit) IsAutomatic() bool {
	return h.Source == SourceAutomatic
}

// HasProvider 判断自动习惯是否配置了数据提供方
func (h Habit) HasProvider() bool {
	return h.ProviderName != ""
}

// Category 描述习惯分类，用于前端分组展示
type Category struct {
	ID          string `gorm:"primaryKey;size:32"`
	Name        string `gorm:"not null"`
	Description string
	Color       string `gorm:"size:16"`
}

// TableName 固定表名
func (Category) TableName() string {
	return "categories"
}

// HabitEntry 记录某个习惯在某一天的数值
// EntryDate + HabitID 采用唯一索引，保证每个习惯每天只有一条记录（后写覆盖）
// EntryDate 以 YYYY-MM-DD 字符串存储，区间查询直接按字典序比较
type HabitEntry struct {
	ID         uint        `gorm:"primaryKey"`
	EntryDate  string      `gorm:"size:10;not null;index;index:idx_habit_entry_unique,unique"`
	HabitID    string      `gorm:"size:64;not null;index;index:idx_habit_entry_unique,unique"`
	Value      float64     `gorm:"not null"`
	RecordedAt time.Time   `gorm:"not null"`
	Source     HabitSource `gorm:"size:16;not null"`
}

// TableName 重写确保唯一索引作用到 entry_date + habit_id
func (HabitEntry) TableName() string {
	return "habit_entries"
}
