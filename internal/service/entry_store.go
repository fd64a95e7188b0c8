package service

import (
	"fmt"
	"time"

	"github.com/habitlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryStore 持久化习惯记录，Save 以 (日期, 习惯) 为键做 upsert
type EntryStore interface {
	Get(habitID string, date time.Time) (*db.HabitEntry, error)
	GetRange(habitID string, start, end time.Time) ([]db.HabitEntry, error)
	GetByDate(date time.Time) (*DailyLog, error)
	GetByDateRange(start, end time.Time) ([]DailyLog, error)
	Save(log *DailyLog) error
}

// EntryRepository 基于 gorm 的 EntryStore 实现
// 并发写入同一 (日期, 习惯) 依赖 SQLite 的 ON CONFLICT 保证原子性
type EntryRepository struct {
	db *gorm.DB
}

// NewEntryRepository 构造 EntryRepository
func NewEntryRepository(gdb *gorm.DB) *EntryRepository {
	return &EntryRepository{db: gdb}
}

// Get 返回单条记录，不存在时返回 nil, nil
func (r *EntryRepository) Get(habitID string, date time.Time) (*db.HabitEntry, error) {
	var entries []db.HabitEntry
	if err := r.db.Where("habit_id = ? AND entry_date = ?", habitID, FormatDate(date)).
		Limit(1).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("get habit entry: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// GetRange 返回某个习惯在闭区间内的记录，按日期升序
func (r *EntryRepository) GetRange(habitID string, start, end time.Time) ([]db.HabitEntry, error) {
	var entries []db.HabitEntry
	if err := r.db.Where("habit_id = ?", habitID).
		Where("entry_date BETWEEN ? AND ?", FormatDate(start), FormatDate(end)).
		Order("entry_date ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list habit entries: %w", err)
	}
	return entries, nil
}

// GetByDate 返回某天的日志，没有任何记录时返回 nil, nil
func (r *EntryRepository) GetByDate(date time.Time) (*DailyLog, error) {
	var entries []db.HabitEntry
	if err := r.db.Where("entry_date = ?", FormatDate(date)).
		Order("habit_id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("get daily log: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	log := NewDailyLog(date)
	for _, entry := range entries {
		log.Entries[entry.HabitID] = entry
	}
	return log, nil
}

// GetByDateRange 返回区间内所有有记录的日志，按日期升序
func (r *EntryRepository) GetByDateRange(start, end time.Time) ([]DailyLog, error) {
	var entries []db.HabitEntry
	if err := r.db.Where("entry_date BETWEEN ? AND ?", FormatDate(start), FormatDate(end)).
		Order("entry_date ASC, habit_id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}

	logs := make([]DailyLog, 0)
	for _, entry := range entries {
		if n := len(logs); n == 0 || FormatDate(logs[n-1].Date) != entry.EntryDate {
			date, err := ParseDate(entry.EntryDate)
			if err != nil {
				return nil, fmt.Errorf("decode entry date: %w", err)
			}
			logs = append(logs, *NewDailyLog(date))
		}
		logs[len(logs)-1].Entries[entry.HabitID] = entry
	}
	return logs, nil
}

// Save 将日志中的全部记录写回，已存在的 (日期, 习惯) 覆盖数值、时间与来源
func (r *EntryRepository) Save(log *DailyLog) error {
	if log == nil || len(log.Entries) == 0 {
		return nil
	}

	rows := make([]db.HabitEntry, 0, len(log.Entries))
	for _, entry := range log.SortedEntries() {
		entry.ID = 0
		rows = append(rows, entry)
	}

	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_date"}, {Name: "habit_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "recorded_at", "source"}),
	}).Create(&rows).Error; err != nil {
		return fmt.Errorf("upsert habit entries: %w", err)
	}
	return nil
}
