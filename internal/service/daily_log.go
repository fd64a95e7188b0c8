package service

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/habitlog/internal/db"
)

// DailyLog 聚合某一天全部习惯的记录，每个习惯至多一条
type DailyLog struct {
	Date    time.Time
	Entries map[string]db.HabitEntry
}

// NewDailyLog 构造空日志
func NewDailyLog(date time.Time) *DailyLog {
	return &DailyLog{Date: normalizeToDate(date), Entries: make(map[string]db.HabitEntry)}
}

// AddOrUpdate 写入或覆盖某个习惯的记录；日期不一致属于调用方错误
func (l *DailyLog) AddOrUpdate(entry db.HabitEntry) error {
	if entry.EntryDate != FormatDate(l.Date) {
		return fmt.Errorf("%w: entry %s, log %s", ErrEntryDateMismatch, entry.EntryDate, FormatDate(l.Date))
	}
	if l.Entries == nil {
		l.Entries = make(map[string]db.HabitEntry)
	}
	l.Entries[entry.HabitID] = entry
	return nil
}

// Entry 返回指定习惯的记录
func (l *DailyLog) Entry(habitID string) (db.HabitEntry, bool) {
	entry, ok := l.Entries[habitID]
	return entry, ok
}

// Has 判断指定习惯当天是否已有记录
func (l *DailyLog) Has(habitID string) bool {
	_, ok := l.Entries[habitID]
	return ok
}

// HabitIDs 返回已记录的习惯 ID（按字母序）
func (l *DailyLog) HabitIDs() []string {
	ids := make([]string, 0, len(l.Entries))
	for id := range l.Entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SortedEntries 按习惯 ID 排序返回全部记录
func (l *DailyLog) SortedEntries() []db.HabitEntry {
	entries := make([]db.HabitEntry, 0, len(l.Entries))
	for _, id := range l.HabitIDs() {
		entries = append(entries, l.Entries[id])
	}
	return entries
}

func newEntry(habitID string, date time.Time, value float64, source db.HabitSource, recordedAt time.Time) db.HabitEntry {
	return db.HabitEntry{
		EntryDate:  FormatDate(date),
		HabitID:    strings.TrimSpace(habitID),
		Value:      value,
		RecordedAt: recordedAt.UTC(),
		Source:     source,
	}
}
