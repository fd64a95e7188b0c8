package service

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat 是接口与存储统一使用的日期格式
const DateFormat = "2006-01-02"

// ParseDate 解析 YYYY-MM-DD，结果归一到 UTC 零点
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	t, err := time.Parse(DateFormat, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, value)
	}
	return t, nil
}

// FormatDate 输出 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// normalizeToDate 取 t 所在时区的日历日期，转为 UTC 零点，避免夏令时影响按天迭代
func normalizeToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validateRange(start, end time.Time) error {
	if normalizeToDate(end).Before(normalizeToDate(start)) {
		return fmt.Errorf("%w (%s > %s)", ErrInvalidDateRange, FormatDate(start), FormatDate(end))
	}
	return nil
}

// daysInRange 返回闭区间 [start, end] 的天数，end 早于 start 时为 0
func daysInRange(start, end time.Time) int {
	days := int(normalizeToDate(end).Sub(normalizeToDate(start)).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return days
}

// eachDay 按顺序遍历 [start, end] 内的每一天
func eachDay(start, end time.Time, fn func(day time.Time)) {
	last := normalizeToDate(end)
	for day := normalizeToDate(start); !day.After(last); day = day.AddDate(0, 0, 1) {
		fn(day)
	}
}

// weekBounds 返回 date 所在周的周一与周日
func weekBounds(date time.Time) (time.Time, time.Time) {
	day := normalizeToDate(date)
	sinceMonday := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -sinceMonday)
	return monday, monday.AddDate(0, 0, 6)
}

// monthBounds 返回某月的第一天与最后一天，AddDate 会处理 12 月跨年与闰年
func monthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}
