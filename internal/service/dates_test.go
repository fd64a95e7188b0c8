package service

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if FormatDate(d) != "2024-02-29" {
		t.Fatalf("unexpected date: %s", FormatDate(d))
	}

	for _, raw := range []string{"", "2024-13-01", "2023-02-29", "01/02/2024", "2024-1-2"} {
		if _, err := ParseDate(raw); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation for %q, got %v", raw, err)
		}
	}
}

func TestNormalizeToDateKeepsCalendarDay(t *testing.T) {
	shanghai := time.FixedZone("UTC+8", 8*3600)
	local := time.Date(2024, 3, 10, 1, 30, 0, 0, shanghai)

	got := normalizeToDate(local)
	want := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestDaysInRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := daysInRange(start, start); got != 1 {
		t.Fatalf("single day range: expected 1, got %d", got)
	}
	if got := daysInRange(start, start.AddDate(0, 0, 30)); got != 31 {
		t.Fatalf("january: expected 31, got %d", got)
	}
	if got := daysInRange(start, start.AddDate(0, 0, -3)); got != 0 {
		t.Fatalf("inverted range: expected 0, got %d", got)
	}
}

func TestValidateRange(t *testing.T) {
	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	if err := validateRange(start, start); err != nil {
		t.Fatalf("equal bounds should be valid: %v", err)
	}
	err := validateRange(start, start.AddDate(0, 0, -1))
	if !errors.Is(err, ErrInvalidDateRange) || !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestEachDayCrossesMonthBoundary(t *testing.T) {
	var days []string
	eachDay(time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), func(day time.Time) {
		days = append(days, FormatDate(day))
	})

	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %v", len(want), days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("day %d: expected %s, got %s", i, want[i], days[i])
		}
	}
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		date   string
		monday string
		sunday string
	}{
		{"2024-01-01", "2024-01-01", "2024-01-07"}, // 周一
		{"2024-01-03", "2024-01-01", "2024-01-07"},
		{"2024-01-07", "2024-01-01", "2024-01-07"}, // 周日
		{"2024-03-01", "2024-02-26", "2024-03-03"},
		{"2025-01-01", "2024-12-30", "2025-01-05"},
	}

	for _, tt := range tests {
		monday, sunday := weekBounds(mustDate(t, tt.date))
		if FormatDate(monday) != tt.monday || FormatDate(sunday) != tt.sunday {
			t.Fatalf("%s: expected %s..%s, got %s..%s", tt.date, tt.monday, tt.sunday, FormatDate(monday), FormatDate(sunday))
		}
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		last  string
	}{
		{2024, time.February, "2024-02-29"},
		{2023, time.February, "2023-02-28"},
		{2024, time.December, "2024-12-31"},
		{2024, time.April, "2024-04-30"},
	}

	for _, tt := range tests {
		first, last := monthBounds(tt.year, tt.month)
		if first.Day() != 1 || first.Month() != tt.month {
			t.Fatalf("unexpected first day %s", FormatDate(first))
		}
		if FormatDate(last) != tt.last {
			t.Fatalf("%d-%d: expected last day %s, got %s", tt.year, tt.month, tt.last, FormatDate(last))
		}
	}
}
