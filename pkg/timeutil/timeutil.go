// Package timeutil provides UTC day-window helpers and relative time
// formatting for the activity feed. All progression timestamps are stored in
// UTC; day boundaries therefore mean UTC days.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// StartOfDay returns the start of the day (00:00:00) in UTC.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in UTC.
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999999999, time.UTC)
}

// StartOfWeek returns the start of the ISO week (Monday 00:00:00) in UTC.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return day.AddDate(0, 0, -offset)
}

// DaysSince calculates the number of whole UTC days since the given time.
func DaysSince(t time.Time) int {
	now := StartOfDay(time.Now())
	then := StartOfDay(t)
	return int(now.Sub(then).Hours() / 24)
}

// IsToday checks if the given time falls on the current UTC day.
func IsToday(t time.Time) bool {
	return StartOfDay(t).Equal(StartOfDay(time.Now()))
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
)

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in UTC.
func FormatDateStr(t time.Time) string {
	return t.UTC().Format(FormatDate)
}

// FormatRelative returns a human-readable relative time string, e.g.
// "just now", "5 min ago", "yesterday".
func FormatRelative(t time.Time) string {
	d := time.Since(t)
	if d < 0 {
		return t.UTC().Format(FormatDateTime)
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "an hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	case d < 30*24*time.Hour:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "a week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		return t.UTC().Format(FormatDate)
	}
}
