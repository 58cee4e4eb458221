package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	in := time.Date(2026, 3, 15, 14, 30, 45, 123, time.UTC)
	got := StartOfDay(in)

	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestStartOfDay_NormalizesZone(t *testing.T) {
	// 23:30 in UTC+5 is 18:30 UTC; the UTC day is what counts.
	zone := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2026, 3, 15, 23, 30, 0, 0, zone)

	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}

func TestEndOfDay(t *testing.T) {
	in := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	got := EndOfDay(in)

	assert.Equal(t, time.Date(2026, 3, 15, 23, 59, 59, 999999999, time.UTC), got)
}

func TestStartOfWeek(t *testing.T) {
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   time.Time
	}{
		{"monday itself", time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2026, 3, 11, 23, 59, 0, 0, time.UTC)},
		{"sunday", time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, monday, StartOfWeek(tt.in))
		})
	}
}

func TestDaysSince(t *testing.T) {
	assert.Equal(t, 0, DaysSince(time.Now()))
	assert.Equal(t, 1, DaysSince(StartOfDay(time.Now()).Add(-time.Second)))
	assert.Equal(t, 7, DaysSince(time.Now().AddDate(0, 0, -7)))
}

func TestIsToday(t *testing.T) {
	assert.True(t, IsToday(time.Now()))
	assert.False(t, IsToday(time.Now().AddDate(0, 0, -1)))
	assert.False(t, IsToday(StartOfDay(time.Now()).Add(-time.Nanosecond)))
}

func TestFormatDateStr(t *testing.T) {
	in := time.Date(2026, 3, 15, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))
	assert.Equal(t, "2026-03-16", FormatDateStr(in))
}

func TestFormatRelative(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5 min ago"},
		{"one hour ago", now.Add(-90 * time.Minute), "an hour ago"},
		{"hours ago", now.Add(-5 * time.Hour), "5 hours ago"},
		{"yesterday", now.Add(-30 * time.Hour), "yesterday"},
		{"days ago", now.Add(-3 * 24 * time.Hour), "3 days ago"},
		{"a week ago", now.Add(-8 * 24 * time.Hour), "a week ago"},
		{"weeks ago", now.Add(-16 * 24 * time.Hour), "2 weeks ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRelative(tt.in))
		})
	}
}

func TestFormatRelative_OldDatesFallBackToDate(t *testing.T) {
	in := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-02", FormatRelative(in))
}

func TestFormatRelative_FutureFallsBackToDateTime(t *testing.T) {
	in := time.Now().UTC().Add(2 * time.Hour)
	assert.Equal(t, in.Format(FormatDateTime), FormatRelative(in))
}
