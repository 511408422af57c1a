package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDayUsesReferenceZone(t *testing.T) {
	// 2025-01-06 20:00 UTC is already 2025-01-07 01:30 in the reference zone.
	instant := time.Date(2025, 1, 6, 20, 0, 0, 0, time.UTC)

	start := StartOfDay(instant)

	assert.Equal(t, "2025-01-07", FormatDate(start))
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, Location(), start.Location())
	// Naive UTC truncation would land on a different day.
	assert.NotEqual(t, instant.Truncate(24*time.Hour).Day(), start.Day())
}

func TestWindowIsHalfOpen(t *testing.T) {
	day, err := ParseDate("2025-03-10")
	require.NoError(t, err)

	start, end := Window(day.Add(13 * time.Hour))

	assert.True(t, start.Equal(day))
	assert.Equal(t, 24*time.Hour, end.Sub(start))
	assert.Equal(t, "2025-03-11", FormatDate(end))
}

func TestDaysBetween(t *testing.T) {
	a, _ := ParseDate("2025-01-06")
	b, _ := ParseDate("2025-01-20")

	assert.Equal(t, 14, DaysBetween(a, b))
	assert.Equal(t, -14, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a.Add(23*time.Hour)))
	assert.Equal(t, 365, DaysBetween(a, AddDays(a, 365)))
}

func TestWeekday(t *testing.T) {
	monday, _ := ParseDate("2025-01-06")
	sunday, _ := ParseDate("2025-01-05")

	assert.Equal(t, 1, Weekday(monday))
	assert.Equal(t, 0, Weekday(sunday))
	assert.True(t, SameDay(monday, monday.Add(10*time.Hour)))
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("06/01/2025")
	assert.Error(t, err)
}
