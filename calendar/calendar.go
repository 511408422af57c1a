// Package calendar maps instants onto calendar days in the service's single
// reference timezone. Every day boundary in the service comes from here.
package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Zone is the reference timezone. Day boundaries never depend on the server
// locale or on the caller.
const Zone = "Asia/Kolkata"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var loc = mustLoad(Zone)

func mustLoad(name string) *time.Location {
	l, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("calendar: load %s: %v", name, err))
	}
	return l
}

// Location returns the reference location.
func Location() *time.Location { return loc }

// StartOfDay returns midnight of t's calendar day in the reference zone.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Window returns the half-open range [start, end) covering t's day.
func Window(t time.Time) (start, end time.Time) {
	start = StartOfDay(t)
	return start, AddDays(start, 1)
}

// AddDays moves t by n calendar days, keeping the wall clock in the
// reference zone.
func AddDays(t time.Time, n int) time.Time {
	return t.In(loc).AddDate(0, 0, n)
}

// DaysBetween returns the number of whole calendar days from a to b.
// It is negative when b falls on an earlier day than a.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// Weekday returns 0 (Sunday) through 6 (Saturday) for t's day.
func Weekday(t time.Time) int {
	return int(t.In(loc).Weekday())
}

// DayOfMonth returns t's day of month in the reference zone.
func DayOfMonth(t time.Time) int {
	return t.In(loc).Day()
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DaysBetween(a, b) == 0
}

// ParseDate reads a YYYY-MM-DD string as the start of that day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t's calendar day as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.In(loc).Format(DateLayout)
}

// Today returns the start of the current day for the given instant.
func Today(now time.Time) time.Time {
	return StartOfDay(now)
}
