// Package recurrence decides whether a recurring task is due on a given day.
//
// A rule is one of Daily, Weekly, Biweekly, Monthly or Custom. Each variant
// carries only the fields its evaluation needs. Day arithmetic goes through
// package calendar, so every decision is made in the reference timezone.
package recurrence

import (
	"fmt"
	"sort"
	"time"

	"prepdaily/apperr"
	"prepdaily/calendar"
	"prepdaily/model"
)

// Rule is a recurrence variant. firesOn is called only for targets on or
// after start.
type Rule interface {
	Frequency() model.Frequency
	firesOn(start, target time.Time) bool
}

// Weekdays is a set of weekday numbers, 0 (Sunday) through 6 (Saturday).
type Weekdays []int

func (w Weekdays) contains(day int) bool {
	for _, d := range w {
		if d == day {
			return true
		}
	}
	return false
}

// matches applies the weekly rule: an explicit set wins, otherwise the
// target must share start's weekday.
func (w Weekdays) matches(start, target time.Time) bool {
	if len(w) > 0 {
		return w.contains(calendar.Weekday(target))
	}
	return calendar.Weekday(target) == calendar.Weekday(start)
}

type Daily struct{}

type Weekly struct {
	Days Weekdays
}

type Biweekly struct {
	Days Weekdays
}

type Monthly struct{}

// Custom fires every Interval days when Interval >= 1, otherwise on Days.
type Custom struct {
	Interval int
	Days     Weekdays
}

func (Daily) Frequency() model.Frequency    { return model.FrequencyDaily }
func (Weekly) Frequency() model.Frequency   { return model.FrequencyWeekly }
func (Biweekly) Frequency() model.Frequency { return model.FrequencyBiweekly }
func (Monthly) Frequency() model.Frequency  { return model.FrequencyMonthly }
func (Custom) Frequency() model.Frequency   { return model.FrequencyCustom }

func (Daily) firesOn(_, _ time.Time) bool { return true }

func (r Weekly) firesOn(start, target time.Time) bool {
	return r.Days.matches(start, target)
}

func (r Biweekly) firesOn(start, target time.Time) bool {
	weekIndex := calendar.DaysBetween(start, target) / 7
	return weekIndex%2 == 0 && r.Days.matches(start, target)
}

// Months shorter than the anchor day are skipped, not clamped.
func (Monthly) firesOn(start, target time.Time) bool {
	return calendar.DayOfMonth(target) == calendar.DayOfMonth(start)
}

func (r Custom) firesOn(start, target time.Time) bool {
	if r.Interval >= 1 {
		return calendar.DaysBetween(start, target)%r.Interval == 0
	}
	if len(r.Days) == 0 {
		return false
	}
	return r.Days.contains(calendar.Weekday(target))
}

// FromModel decodes a stored rule into its variant. A nil rule decodes to a
// nil Rule, which never fires.
func FromModel(r *model.RecurrenceRule) (Rule, error) {
	if r == nil {
		return nil, nil
	}
	days, err := normalizeDays(r.DaysOfWeek)
	if err != nil {
		return nil, err
	}
	switch r.Frequency {
	case model.FrequencyDaily:
		return Daily{}, nil
	case model.FrequencyWeekly:
		return Weekly{Days: days}, nil
	case model.FrequencyBiweekly:
		return Biweekly{Days: days}, nil
	case model.FrequencyMonthly:
		return Monthly{}, nil
	case model.FrequencyCustom:
		if r.Interval < 0 {
			return nil, apperr.InvalidInput("decode recurrence", "interval cannot be negative")
		}
		return Custom{Interval: r.Interval, Days: days}, nil
	default:
		return nil, apperr.InvalidInput("decode recurrence", fmt.Sprintf("unknown frequency %q", r.Frequency))
	}
}

// ToModel encodes a variant into its stored form anchored at start.
func ToModel(rule Rule, start time.Time) *model.RecurrenceRule {
	if rule == nil {
		return nil
	}
	out := &model.RecurrenceRule{
		Frequency: rule.Frequency(),
		StartDate: calendar.StartOfDay(start),
	}
	switch r := rule.(type) {
	case Weekly:
		out.DaysOfWeek = r.Days
	case Biweekly:
		out.DaysOfWeek = r.Days
	case Custom:
		out.Interval = r.Interval
		out.DaysOfWeek = r.Days
	}
	return out
}

func normalizeDays(in []int) (Weekdays, error) {
	if len(in) == 0 {
		return nil, nil
	}
	seen := make(map[int]bool, len(in))
	out := make(Weekdays, 0, len(in))
	for _, d := range in {
		if d < 0 || d > 6 {
			return nil, apperr.InvalidInput("decode recurrence", fmt.Sprintf("weekday %d out of range 0-6", d))
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return out, nil
}
