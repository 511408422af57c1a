package recurrence

import (
	"time"

	"prepdaily/calendar"
	"prepdaily/model"
)

// Fires reports whether rule is due on target's day. Both bounds are
// inclusive at day granularity; end may be nil.
func Fires(rule Rule, start time.Time, end *time.Time, target time.Time) bool {
	if rule == nil {
		return false
	}
	if calendar.DaysBetween(start, target) < 0 {
		return false
	}
	if end != nil && calendar.DaysBetween(*end, target) > 0 {
		return false
	}
	return rule.firesOn(start, target)
}

// TaskFires evaluates a stored task on target's day. Inactive, one-off and
// undecodable tasks never fire.
func TaskFires(task *model.Task, target time.Time) bool {
	if task == nil || !task.IsRecurring || task.Status != model.TaskActive || task.Recurrence == nil {
		return false
	}
	rule, err := FromModel(task.Recurrence)
	if err != nil {
		return false
	}
	return Fires(rule, task.Recurrence.StartDate, task.EndDate, target)
}
