package dto

import (
	"time"

	"prepdaily/calendar"
	"prepdaily/model"
	"prepdaily/usecase"
)

type RecurrenceRequest struct {
	Frequency  string `json:"frequency" binding:"required,frequency"`
	DaysOfWeek []int  `json:"days_of_week" binding:"omitempty,dive,weekday"`
	Interval   int    `json:"interval" binding:"omitempty,min=1"`
	StartDate  string `json:"start_date" binding:"omitempty,date"`
}

type CreateTaskRequest struct {
	Name        string             `json:"name" binding:"required,max=200"`
	Category    string             `json:"category" binding:"required,max=100"`
	TargetCount int                `json:"target_count" binding:"min=0"`
	IsRecurring bool               `json:"is_recurring"`
	Recurrence  *RecurrenceRequest `json:"recurrence"`
	EndDate     string             `json:"end_date" binding:"omitempty,date"`
	Date        string             `json:"date" binding:"omitempty,date"`
}

type UpdateTaskRequest struct {
	Name        *string            `json:"name" binding:"omitempty,max=200"`
	Category    *string            `json:"category" binding:"omitempty,max=100"`
	TargetCount *int               `json:"target_count" binding:"omitempty,min=0"`
	Recurrence  *RecurrenceRequest `json:"recurrence"`
	EndDate     *string            `json:"end_date" binding:"omitempty,date"`
	ClearEnd    bool               `json:"clear_end_date"`
}

// Rule converts the request into a stored rule. Dates were already checked
// by the binding tags.
func (r *RecurrenceRequest) Rule() *model.RecurrenceRule {
	if r == nil {
		return nil
	}
	rule := &model.RecurrenceRule{
		Frequency:  model.Frequency(r.Frequency),
		DaysOfWeek: r.DaysOfWeek,
		Interval:   r.Interval,
	}
	if t := parseDate(r.StartDate); t != nil {
		rule.StartDate = *t
	}
	return rule
}

func (r *CreateTaskRequest) ToInput() usecase.TaskInput {
	return usecase.TaskInput{
		Name:        r.Name,
		Category:    r.Category,
		TargetCount: r.TargetCount,
		IsRecurring: r.IsRecurring,
		Recurrence:  r.Recurrence.Rule(),
		EndDate:     parseDate(r.EndDate),
		Date:        parseDate(r.Date),
	}
}

func (r *UpdateTaskRequest) ToPatch() model.TaskPatch {
	patch := model.TaskPatch{
		Name:        r.Name,
		Category:    r.Category,
		TargetCount: r.TargetCount,
		Recurrence:  r.Recurrence.Rule(),
		ClearEnd:    r.ClearEnd,
	}
	if r.EndDate != nil {
		patch.EndDate = parseDate(*r.EndDate)
	}
	return patch
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := calendar.ParseDate(s)
	if err != nil {
		return nil
	}
	return &t
}
