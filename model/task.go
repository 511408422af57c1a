package model

import "time"

type TaskStatus string
type Frequency string

const (
	TaskActive    TaskStatus = "active"
	TaskCompleted TaskStatus = "completed"

	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyCustom   Frequency = "custom"
)

// RecurrenceRule is the stored form of a task's recurrence. StartDate is the
// first day the rule can fire.
type RecurrenceRule struct {
	Frequency  Frequency `bson:"frequency" json:"frequency"`
	DaysOfWeek []int     `bson:"days_of_week,omitempty" json:"days_of_week,omitempty"`
	Interval   int       `bson:"interval,omitempty" json:"interval,omitempty"`
	StartDate  time.Time `bson:"start_date" json:"start_date"`
}

type Task struct {
	ID          string          `bson:"_id" json:"id"`
	UserID      string          `bson:"user_id" json:"user_id"`
	Name        string          `bson:"name" json:"name"`
	Category    string          `bson:"category" json:"category"`
	TargetCount int             `bson:"target_count" json:"target_count"`
	IsRecurring bool            `bson:"is_recurring" json:"is_recurring"`
	Recurrence  *RecurrenceRule `bson:"recurrence,omitempty" json:"recurrence,omitempty"`
	EndDate     *time.Time      `bson:"end_date,omitempty" json:"end_date,omitempty"`
	Date        *time.Time      `bson:"date,omitempty" json:"date,omitempty"` // one-off tasks only
	Status      TaskStatus      `bson:"status" json:"status"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at" json:"updated_at"`
}

// TaskPatch carries user edits. Nil fields are left unchanged.
type TaskPatch struct {
	Name        *string
	Category    *string
	TargetCount *int
	Recurrence  *RecurrenceRule
	EndDate     *time.Time
	ClearEnd    bool
	Status      *TaskStatus
}
