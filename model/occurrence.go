package model

import "time"

type OccurrenceStatus string

const (
	OccurrencePending    OccurrenceStatus = "pending"
	OccurrenceIncomplete OccurrenceStatus = "incomplete"
	OccurrenceInProgress OccurrenceStatus = "in_progress"
	OccurrenceCompleted  OccurrenceStatus = "completed"
)

// Occurrence is one task materialized on one day. The task fields are a
// snapshot taken at materialization time.
type Occurrence struct {
	ID          string           `bson:"_id" json:"id"`
	TaskID      string           `bson:"task_id" json:"task_id"`
	UserID      string           `bson:"user_id" json:"user_id"`
	Date        time.Time        `bson:"date" json:"date"`
	TaskName    string           `bson:"task_name" json:"task_name"`
	Category    string           `bson:"category" json:"category"`
	TargetCount int              `bson:"target_count" json:"target_count"`
	AddedCount  int              `bson:"added_count" json:"added_count"`
	SolvedCount int              `bson:"solved_count" json:"solved_count"`
	Status      OccurrenceStatus `bson:"status" json:"status"`
	CreatedAt   time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `bson:"updated_at" json:"updated_at"`
}

// DeriveStatus maps an occurrence's counters to its status. Status holds no
// state of its own; it is always recomputable from the counters.
func DeriveStatus(added, solved, target int) OccurrenceStatus {
	switch {
	case added <= 0:
		return OccurrencePending
	case added < target:
		return OccurrenceIncomplete
	case solved >= added:
		return OccurrenceCompleted
	case solved > 0:
		return OccurrenceInProgress
	default:
		return OccurrencePending
	}
}
