package usecase

import (
	"context"
	"time"

	"prepdaily/model"
)

// The stores below are implemented by package repository against MongoDB
// and by package testutils in memory. Lookups by id are always scoped by
// user and report apperr.ErrNotFound for rows the user does not own.

type TaskStore interface {
	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, userID, taskID string) (*model.Task, error)
	ListTasks(ctx context.Context, userID string) ([]*model.Task, error)
	// FindRecurringCandidates returns active recurring tasks whose start is
	// before dayEnd and whose end, if any, is on or after dayStart.
	FindRecurringCandidates(ctx context.Context, userID string, dayStart, dayEnd time.Time) ([]*model.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
}

type OccurrenceStore interface {
	FindByDay(ctx context.Context, userID string, dayStart, dayEnd time.Time) ([]*model.Occurrence, error)
	GetOccurrence(ctx context.Context, userID, occurrenceID string) (*model.Occurrence, error)
	FindByKey(ctx context.Context, taskID, userID string, day time.Time) (*model.Occurrence, error)
	// UpsertOnInsert inserts occ keyed by (TaskID, UserID, Date) unless a
	// row with that key exists, and returns the stored row. A lost race on
	// the unique index is reported as apperr.ErrConflict.
	UpsertOnInsert(ctx context.Context, occ *model.Occurrence) (*model.Occurrence, error)
	// Increment atomically adds the deltas and returns the updated row.
	Increment(ctx context.Context, occurrenceID string, added, solved int) (*model.Occurrence, error)
	// SetStatus writes status only while the counters still equal the ones
	// it was derived from. It reports whether the write happened.
	SetStatus(ctx context.Context, occurrenceID string, status model.OccurrenceStatus, added, solved int) (bool, error)
	DeleteByTask(ctx context.Context, userID, taskID string) (int64, error)
}

// QuestionStore never returns soft-deleted rows. Every transition is a
// conditional update that returns the row as it was before the update.
type QuestionStore interface {
	CreateQuestion(ctx context.Context, q *model.Question) error
	GetActive(ctx context.Context, userID, questionID string) (*model.Question, error)
	FindActive(ctx context.Context, filter model.QuestionFilter) ([]*model.Question, error)

	// MarkSolved moves pending -> solved.
	MarkSolved(ctx context.Context, userID, questionID string, at time.Time) (*model.Question, error)
	// MarkPending moves solved -> pending and clears every review field.
	MarkPending(ctx context.Context, userID, questionID string, at time.Time) (*model.Question, error)
	// ScheduleFirstReview sets next_review_at only on a never-reviewed,
	// never-scheduled solved question. It reports whether it wrote.
	ScheduleFirstReview(ctx context.Context, userID, questionID string, next time.Time) (bool, error)
	// RecordReview applies one review when review_count still equals
	// expectedCount and the question is solved. A moved count reports
	// apperr.ErrConflict.
	RecordReview(ctx context.Context, userID, questionID string, expectedCount int, at, next time.Time) (*model.Question, error)

	// Attach moves a backlog question onto occ.
	Attach(ctx context.Context, userID, questionID string, occ *model.Occurrence, at time.Time) (*model.Question, error)
	// Detach moves an attached question back to the backlog.
	Detach(ctx context.Context, userID, questionID string, at time.Time) (*model.Question, error)
	SoftDelete(ctx context.Context, userID, questionID string, at time.Time) (*model.Question, error)
	SoftDeleteByTask(ctx context.Context, userID, taskID string, at time.Time) (int64, error)

	UpdateContent(ctx context.Context, userID, questionID string, patch model.QuestionPatch, at time.Time) (*model.Question, error)
	SetStarred(ctx context.Context, userID, questionID string, starred bool, at time.Time) (*model.Question, error)
}

// Clock supplies the current instant.
type Clock func() time.Time
