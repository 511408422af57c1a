package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"prepdaily/apperr"
	"prepdaily/calendar"
	"prepdaily/model"
)

// DefaultIntervals is the spaced-repetition schedule in days.
var DefaultIntervals = []int{1, 3, 7, 14, 30}

const reviewAttempts = 3

type ReviewFilter struct {
	Topic      string
	Difficulty model.Difficulty
}

// ReviewScheduler decides when a solved question comes up for review.
type ReviewScheduler struct {
	questions QuestionStore
	intervals []int
	now       Clock
	log       *slog.Logger
}

func NewReviewScheduler(questions QuestionStore, intervals []int, now Clock, log *slog.Logger) *ReviewScheduler {
	if len(intervals) == 0 {
		intervals = DefaultIntervals
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &ReviewScheduler{questions: questions, intervals: intervals, now: now, log: log}
}

// NextAfter returns the due date following the given review count. The
// interval index saturates at the last entry.
func (s *ReviewScheduler) NextAfter(from time.Time, reviewCount int) time.Time {
	i := reviewCount
	if i >= len(s.intervals) {
		i = len(s.intervals) - 1
	}
	if i < 0 {
		i = 0
	}
	return calendar.AddDays(from, s.intervals[i])
}

// OnSolve schedules the first review of a question solved for the first
// time. Later solves keep whatever schedule the question already has.
func (s *ReviewScheduler) OnSolve(ctx context.Context, q *model.Question, solvedAt time.Time) (*time.Time, error) {
	if q.ReviewCount != 0 || q.NextReviewAt != nil {
		return q.NextReviewAt, nil
	}
	next := s.NextAfter(solvedAt, 0)
	written, err := s.questions.ScheduleFirstReview(ctx, q.UserID, q.ID, next)
	if err != nil {
		return nil, fmt.Errorf("schedule first review: %w", err)
	}
	if !written {
		return nil, nil
	}
	return &next, nil
}

// OnReview records a review of a solved question and moves its due date
// along the schedule.
func (s *ReviewScheduler) OnReview(ctx context.Context, userID, questionID string) (*model.Question, error) {
	for attempt := 0; attempt < reviewAttempts; attempt++ {
		q, err := s.questions.GetActive(ctx, userID, questionID)
		if err != nil {
			return nil, err
		}
		if q.Status != model.QuestionSolved {
			return nil, apperr.InvalidState("review question", "only solved questions can be reviewed")
		}

		now := s.now()
		count := q.ReviewCount + 1
		next := s.NextAfter(now, count)
		updated, err := s.questions.RecordReview(ctx, userID, questionID, q.ReviewCount, now, next)
		if errors.Is(err, apperr.ErrConflict) {
			s.log.Debug("review raced, retrying", "question_id", questionID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, apperr.InvalidState("review question", "question changed concurrently, try again")
}

// OnReset forgets the question's solve and review history. It returns the
// question as it was before the reset.
func (s *ReviewScheduler) OnReset(ctx context.Context, userID, questionID string) (*model.Question, error) {
	return s.questions.MarkPending(ctx, userID, questionID, s.now())
}

// DueForReview lists solved questions due by now, soonest first.
func (s *ReviewScheduler) DueForReview(ctx context.Context, userID string, now time.Time, f ReviewFilter) ([]*model.Question, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("due for review", "missing user")
	}
	return s.questions.FindActive(ctx, model.QuestionFilter{
		UserID:     userID,
		Status:     model.QuestionSolved,
		DueBefore:  &now,
		Topic:      f.Topic,
		Difficulty: f.Difficulty,
	})
}
