package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"prepdaily/apperr"
	"prepdaily/model"
)

// QuestionInput is a new question. A non-empty OccurrenceID attaches it;
// otherwise it goes to the backlog.
type QuestionInput struct {
	OccurrenceID string
	Title        string
	Link         string
	Topic        string
	Difficulty   model.Difficulty
	Notes        string
	Tags         []string
}

// MoveResult reports what a bulk move did with each id.
type MoveResult struct {
	Moved   []string `json:"moved"`
	Skipped []string `json:"skipped"`
}

// QuestionsService runs the question lifecycle. Each transition on an
// attached question is followed by a ledger update on its occurrence.
type QuestionsService struct {
	questions   QuestionStore
	occurrences OccurrenceStore
	ledger      *CounterLedger
	reviews     *ReviewScheduler
	now         Clock
	log         *slog.Logger
}

func NewQuestionsService(questions QuestionStore, occurrences OccurrenceStore, ledger *CounterLedger, reviews *ReviewScheduler, now Clock, log *slog.Logger) *QuestionsService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &QuestionsService{
		questions:   questions,
		occurrences: occurrences,
		ledger:      ledger,
		reviews:     reviews,
		now:         now,
		log:         log,
	}
}

func requireUser(op, userID string) error {
	if userID == "" {
		return apperr.Unauthorized(op, "missing user")
	}
	return nil
}

// Create stores a new question, attaching it when an occurrence is given.
func (s *QuestionsService) Create(ctx context.Context, userID string, in QuestionInput) (*model.Question, error) {
	if err := requireUser("create question", userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.InvalidInput("create question", "title is required")
	}

	now := s.now()
	q := &model.Question{
		ID:         uuid.New().String(),
		UserID:     userID,
		Title:      strings.TrimSpace(in.Title),
		Link:       in.Link,
		Topic:      in.Topic,
		Difficulty: in.Difficulty,
		Notes:      in.Notes,
		Tags:       in.Tags,
		Status:     model.QuestionPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var occ *model.Occurrence
	if in.OccurrenceID != "" {
		var err error
		occ, err = s.occurrences.GetOccurrence(ctx, userID, in.OccurrenceID)
		if err != nil {
			return nil, err
		}
		q.OccurrenceID = &occ.ID
		q.TaskID = &occ.TaskID
		q.Category = occ.Category
	}

	if err := s.questions.CreateQuestion(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	if occ != nil {
		if _, err := s.ledger.Apply(ctx, occ.ID, attachDelta(q)); err != nil {
			s.log.Error("attached question missing from counters",
				"question_id", q.ID, "occurrence_id", occ.ID, "error", err)
			return nil, err
		}
	}
	return q, nil
}

// Solve marks a pending question solved and schedules its first review.
func (s *QuestionsService) Solve(ctx context.Context, userID, questionID string) (*model.Question, error) {
	if err := requireUser("solve question", userID); err != nil {
		return nil, err
	}
	now := s.now()
	before, err := s.questions.MarkSolved(ctx, userID, questionID, now)
	if err != nil {
		return nil, err
	}
	if before.Attached() {
		if _, err := s.ledger.Apply(ctx, *before.OccurrenceID, Delta{Solved: 1}); err != nil {
			return nil, err
		}
	}

	solved := *before
	solved.Status = model.QuestionSolved
	solved.SolvedAt = &now
	solved.UpdatedAt = now
	next, err := s.reviews.OnSolve(ctx, &solved, now)
	if err != nil {
		// The solve itself stands; the schedule is retried on the next solve.
		s.log.Warn("first review not scheduled", "question_id", questionID, "error", err)
	} else if next != nil {
		solved.NextReviewAt = next
	}
	return &solved, nil
}

// Reset returns a solved question to pending and forgets its reviews.
func (s *QuestionsService) Reset(ctx context.Context, userID, questionID string) (*model.Question, error) {
	if err := requireUser("reset question", userID); err != nil {
		return nil, err
	}
	before, err := s.reviews.OnReset(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}
	if before.Attached() {
		if _, err := s.ledger.Apply(ctx, *before.OccurrenceID, Delta{Solved: -1}); err != nil {
			return nil, err
		}
	}
	return s.questions.GetActive(ctx, userID, questionID)
}

// Review records a spaced-repetition review.
func (s *QuestionsService) Review(ctx context.Context, userID, questionID string) (*model.Question, error) {
	if err := requireUser("review question", userID); err != nil {
		return nil, err
	}
	return s.reviews.OnReview(ctx, userID, questionID)
}

func (s *QuestionsService) DueForReview(ctx context.Context, userID string, f ReviewFilter) ([]*model.Question, error) {
	return s.reviews.DueForReview(ctx, userID, s.now(), f)
}

// Delete soft-deletes a question and removes it from its occurrence's
// counters.
func (s *QuestionsService) Delete(ctx context.Context, userID, questionID string) error {
	if err := requireUser("delete question", userID); err != nil {
		return err
	}
	before, err := s.questions.SoftDelete(ctx, userID, questionID, s.now())
	if err != nil {
		return err
	}
	if before.Attached() {
		if _, err := s.ledger.Apply(ctx, *before.OccurrenceID, detachDelta(before)); err != nil {
			return err
		}
	}
	return nil
}

// BulkDelete deletes every listed question the user owns, skipping unknown
// ids, and returns how many were deleted.
func (s *QuestionsService) BulkDelete(ctx context.Context, userID string, questionIDs []string) (int, error) {
	if err := requireUser("bulk delete questions", userID); err != nil {
		return 0, err
	}
	now := s.now()
	deltas := make(map[string]Delta)
	deleted := 0
	for _, id := range dedupe(questionIDs) {
		before, err := s.questions.SoftDelete(ctx, userID, id, now)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			if lerr := s.ledger.ApplyAll(ctx, deltas); lerr != nil {
				s.log.Error("bulk delete counters not applied", "error", lerr)
			}
			return deleted, err
		}
		deleted++
		if before.Attached() {
			deltas[*before.OccurrenceID] = deltas[*before.OccurrenceID].Plus(detachDelta(before))
		}
	}
	return deleted, s.ledger.ApplyAll(ctx, deltas)
}

// MoveToOccurrence promotes a backlog question onto an occurrence.
func (s *QuestionsService) MoveToOccurrence(ctx context.Context, userID, questionID, occurrenceID string) (*model.Question, error) {
	if err := requireUser("move question", userID); err != nil {
		return nil, err
	}
	occ, err := s.occurrences.GetOccurrence(ctx, userID, occurrenceID)
	if err != nil {
		return nil, err
	}
	before, err := s.questions.Attach(ctx, userID, questionID, occ, s.now())
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.Apply(ctx, occ.ID, attachDelta(before)); err != nil {
		s.log.Error("attached question missing from counters",
			"question_id", questionID, "occurrence_id", occ.ID, "error", err)
		return nil, err
	}
	return s.questions.GetActive(ctx, userID, questionID)
}

// BulkMoveToOccurrence promotes several backlog questions at once.
// Attached or unknown questions are skipped.
func (s *QuestionsService) BulkMoveToOccurrence(ctx context.Context, userID string, questionIDs []string, occurrenceID string) (*MoveResult, error) {
	if err := requireUser("bulk move questions", userID); err != nil {
		return nil, err
	}
	occ, err := s.occurrences.GetOccurrence(ctx, userID, occurrenceID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	res := &MoveResult{Moved: []string{}, Skipped: []string{}}
	var total Delta
	for _, id := range dedupe(questionIDs) {
		before, err := s.questions.Attach(ctx, userID, id, occ, now)
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidState) {
			res.Skipped = append(res.Skipped, id)
			continue
		}
		if err != nil {
			if _, lerr := s.ledger.Apply(ctx, occ.ID, total); lerr != nil {
				s.log.Error("bulk move counters not applied", "error", lerr)
			}
			return res, err
		}
		res.Moved = append(res.Moved, id)
		total = total.Plus(attachDelta(before))
	}
	if _, err := s.ledger.Apply(ctx, occ.ID, total); err != nil {
		return res, err
	}
	return res, nil
}

// MoveToBacklog detaches a question from its occurrence.
func (s *QuestionsService) MoveToBacklog(ctx context.Context, userID, questionID string) (*model.Question, error) {
	if err := requireUser("move question to backlog", userID); err != nil {
		return nil, err
	}
	before, err := s.questions.Detach(ctx, userID, questionID, s.now())
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.Apply(ctx, *before.OccurrenceID, detachDelta(before)); err != nil {
		return nil, err
	}
	return s.questions.GetActive(ctx, userID, questionID)
}

func (s *QuestionsService) Backlog(ctx context.Context, userID string) ([]*model.Question, error) {
	if err := requireUser("list backlog", userID); err != nil {
		return nil, err
	}
	return s.questions.FindActive(ctx, model.QuestionFilter{UserID: userID, BacklogOnly: true})
}

func (s *QuestionsService) Get(ctx context.Context, userID, questionID string) (*model.Question, error) {
	if err := requireUser("get question", userID); err != nil {
		return nil, err
	}
	return s.questions.GetActive(ctx, userID, questionID)
}

// Update edits content fields. Counters are unaffected.
func (s *QuestionsService) Update(ctx context.Context, userID, questionID string, patch model.QuestionPatch) (*model.Question, error) {
	if err := requireUser("update question", userID); err != nil {
		return nil, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, apperr.InvalidInput("update question", "title cannot be empty")
	}
	return s.questions.UpdateContent(ctx, userID, questionID, patch, s.now())
}

func (s *QuestionsService) ToggleStar(ctx context.Context, userID, questionID string) (*model.Question, error) {
	if err := requireUser("star question", userID); err != nil {
		return nil, err
	}
	q, err := s.questions.GetActive(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}
	return s.questions.SetStarred(ctx, userID, questionID, !q.Starred, s.now())
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
