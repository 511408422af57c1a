package testutils

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"prepdaily/apperr"
	"prepdaily/model"
)

// MemTasks is an in-memory task store.
type MemTasks struct {
	mu    sync.Mutex
	rows  map[string]*model.Task
	order []string
}

func NewMemTasks() *MemTasks {
	return &MemTasks{rows: make(map[string]*model.Task)}
}

func copyTask(t *model.Task) *model.Task {
	c := *t
	if t.Recurrence != nil {
		r := *t.Recurrence
		r.DaysOfWeek = append([]int(nil), t.Recurrence.DaysOfWeek...)
		c.Recurrence = &r
	}
	if t.EndDate != nil {
		e := *t.EndDate
		c.EndDate = &e
	}
	if t.Date != nil {
		d := *t.Date
		c.Date = &d
	}
	return &c
}

func (m *MemTasks) CreateTask(_ context.Context, task *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.UserID == "" {
		return errors.New("user ID is required")
	}
	if _, ok := m.rows[task.ID]; ok {
		return apperr.Conflict("insert task", fmt.Errorf("duplicate id %s", task.ID))
	}
	m.rows[task.ID] = copyTask(task)
	m.order = append(m.order, task.ID)
	return nil
}

func (m *MemTasks) GetTask(_ context.Context, userID, taskID string) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[taskID]
	if !ok || t.UserID != userID {
		return nil, apperr.NotFound("get task", "task not found")
	}
	return copyTask(t), nil
}

func (m *MemTasks) ListTasks(_ context.Context, userID string) ([]*model.Task, error) {
	return m.filter(func(t *model.Task) bool { return t.UserID == userID }), nil
}

func (m *MemTasks) FindRecurringCandidates(_ context.Context, userID string, dayStart, dayEnd time.Time) ([]*model.Task, error) {
	return m.filter(func(t *model.Task) bool {
		return t.UserID == userID &&
			t.Status == model.TaskActive &&
			t.IsRecurring &&
			t.Recurrence != nil &&
			t.Recurrence.StartDate.Before(dayEnd) &&
			(t.EndDate == nil || !t.EndDate.Before(dayStart))
	}), nil
}

func (m *MemTasks) UpdateTask(_ context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[taskID]
	if !ok || t.UserID != userID {
		return nil, apperr.NotFound("update task", "task not found")
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.TargetCount != nil {
		t.TargetCount = *patch.TargetCount
	}
	if patch.Recurrence != nil {
		r := *patch.Recurrence
		t.Recurrence = &r
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.EndDate != nil {
		e := *patch.EndDate
		t.EndDate = &e
	} else if patch.ClearEnd {
		t.EndDate = nil
	}
	t.UpdatedAt = time.Now()
	return copyTask(t), nil
}

func (m *MemTasks) DeleteTask(_ context.Context, userID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[taskID]
	if !ok || t.UserID != userID {
		return apperr.NotFound("delete task", "task not found")
	}
	delete(m.rows, taskID)
	return nil
}

func (m *MemTasks) filter(keep func(*model.Task) bool) []*model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Task{}
	for _, id := range m.order {
		if t, ok := m.rows[id]; ok && keep(t) {
			out = append(out, copyTask(t))
		}
	}
	return out
}

// MemOccurrences is an in-memory occurrence store with the same unique key
// and atomic increments as the Mongo one.
type MemOccurrences struct {
	mu    sync.Mutex
	rows  map[string]*model.Occurrence
	byKey map[string]string
	order []string

	// LoseNextUpserts makes that many upcoming inserts lose a race: a
	// competing row is stored and the call reports a conflict.
	LoseNextUpserts int
	// SetStatusErr, when set, fails every status write.
	SetStatusErr error
	// IncrementErr, when set, fails every counter increment.
	IncrementErr error

	upserts int
}

func NewMemOccurrences() *MemOccurrences {
	return &MemOccurrences{
		rows:  make(map[string]*model.Occurrence),
		byKey: make(map[string]string),
	}
}

func occurrenceKey(taskID, userID string, day time.Time) string {
	return fmt.Sprintf("%s|%s|%d", taskID, userID, day.Unix())
}

func copyOccurrence(o *model.Occurrence) *model.Occurrence {
	c := *o
	return &c
}

// Upserts counts calls to UpsertOnInsert.
func (m *MemOccurrences) Upserts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts
}

// Len counts stored occurrences.
func (m *MemOccurrences) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// Put stores an occurrence directly.
func (m *MemOccurrences) Put(o *model.Occurrence) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(copyOccurrence(o))
}

func (m *MemOccurrences) insert(o *model.Occurrence) {
	m.rows[o.ID] = o
	m.byKey[occurrenceKey(o.TaskID, o.UserID, o.Date)] = o.ID
	m.order = append(m.order, o.ID)
}

func (m *MemOccurrences) FindByDay(_ context.Context, userID string, dayStart, dayEnd time.Time) ([]*model.Occurrence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Occurrence{}
	for _, id := range m.order {
		o, ok := m.rows[id]
		if ok && o.UserID == userID && !o.Date.Before(dayStart) && o.Date.Before(dayEnd) {
			out = append(out, copyOccurrence(o))
		}
	}
	return out, nil
}

func (m *MemOccurrences) GetOccurrence(_ context.Context, userID, occurrenceID string) (*model.Occurrence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[occurrenceID]
	if !ok || o.UserID != userID {
		return nil, apperr.NotFound("get occurrence", "occurrence not found")
	}
	return copyOccurrence(o), nil
}

func (m *MemOccurrences) FindByKey(_ context.Context, taskID, userID string, day time.Time) (*model.Occurrence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byKey[occurrenceKey(taskID, userID, day)]
	if !ok {
		return nil, apperr.NotFound("find occurrence", "occurrence not found")
	}
	return copyOccurrence(m.rows[id]), nil
}

func (m *MemOccurrences) UpsertOnInsert(_ context.Context, occ *model.Occurrence) (*model.Occurrence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++

	key := occurrenceKey(occ.TaskID, occ.UserID, occ.Date)
	if id, ok := m.byKey[key]; ok {
		return copyOccurrence(m.rows[id]), nil
	}
	if m.LoseNextUpserts > 0 {
		m.LoseNextUpserts--
		winner := copyOccurrence(occ)
		winner.ID = "winner-" + occ.ID
		m.insert(winner)
		return nil, apperr.Conflict("upsert occurrence", errors.New("E11000 duplicate key error"))
	}
	m.insert(copyOccurrence(occ))
	return copyOccurrence(occ), nil
}

func (m *MemOccurrences) Increment(_ context.Context, occurrenceID string, added, solved int) (*model.Occurrence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IncrementErr != nil {
		return nil, m.IncrementErr
	}
	o, ok := m.rows[occurrenceID]
	if !ok {
		return nil, apperr.NotFound("increment occurrence", "occurrence not found")
	}
	o.AddedCount += added
	o.SolvedCount += solved
	o.UpdatedAt = time.Now()
	return copyOccurrence(o), nil
}

func (m *MemOccurrences) SetStatus(_ context.Context, occurrenceID string, status model.OccurrenceStatus, added, solved int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetStatusErr != nil {
		return false, m.SetStatusErr
	}
	o, ok := m.rows[occurrenceID]
	if !ok || o.AddedCount != added || o.SolvedCount != solved {
		return false, nil
	}
	o.Status = status
	return true, nil
}

func (m *MemOccurrences) DeleteByTask(_ context.Context, userID, taskID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, o := range m.rows {
		if o.UserID == userID && o.TaskID == taskID {
			delete(m.rows, id)
			delete(m.byKey, occurrenceKey(o.TaskID, o.UserID, o.Date))
			n++
		}
	}
	return n, nil
}

// MemQuestions is an in-memory question store. Soft-deleted rows are kept
// but never returned.
type MemQuestions struct {
	mu    sync.Mutex
	rows  map[string]*model.Question
	order []string

	// ScheduleErr, when set, fails every first-review write.
	ScheduleErr error
}

func NewMemQuestions() *MemQuestions {
	return &MemQuestions{rows: make(map[string]*model.Question)}
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func copyQuestion(q *model.Question) *model.Question {
	c := *q
	if q.OccurrenceID != nil {
		c.OccurrenceID = strPtr(*q.OccurrenceID)
	}
	if q.TaskID != nil {
		c.TaskID = strPtr(*q.TaskID)
	}
	if q.SolvedAt != nil {
		c.SolvedAt = timePtr(*q.SolvedAt)
	}
	if q.NextReviewAt != nil {
		c.NextReviewAt = timePtr(*q.NextReviewAt)
	}
	if q.LastReviewedAt != nil {
		c.LastReviewedAt = timePtr(*q.LastReviewedAt)
	}
	if q.DeletedAt != nil {
		c.DeletedAt = timePtr(*q.DeletedAt)
	}
	c.Tags = append([]string(nil), q.Tags...)
	c.Revisions = append([]model.Revision(nil), q.Revisions...)
	return &c
}

// Raw returns a question including soft-deleted ones.
func (m *MemQuestions) Raw(id string) (*model.Question, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.rows[id]
	if !ok {
		return nil, false
	}
	return copyQuestion(q), true
}

func (m *MemQuestions) active(userID, questionID string) (*model.Question, bool) {
	q, ok := m.rows[questionID]
	if !ok || q.UserID != userID || q.DeletedAt != nil {
		return nil, false
	}
	return q, true
}

func (m *MemQuestions) CreateQuestion(_ context.Context, q *model.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if _, ok := m.rows[q.ID]; ok {
		return apperr.Conflict("insert question", fmt.Errorf("duplicate id %s", q.ID))
	}
	m.rows[q.ID] = copyQuestion(q)
	m.order = append(m.order, q.ID)
	return nil
}

func (m *MemQuestions) GetActive(_ context.Context, userID, questionID string) (*model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.active(userID, questionID)
	if !ok {
		return nil, apperr.NotFound("get question", "question not found")
	}
	return copyQuestion(q), nil
}

func (m *MemQuestions) FindActive(_ context.Context, f model.QuestionFilter) ([]*model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := toSet(f.IDs)
	occurrences := toSet(f.OccurrenceIDs)
	out := []*model.Question{}
	for _, id := range m.order {
		q := m.rows[id]
		switch {
		case q.UserID != f.UserID || q.DeletedAt != nil:
			continue
		case ids != nil && !ids[q.ID]:
			continue
		case occurrences != nil && (!q.Attached() || !occurrences[*q.OccurrenceID]):
			continue
		case occurrences == nil && f.BacklogOnly && q.Attached():
			continue
		case f.TaskID != "" && (q.TaskID == nil || *q.TaskID != f.TaskID):
			continue
		case f.Status != "" && q.Status != f.Status:
			continue
		case f.Topic != "" && q.Topic != f.Topic:
			continue
		case f.Difficulty != "" && q.Difficulty != f.Difficulty:
			continue
		case f.DueBefore != nil && (q.NextReviewAt == nil || q.NextReviewAt.After(*f.DueBefore)):
			continue
		}
		out = append(out, copyQuestion(q))
	}
	if f.DueBefore != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].NextReviewAt.Before(*out[j].NextReviewAt)
		})
	}
	return out, nil
}

func toSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// transition mirrors the repository's conditional update: apply runs only
// when cond holds, and the row is returned as it was before.
func (m *MemQuestions) transition(op, stateMsg, userID, questionID string, cond func(*model.Question) bool, apply func(*model.Question)) (*model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.active(userID, questionID)
	if !ok {
		return nil, apperr.NotFound(op, "question not found")
	}
	if !cond(q) {
		return nil, apperr.InvalidState(op, stateMsg)
	}
	before := copyQuestion(q)
	apply(q)
	return before, nil
}

func (m *MemQuestions) MarkSolved(_ context.Context, userID, questionID string, at time.Time) (*model.Question, error) {
	return m.transition("solve question", "question is already solved", userID, questionID,
		func(q *model.Question) bool { return q.Status == model.QuestionPending },
		func(q *model.Question) {
			q.Status = model.QuestionSolved
			q.SolvedAt = timePtr(at)
			q.UpdatedAt = at
		})
}

func (m *MemQuestions) MarkPending(_ context.Context, userID, questionID string, at time.Time) (*model.Question, error) {
	return m.transition("reset question", "only solved questions can be reset", userID, questionID,
		func(q *model.Question) bool { return q.Status == model.QuestionSolved },
		func(q *model.Question) {
			q.Status = model.QuestionPending
			q.SolvedAt = nil
			q.ReviewCount = 0
			q.NextReviewAt = nil
			q.LastReviewedAt = nil
			q.Revisions = nil
			q.UpdatedAt = at
		})
}

func (m *MemQuestions) ScheduleFirstReview(_ context.Context, userID, questionID string, next time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ScheduleErr != nil {
		return false, m.ScheduleErr
	}
	q, ok := m.active(userID, questionID)
	if !ok || q.Status != model.QuestionSolved || q.ReviewCount != 0 || q.NextReviewAt != nil {
		return false, nil
	}
	q.NextReviewAt = timePtr(next)
	return true, nil
}

func (m *MemQuestions) RecordReview(_ context.Context, userID, questionID string, expectedCount int, at, next time.Time) (*model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.active(userID, questionID)
	if !ok {
		return nil, apperr.NotFound("review question", "question not found")
	}
	if q.Status != model.QuestionSolved {
		return nil, apperr.InvalidState("review question", "only solved questions can be reviewed")
	}
	if q.ReviewCount != expectedCount {
		return nil, apperr.Conflict("review question", fmt.Errorf("review count moved from %d to %d", expectedCount, q.ReviewCount))
	}
	q.ReviewCount++
	q.LastReviewedAt = timePtr(at)
	q.NextReviewAt = timePtr(next)
	q.Revisions = append(q.Revisions, model.Revision{ReviewedAt: at, ReviewNumber: q.ReviewCount})
	q.UpdatedAt = at
	return copyQuestion(q), nil
}

func (m *MemQuestions) Attach(_ context.Context, userID, questionID string, occ *model.Occurrence, at time.Time) (*model.Question, error) {
	return m.transition("move question", "question is already attached", userID, questionID,
		func(q *model.Question) bool { return !q.Attached() },
		func(q *model.Question) {
			q.OccurrenceID = strPtr(occ.ID)
			q.TaskID = strPtr(occ.TaskID)
			q.Category = occ.Category
			q.UpdatedAt = at
		})
}

func (m *MemQuestions) Detach(_ context.Context, userID, questionID string, at time.Time) (*model.Question, error) {
	return m.transition("move question to backlog", "question is already in the backlog", userID, questionID,
		func(q *model.Question) bool { return q.Attached() },
		func(q *model.Question) {
			q.OccurrenceID = nil
			q.TaskID = nil
			q.Category = ""
			q.UpdatedAt = at
		})
}

func (m *MemQuestions) SoftDelete(_ context.Context, userID, questionID string, at time.Time) (*model.Question, error) {
	return m.transition("delete question", "", userID, questionID,
		func(*model.Question) bool { return true },
		func(q *model.Question) {
			q.DeletedAt = timePtr(at)
			q.UpdatedAt = at
		})
}

func (m *MemQuestions) SoftDeleteByTask(_ context.Context, userID, taskID string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, q := range m.rows {
		if q.UserID == userID && q.DeletedAt == nil && q.TaskID != nil && *q.TaskID == taskID {
			q.DeletedAt = timePtr(at)
			q.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (m *MemQuestions) UpdateContent(_ context.Context, userID, questionID string, patch model.QuestionPatch, at time.Time) (*model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.active(userID, questionID)
	if !ok {
		return nil, apperr.NotFound("update question", "question not found")
	}
	if patch.Title != nil {
		q.Title = *patch.Title
	}
	if patch.Link != nil {
		q.Link = *patch.Link
	}
	if patch.Topic != nil {
		q.Topic = *patch.Topic
	}
	if patch.Difficulty != nil {
		q.Difficulty = *patch.Difficulty
	}
	if patch.Notes != nil {
		q.Notes = *patch.Notes
	}
	if patch.Tags != nil {
		q.Tags = append([]string(nil), patch.Tags...)
	}
	q.UpdatedAt = at
	return copyQuestion(q), nil
}

func (m *MemQuestions) SetStarred(_ context.Context, userID, questionID string, starred bool, at time.Time) (*model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.active(userID, questionID)
	if !ok {
		return nil, apperr.NotFound("star question", "question not found")
	}
	q.Starred = starred
	q.UpdatedAt = at
	return copyQuestion(q), nil
}
