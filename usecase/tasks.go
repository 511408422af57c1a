package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"prepdaily/apperr"
	"prepdaily/calendar"
	"prepdaily/model"
	"prepdaily/recurrence"
)

// TaskInput is a new task definition.
type TaskInput struct {
	Name        string
	Category    string
	TargetCount int
	IsRecurring bool
	Recurrence  *model.RecurrenceRule
	EndDate     *time.Time
	Date        *time.Time
}

type TasksService struct {
	tasks       TaskStore
	occurrences OccurrenceStore
	questions   QuestionStore
	daily       *DailyService
	now         Clock
	log         *slog.Logger
}

func NewTasksService(tasks TaskStore, occurrences OccurrenceStore, questions QuestionStore, daily *DailyService, now Clock, log *slog.Logger) *TasksService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &TasksService{
		tasks:       tasks,
		occurrences: occurrences,
		questions:   questions,
		daily:       daily,
		now:         now,
		log:         log,
	}
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := calendar.StartOfDay(*t)
	return &d
}

// normalizeRule validates a stored rule and snaps its start to a day.
func normalizeRule(op string, r *model.RecurrenceRule, fallbackStart time.Time) (*model.RecurrenceRule, error) {
	if r == nil {
		return nil, apperr.InvalidInput(op, "recurring tasks need a recurrence rule")
	}
	rule, err := recurrence.FromModel(r)
	if err != nil {
		return nil, err
	}
	start := r.StartDate
	if start.IsZero() {
		start = fallbackStart
	}
	return recurrence.ToModel(rule, start), nil
}

// Create stores a task. One-off tasks are materialized right away on their
// day.
func (s *TasksService) Create(ctx context.Context, userID string, in TaskInput) (*model.Task, error) {
	if err := requireUser("create task", userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.InvalidInput("create task", "name is required")
	}
	if in.TargetCount < 0 {
		return nil, apperr.InvalidInput("create task", "target count cannot be negative")
	}

	now := s.now()
	task := &model.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.TrimSpace(in.Category),
		TargetCount: in.TargetCount,
		IsRecurring: in.IsRecurring,
		EndDate:     dayPtr(in.EndDate),
		Status:      model.TaskActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if in.IsRecurring {
		rule, err := normalizeRule("create task", in.Recurrence, now)
		if err != nil {
			return nil, err
		}
		task.Recurrence = rule
		if task.EndDate != nil && task.EndDate.Before(rule.StartDate) {
			return nil, apperr.InvalidInput("create task", "end date is before start date")
		}
	} else {
		day := calendar.StartOfDay(now)
		if in.Date != nil {
			day = calendar.StartOfDay(*in.Date)
		}
		task.Date = &day
		task.EndDate = nil
	}

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if !task.IsRecurring {
		if _, err := s.daily.MaterializeOneOff(ctx, task); err != nil {
			return nil, err
		}
	}
	return task, nil
}

func (s *TasksService) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	if err := requireUser("get task", userID); err != nil {
		return nil, err
	}
	return s.tasks.GetTask(ctx, userID, taskID)
}

func (s *TasksService) List(ctx context.Context, userID string) ([]*model.Task, error) {
	if err := requireUser("list tasks", userID); err != nil {
		return nil, err
	}
	return s.tasks.ListTasks(ctx, userID)
}

// Update edits a task. Occurrences already materialized keep their snapshot.
func (s *TasksService) Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	if err := requireUser("update task", userID); err != nil {
		return nil, err
	}
	current, err := s.tasks.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperr.InvalidInput("update task", "name cannot be empty")
	}
	if patch.TargetCount != nil && *patch.TargetCount < 0 {
		return nil, apperr.InvalidInput("update task", "target count cannot be negative")
	}
	if patch.Recurrence != nil {
		if !current.IsRecurring {
			return nil, apperr.InvalidState("update task", "one-off tasks have no recurrence")
		}
		start := s.now()
		if current.Recurrence != nil {
			start = current.Recurrence.StartDate
		}
		rule, err := normalizeRule("update task", patch.Recurrence, start)
		if err != nil {
			return nil, err
		}
		patch.Recurrence = rule
	}
	patch.EndDate = dayPtr(patch.EndDate)
	if patch.EndDate != nil {
		start := current.CreatedAt
		if patch.Recurrence != nil {
			start = patch.Recurrence.StartDate
		} else if current.Recurrence != nil {
			start = current.Recurrence.StartDate
		}
		if patch.EndDate.Before(calendar.StartOfDay(start)) {
			return nil, apperr.InvalidInput("update task", "end date is before start date")
		}
	}
	return s.tasks.UpdateTask(ctx, userID, taskID, patch)
}

// Complete retires a task; it stops materializing from the next query on.
func (s *TasksService) Complete(ctx context.Context, userID, taskID string) (*model.Task, error) {
	status := model.TaskCompleted
	return s.Update(ctx, userID, taskID, model.TaskPatch{Status: &status})
}

// Delete removes a task together with its occurrences and questions.
func (s *TasksService) Delete(ctx context.Context, userID, taskID string) error {
	if err := requireUser("delete task", userID); err != nil {
		return err
	}
	if _, err := s.tasks.GetTask(ctx, userID, taskID); err != nil {
		return err
	}
	now := s.now()
	questions, err := s.questions.SoftDeleteByTask(ctx, userID, taskID, now)
	if err != nil {
		return fmt.Errorf("delete task questions: %w", err)
	}
	occurrences, err := s.occurrences.DeleteByTask(ctx, userID, taskID)
	if err != nil {
		return fmt.Errorf("delete task occurrences: %w", err)
	}
	if err := s.tasks.DeleteTask(ctx, userID, taskID); err != nil {
		return err
	}
	s.log.Info("task deleted", "task_id", taskID, "questions", questions, "occurrences", occurrences)
	return nil
}
