package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"prepdaily/apperr"
	"prepdaily/calendar"
	"prepdaily/model"
	"prepdaily/recurrence"
	"prepdaily/utils"
)

const (
	DefaultMaxRangeDays = 62
	rangeWorkers        = 4
)

// ResolvedOccurrence is an occurrence together with its live questions.
type ResolvedOccurrence struct {
	Occurrence *model.Occurrence  `json:"occurrence"`
	Questions  []*model.Question `json:"questions"`
}

type Summary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Incomplete int `json:"incomplete"`
	Pending    int `json:"pending"`
}

func (s *Summary) add(status model.OccurrenceStatus) {
	s.Total++
	switch status {
	case model.OccurrenceCompleted:
		s.Completed++
	case model.OccurrenceInProgress:
		s.InProgress++
	case model.OccurrenceIncomplete:
		s.Incomplete++
	default:
		s.Pending++
	}
}

type CategoryGroup struct {
	Category  string                `json:"category"`
	Instances []*ResolvedOccurrence `json:"instances"`
	Summary   Summary               `json:"summary"`
}

// DayPlan is everything due for a user on one day.
type DayPlan struct {
	Date    string           `json:"date"`
	Groups  []*CategoryGroup `json:"groups"`
	Summary Summary          `json:"summary"`
}

// DailyService materializes occurrences on demand.
type DailyService struct {
	tasks        TaskStore
	occurrences  OccurrenceStore
	questions    QuestionStore
	now          Clock
	maxRangeDays int
	log          *slog.Logger
}

type DailyOptions struct {
	Now          Clock
	MaxRangeDays int
	Logger       *slog.Logger
}

func NewDailyService(tasks TaskStore, occurrences OccurrenceStore, questions QuestionStore, opts DailyOptions) *DailyService {
	svc := &DailyService{
		tasks:        tasks,
		occurrences:  occurrences,
		questions:    questions,
		now:          opts.Now,
		maxRangeDays: opts.MaxRangeDays,
		log:          opts.Logger,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.maxRangeDays <= 0 {
		svc.maxRangeDays = DefaultMaxRangeDays
	}
	if svc.log == nil {
		svc.log = slog.Default()
	}
	return svc
}

// ResolveDay returns every occurrence due for userID on date's day,
// materializing the ones that do not exist yet.
func (s *DailyService) ResolveDay(ctx context.Context, userID string, date time.Time) (*DayPlan, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("resolve day", "missing user")
	}
	dayStart, dayEnd := calendar.Window(date)

	existing, err := s.occurrences.FindByDay(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("resolve day: find occurrences: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, occ := range existing {
		have[occ.TaskID] = true
	}

	candidates, err := s.tasks.FindRecurringCandidates(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("resolve day: find tasks: %w", err)
	}

	occurrences := existing
	for _, task := range candidates {
		if have[task.ID] || !recurrence.TaskFires(task, dayStart) {
			continue
		}
		occ, err := s.materialize(ctx, task, dayStart)
		if err != nil {
			return nil, err
		}
		have[task.ID] = true
		occurrences = append(occurrences, occ)
	}

	return s.assemble(ctx, userID, dayStart, occurrences)
}

// ResolveRange resolves each day in [from, to].
func (s *DailyService) ResolveRange(ctx context.Context, userID string, from, to time.Time) ([]*DayPlan, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("resolve range", "missing user")
	}
	from, to = calendar.StartOfDay(from), calendar.StartOfDay(to)
	span := calendar.DaysBetween(from, to)
	if span < 0 {
		return nil, apperr.InvalidInput("resolve range", "from must not be after to")
	}
	if span+1 > s.maxRangeDays {
		return nil, apperr.InvalidInput("resolve range", fmt.Sprintf("range cannot exceed %d days", s.maxRangeDays))
	}

	plans := make([]*DayPlan, span+1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rangeWorkers)
	for i := range plans {
		g.Go(func() error {
			plan, err := s.ResolveDay(gctx, userID, calendar.AddDays(from, i))
			if err != nil {
				return err
			}
			plans[i] = plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}

// MaterializeOneOff creates the single occurrence of a non-recurring task.
func (s *DailyService) MaterializeOneOff(ctx context.Context, task *model.Task) (*model.Occurrence, error) {
	day := s.now()
	if task.Date != nil {
		day = *task.Date
	}
	return s.materialize(ctx, task, calendar.StartOfDay(day))
}

// materialize upserts the occurrence for (task, day). Losing the insert race
// to a concurrent request is success: the winner's row is fetched instead.
func (s *DailyService) materialize(ctx context.Context, task *model.Task, day time.Time) (*model.Occurrence, error) {
	now := s.now()
	occ := &model.Occurrence{
		ID:          uuid.New().String(),
		TaskID:      task.ID,
		UserID:      task.UserID,
		Date:        day,
		TaskName:    task.Name,
		Category:    task.Category,
		TargetCount: task.TargetCount,
		Status:      model.OccurrencePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	stored, err := s.occurrences.UpsertOnInsert(ctx, occ)
	if err == nil {
		if stored.ID == occ.ID {
			utils.TrackMaterialization("created")
		} else {
			utils.TrackMaterialization("existing")
		}
		return stored, nil
	}
	if !errors.Is(err, apperr.ErrConflict) {
		return nil, fmt.Errorf("materialize task %s: %w", task.ID, err)
	}

	utils.TrackMaterialization("raced")
	s.log.Debug("occurrence insert raced, refetching", "task_id", task.ID, "date", calendar.FormatDate(day))
	stored, err = s.occurrences.FindByKey(ctx, task.ID, task.UserID, day)
	if err != nil {
		return nil, fmt.Errorf("materialize task %s: refetch: %w", task.ID, err)
	}
	return stored, nil
}

func (s *DailyService) assemble(ctx context.Context, userID string, day time.Time, occurrences []*model.Occurrence) (*DayPlan, error) {
	plan := &DayPlan{Date: calendar.FormatDate(day), Groups: []*CategoryGroup{}}
	if len(occurrences) == 0 {
		return plan, nil
	}

	ids := make([]string, len(occurrences))
	for i, occ := range occurrences {
		ids[i] = occ.ID
	}
	questions, err := s.questions.FindActive(ctx, model.QuestionFilter{UserID: userID, OccurrenceIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("resolve day: find questions: %w", err)
	}
	byOccurrence := make(map[string][]*model.Question, len(occurrences))
	for _, q := range questions {
		if q.Attached() {
			byOccurrence[*q.OccurrenceID] = append(byOccurrence[*q.OccurrenceID], q)
		}
	}

	groups := make(map[string]*CategoryGroup)
	for _, occ := range occurrences {
		g, ok := groups[occ.Category]
		if !ok {
			g = &CategoryGroup{Category: occ.Category}
			groups[occ.Category] = g
			plan.Groups = append(plan.Groups, g)
		}
		qs := byOccurrence[occ.ID]
		if qs == nil {
			qs = []*model.Question{}
		}
		g.Instances = append(g.Instances, &ResolvedOccurrence{Occurrence: occ, Questions: qs})
		g.Summary.add(occ.Status)
		plan.Summary.add(occ.Status)
	}

	sort.Slice(plan.Groups, func(i, j int) bool {
		return plan.Groups[i].Category < plan.Groups[j].Category
	})
	for _, g := range plan.Groups {
		sort.SliceStable(g.Instances, func(i, j int) bool {
			return g.Instances[i].Occurrence.TaskName < g.Instances[j].Occurrence.TaskName
		})
	}
	return plan, nil
}
