package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"prepdaily/calendar"
	"prepdaily/model"
	"prepdaily/testutils"
	"prepdaily/usecase"
)

const userID = "user-1"

type env struct {
	tasks       *testutils.MemTasks
	occurrences *testutils.MemOccurrences
	questions   *testutils.MemQuestions
	clock       *testutils.Clock

	daily    *usecase.DailyService
	ledger   *usecase.CounterLedger
	reviews  *usecase.ReviewScheduler
	questSvc *usecase.QuestionsService
	tasksSvc *usecase.TasksService
}

// newEnv wires every service over in-memory stores with the clock at 09:00
// on the given day.
func newEnv(t *testing.T, today string) *env {
	t.Helper()
	e := &env{
		tasks:       testutils.NewMemTasks(),
		occurrences: testutils.NewMemOccurrences(),
		questions:   testutils.NewMemQuestions(),
		clock:       testutils.NewClock(day(t, today).Add(9 * time.Hour)),
	}
	e.wire(e.questions)
	return e
}

func (e *env) wire(questions usecase.QuestionStore) {
	log := testutils.Logger()
	e.daily = usecase.NewDailyService(e.tasks, e.occurrences, questions, usecase.DailyOptions{Now: e.clock.Now, Logger: log})
	e.ledger = usecase.NewCounterLedger(e.occurrences, log)
	e.reviews = usecase.NewReviewScheduler(questions, nil, e.clock.Now, log)
	e.questSvc = usecase.NewQuestionsService(questions, e.occurrences, e.ledger, e.reviews, e.clock.Now, log)
	e.tasksSvc = usecase.NewTasksService(e.tasks, e.occurrences, questions, e.daily, e.clock.Now, log)
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}

func (e *env) dailyTask(t *testing.T, name, category, start string, target int) *model.Task {
	t.Helper()
	task, err := e.tasksSvc.Create(context.Background(), userID, usecase.TaskInput{
		Name:        name,
		Category:    category,
		TargetCount: target,
		IsRecurring: true,
		Recurrence:  &model.RecurrenceRule{Frequency: model.FrequencyDaily, StartDate: day(t, start)},
	})
	require.NoError(t, err)
	return task
}

// occurrenceOn resolves the day and returns the single occurrence of task.
func (e *env) occurrenceOn(t *testing.T, task *model.Task, date string) *model.Occurrence {
	t.Helper()
	plan, err := e.daily.ResolveDay(context.Background(), userID, day(t, date))
	require.NoError(t, err)
	for _, g := range plan.Groups {
		for _, inst := range g.Instances {
			if inst.Occurrence.TaskID == task.ID {
				return inst.Occurrence
			}
		}
	}
	t.Fatalf("task %s has no occurrence on %s", task.Name, date)
	return nil
}

func (e *env) occurrence(t *testing.T, id string) *model.Occurrence {
	t.Helper()
	occ, err := e.occurrences.GetOccurrence(context.Background(), userID, id)
	require.NoError(t, err)
	return occ
}
