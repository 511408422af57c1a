package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepdaily/apperr"
	"prepdaily/calendar"
	"prepdaily/model"
	"prepdaily/usecase"
)

func TestResolveDayMaterializesOnce(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	task := e.dailyTask(t, "Arrays", "DSA", "2025-01-06", 1)

	first, err := e.daily.ResolveDay(ctx, userID, day(t, "2025-01-06"))
	require.NoError(t, err)
	require.Len(t, first.Groups, 1)
	require.Len(t, first.Groups[0].Instances, 1)

	occ := first.Groups[0].Instances[0].Occurrence
	assert.Equal(t, task.ID, occ.TaskID)
	assert.Equal(t, model.OccurrencePending, occ.Status)
	assert.Equal(t, "2025-01-06", first.Date)
	assert.Equal(t, usecase.Summary{Total: 1, Pending: 1}, first.Summary)

	second, err := e.daily.ResolveDay(ctx, userID, day(t, "2025-01-06").Add(20*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, occ.ID, second.Groups[0].Instances[0].Occurrence.ID)
	assert.Equal(t, 1, e.occurrences.Len())
}

func TestResolveDayConcurrentCallsConverge(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	e.dailyTask(t, "Arrays", "DSA", "2025-01-06", 1)
	e.dailyTask(t, "Graphs", "DSA", "2025-01-06", 2)

	const callers = 16
	var wg sync.WaitGroup
	plans := make([]*usecase.DayPlan, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			plans[i], errs[i] = e.daily.ResolveDay(context.Background(), userID, day(t, "2025-01-06"))
		}()
	}
	wg.Wait()

	for i := range plans {
		require.NoError(t, errs[i])
		assert.Equal(t, 2, plans[i].Summary.Total)
	}
	assert.Equal(t, 2, e.occurrences.Len())
}

func TestResolveDayRefetchesAfterLostRace(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	task := e.dailyTask(t, "Arrays", "DSA", "2025-01-06", 1)
	e.occurrences.LoseNextUpserts = 1

	occ := e.occurrenceOn(t, task, "2025-01-06")
	assert.Contains(t, occ.ID, "winner-")
	assert.Equal(t, 1, e.occurrences.Len())

	again := e.occurrenceOn(t, task, "2025-01-06")
	assert.Equal(t, occ.ID, again.ID)
}

func TestResolveDayHonoursRuleAndBounds(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	end := day(t, "2025-01-15")
	_, err := e.tasksSvc.Create(ctx, userID, usecase.TaskInput{
		Name:        "Mock interview",
		Category:    "Interview",
		TargetCount: 1,
		IsRecurring: true,
		Recurrence: &model.RecurrenceRule{
			Frequency:  model.FrequencyWeekly,
			DaysOfWeek: []int{1, 3},
			StartDate:  day(t, "2025-01-06"),
		},
		EndDate: &end,
	})
	require.NoError(t, err)

	cases := map[string]int{
		"2025-01-05": 0, // before start
		"2025-01-06": 1, // Monday
		"2025-01-07": 0, // Tuesday
		"2025-01-08": 1, // Wednesday
		"2025-01-15": 1, // Wednesday, last day
		"2025-01-20": 0, // after end
	}
	for date, want := range cases {
		plan, err := e.daily.ResolveDay(ctx, userID, day(t, date))
		require.NoError(t, err)
		assert.Equal(t, want, plan.Summary.Total, date)
	}
}

func TestResolveDaySkipsCompletedTasks(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	task := e.dailyTask(t, "Arrays", "DSA", "2025-01-06", 1)
	e.occurrenceOn(t, task, "2025-01-06")

	_, err := e.tasksSvc.Complete(ctx, userID, task.ID)
	require.NoError(t, err)

	plan, err := e.daily.ResolveDay(ctx, userID, day(t, "2025-01-07"))
	require.NoError(t, err)
	assert.Zero(t, plan.Summary.Total)

	// Already materialized days keep their occurrence.
	plan, err = e.daily.ResolveDay(ctx, userID, day(t, "2025-01-06"))
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Summary.Total)
}

func TestResolveDayGroupsByCategory(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	e.dailyTask(t, "Trees", "DSA", "2025-01-06", 1)
	e.dailyTask(t, "Caching", "System Design", "2025-01-06", 1)
	e.dailyTask(t, "Arrays", "DSA", "2025-01-06", 1)

	plan, err := e.daily.ResolveDay(context.Background(), userID, day(t, "2025-01-06"))
	require.NoError(t, err)
	require.Len(t, plan.Groups, 2)

	assert.Equal(t, "DSA", plan.Groups[0].Category)
	assert.Equal(t, "System Design", plan.Groups[1].Category)
	require.Len(t, plan.Groups[0].Instances, 2)
	assert.Equal(t, "Arrays", plan.Groups[0].Instances[0].Occurrence.TaskName)
	assert.Equal(t, "Trees", plan.Groups[0].Instances[1].Occurrence.TaskName)
	assert.Equal(t, 2, plan.Groups[0].Summary.Total)
	assert.Equal(t, 3, plan.Summary.Total)
}

func TestResolveDayAttachesQuestions(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	task := e.dailyTask(t, "Arrays", "DSA", "2025-01-06", 2)
	occ := e.occurrenceOn(t, task, "2025-01-06")

	_, err := e.questSvc.Create(ctx, userID, usecase.QuestionInput{OccurrenceID: occ.ID, Title: "Two Sum"})
	require.NoError(t, err)
	_, err = e.questSvc.Create(ctx, userID, usecase.QuestionInput{Title: "Backlog item"})
	require.NoError(t, err)

	plan, err := e.daily.ResolveDay(ctx, userID, day(t, "2025-01-06"))
	require.NoError(t, err)
	inst := plan.Groups[0].Instances[0]
	require.Len(t, inst.Questions, 1)
	assert.Equal(t, "Two Sum", inst.Questions[0].Title)
	assert.Equal(t, model.OccurrenceIncomplete, inst.Occurrence.Status)
	assert.Equal(t, 1, plan.Summary.Incomplete)
}

func TestOneOffTaskMaterializesOnItsDay(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	date := day(t, "2025-01-08")
	task, err := e.tasksSvc.Create(ctx, userID, usecase.TaskInput{Name: "Resume review", Category: "Career", TargetCount: 1, Date: &date})
	require.NoError(t, err)
	assert.Equal(t, 1, e.occurrences.Len())

	e.occurrenceOn(t, task, "2025-01-08")

	plan, err := e.daily.ResolveDay(ctx, userID, day(t, "2025-01-09"))
	require.NoError(t, err)
	assert.Zero(t, plan.Summary.Total)
	assert.Equal(t, 1, e.occurrences.Len())
}

func TestResolveRange(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	_, err := e.tasksSvc.Create(ctx, userID, usecase.TaskInput{
		Name:        "Weekly contest",
		Category:    "Contests",
		TargetCount: 1,
		IsRecurring: true,
		Recurrence:  &model.RecurrenceRule{Frequency: model.FrequencyWeekly, StartDate: day(t, "2025-01-06")},
	})
	require.NoError(t, err)

	t.Run("inclusive and ordered", func(t *testing.T) {
		plans, err := e.daily.ResolveRange(ctx, userID, day(t, "2025-01-06"), day(t, "2025-01-13"))
		require.NoError(t, err)
		require.Len(t, plans, 8)
		for i, p := range plans {
			assert.Equal(t, calendar.FormatDate(calendar.AddDays(day(t, "2025-01-06"), i)), p.Date)
		}
		assert.Equal(t, 1, plans[0].Summary.Total)
		assert.Equal(t, 1, plans[7].Summary.Total)
		assert.Zero(t, plans[3].Summary.Total)
	})

	t.Run("single day", func(t *testing.T) {
		plans, err := e.daily.ResolveRange(ctx, userID, day(t, "2025-01-06"), day(t, "2025-01-06"))
		require.NoError(t, err)
		assert.Len(t, plans, 1)
	})

	t.Run("rejects reversed range", func(t *testing.T) {
		_, err := e.daily.ResolveRange(ctx, userID, day(t, "2025-01-07"), day(t, "2025-01-06"))
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	})

	t.Run("rejects long range", func(t *testing.T) {
		from := day(t, "2025-01-01")
		_, err := e.daily.ResolveRange(ctx, userID, from, calendar.AddDays(from, usecase.DefaultMaxRangeDays))
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)

		_, err = e.daily.ResolveRange(ctx, userID, from, calendar.AddDays(from, usecase.DefaultMaxRangeDays-1))
		assert.NoError(t, err)
	})
}

func TestResolveDayRequiresUser(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	_, err := e.daily.ResolveDay(context.Background(), "", day(t, "2025-01-06"))
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = e.daily.ResolveRange(context.Background(), "", day(t, "2025-01-06"), day(t, "2025-01-06"))
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
