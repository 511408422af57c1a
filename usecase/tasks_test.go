package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepdaily/apperr"
	"prepdaily/model"
	"prepdaily/usecase"
)

func TestCreateTaskValidation(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	early := day(t, "2025-01-01")

	cases := map[string]usecase.TaskInput{
		"empty name":             {Name: " ", TargetCount: 1},
		"negative target":        {Name: "Arrays", TargetCount: -1},
		"recurring without rule": {Name: "Arrays", IsRecurring: true},
		"bad weekday": {Name: "Arrays", IsRecurring: true, Recurrence: &model.RecurrenceRule{
			Frequency: model.FrequencyWeekly, DaysOfWeek: []int{7},
		}},
		"unknown frequency": {Name: "Arrays", IsRecurring: true, Recurrence: &model.RecurrenceRule{Frequency: "yearly"}},
		"end before start": {Name: "Arrays", IsRecurring: true, EndDate: &early, Recurrence: &model.RecurrenceRule{
			Frequency: model.FrequencyDaily, StartDate: day(t, "2025-01-06"),
		}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.tasksSvc.Create(ctx, userID, in)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		})
	}
	assert.Zero(t, e.occurrences.Len())
}

func TestCreateTaskNormalizesRule(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	task, err := e.tasksSvc.Create(context.Background(), userID, usecase.TaskInput{
		Name:        "Mock interview",
		IsRecurring: true,
		Recurrence:  &model.RecurrenceRule{Frequency: model.FrequencyWeekly, DaysOfWeek: []int{5, 1, 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5}, task.Recurrence.DaysOfWeek)
	assert.True(t, day(t, "2025-01-06").Equal(task.Recurrence.StartDate))
	assert.Equal(t, model.TaskActive, task.Status)
	assert.Zero(t, e.occurrences.Len())
}

func TestUpdateTask(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	recurring := e.dailyTask(t, "Arrays", "DSA", "2025-01-06", 1)
	date := day(t, "2025-01-06")
	oneOff, err := e.tasksSvc.Create(ctx, userID, usecase.TaskInput{Name: "Resume", TargetCount: 1, Date: &date})
	require.NoError(t, err)

	rule := &model.RecurrenceRule{Frequency: model.FrequencyWeekly}
	_, err = e.tasksSvc.Update(ctx, userID, oneOff.ID, model.TaskPatch{Recurrence: rule})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	updated, err := e.tasksSvc.Update(ctx, userID, recurring.ID, model.TaskPatch{Recurrence: rule})
	require.NoError(t, err)
	assert.Equal(t, model.FrequencyWeekly, updated.Recurrence.Frequency)
	assert.True(t, day(t, "2025-01-06").Equal(updated.Recurrence.StartDate))

	early := day(t, "2025-01-02")
	_, err = e.tasksSvc.Update(ctx, userID, recurring.ID, model.TaskPatch{EndDate: &early})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = e.tasksSvc.Update(ctx, userID, "missing", model.TaskPatch{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteTaskCascades(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	task := e.dailyTask(t, "Arrays", "DSA", "2025-01-06", 1)
	occ := e.occurrenceOn(t, task, "2025-01-06")
	e.occurrenceOn(t, task, "2025-01-07")

	attached, err := e.questSvc.Create(ctx, userID, usecase.QuestionInput{Title: "attached", OccurrenceID: occ.ID})
	require.NoError(t, err)
	detached, err := e.questSvc.Create(ctx, userID, usecase.QuestionInput{Title: "detached", OccurrenceID: occ.ID})
	require.NoError(t, err)
	_, err = e.questSvc.MoveToBacklog(ctx, userID, detached.ID)
	require.NoError(t, err)

	require.NoError(t, e.tasksSvc.Delete(ctx, userID, task.ID))

	_, err = e.tasksSvc.Get(ctx, userID, task.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Zero(t, e.occurrences.Len())

	_, err = e.questSvc.Get(ctx, userID, attached.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	kept, err := e.questSvc.Get(ctx, userID, detached.ID)
	require.NoError(t, err)
	assert.False(t, kept.Attached())

	assert.ErrorIs(t, e.tasksSvc.Delete(ctx, userID, task.ID), apperr.ErrNotFound)
}

func TestListTasksScopedByUser(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	e.dailyTask(t, "Arrays", "DSA", "2025-01-06", 1)

	mine, err := e.tasksSvc.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := e.tasksSvc.List(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, theirs)

	_, err = e.tasksSvc.List(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
