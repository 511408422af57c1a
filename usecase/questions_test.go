package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepdaily/apperr"
	"prepdaily/model"
	"prepdaily/usecase"
)

func TestCreateQuestion(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()

	_, err := e.questSvc.Create(ctx, userID, usecase.QuestionInput{Title: "  "})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = e.questSvc.Create(ctx, "", usecase.QuestionInput{Title: "Two Sum"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = e.questSvc.Create(ctx, userID, usecase.QuestionInput{Title: "Two Sum", OccurrenceID: "missing"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	q, err := e.questSvc.Create(ctx, userID, usecase.QuestionInput{Title: " Two Sum "})
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", q.Title)
	assert.False(t, q.Attached())
	assert.Equal(t, model.QuestionPending, q.Status)

	backlog, err := e.questSvc.Backlog(ctx, userID)
	require.NoError(t, err)
	require.Len(t, backlog, 1)
	assert.Equal(t, q.ID, backlog[0].ID)
}

func TestMoveBetweenBacklogAndOccurrence(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	task := e.dailyTask(t, "Arrays", "DSA", "2025-01-06", 1)
	occ := e.occurrenceOn(t, task, "2025-01-06")

	q, err := e.questSvc.Create(ctx, userID, usecase.QuestionInput{Title: "Two Sum"})
	require.NoError(t, err)
	_, err = e.questSvc.Solve(ctx, userID, q.ID)
	require.NoError(t, err)

	moved, err := e.questSvc.MoveToOccurrence(ctx, userID, q.ID, occ.ID)
	require.NoError(t, err)
	assert.Equal(t, occ.ID, *moved.OccurrenceID)
	assert.Equal(t, task.ID, *moved.TaskID)
	assert.Equal(t, "DSA", moved.Category)

	after := e.occurrence(t, occ.ID)
	assert.Equal(t, 1, after.AddedCount)
	assert.Equal(t, 1, after.SolvedCount)
	assert.Equal(t, model.OccurrenceCompleted, after.Status)

	_, err = e.questSvc.MoveToOccurrence(ctx, userID, q.ID, occ.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	back, err := e.questSvc.MoveToBacklog(ctx, userID, q.ID)
	require.NoError(t, err)
	assert.False(t, back.Attached())
	assert.Nil(t, back.TaskID)
	assert.Empty(t, back.Category)

	after = e.occurrence(t, occ.ID)
	assert.Zero(t, after.AddedCount)
	assert.Zero(t, after.SolvedCount)
	assert.Equal(t, model.OccurrencePending, after.Status)

	_, err = e.questSvc.MoveToBacklog(ctx, userID, q.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestBulkMoveToOccurrence(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	task := e.dailyTask(t, "Arrays", "DSA", "2025-01-06", 3)
	occ := e.occurrenceOn(t, task, "2025-01-06")

	attached, err := e.questSvc.Create(ctx, userID, usecase.QuestionInput{Title: "already here", OccurrenceID: occ.ID})
	require.NoError(t, err)
	a, err := e.questSvc.Create(ctx, userID, usecase.QuestionInput{Title: "a"})
	require.NoError(t, err)
	b, err := e.questSvc.Create(ctx, userID, usecase.QuestionInput{Title: "b"})
	require.NoError(t, err)
	_, err = e.questSvc.Solve(ctx, userID, b.ID)
	require.NoError(t, err)

	res, err := e.questSvc.BulkMoveToOccurrence(ctx, userID, []string{a.ID, b.ID, attached.ID, "missing", a.ID}, occ.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, res.Moved)
	assert.ElementsMatch(t, []string{attached.ID, "missing"}, res.Skipped)

	after := e.occurrence(t, occ.ID)
	assert.Equal(t, 3, after.AddedCount)
	assert.Equal(t, 1, after.SolvedCount)
	assert.Equal(t, model.OccurrenceInProgress, after.Status)

	_, err = e.questSvc.BulkMoveToOccurrence(ctx, userID, []string{a.ID}, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteQuestions(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	task := e.dailyTask(t, "Arrays", "DSA", "2025-01-06", 1)
	occ := e.occurrenceOn(t, task, "2025-01-06")

	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		q, err := e.questSvc.Create(ctx, userID, usecase.QuestionInput{Title: title, OccurrenceID: occ.ID})
		require.NoError(t, err)
		ids = append(ids, q.ID)
	}
	_, err := e.questSvc.Solve(ctx, userID, ids[0])
	require.NoError(t, err)

	require.NoError(t, e.questSvc.Delete(ctx, userID, ids[0]))
	assert.ErrorIs(t, e.questSvc.Delete(ctx, userID, ids[0]), apperr.ErrNotFound)

	_, err = e.questSvc.Get(ctx, userID, ids[0])
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	raw, ok := e.questions.Raw(ids[0])
	require.True(t, ok)
	assert.NotNil(t, raw.DeletedAt)

	after := e.occurrence(t, occ.ID)
	assert.Equal(t, 2, after.AddedCount)
	assert.Zero(t, after.SolvedCount)

	n, err := e.questSvc.BulkDelete(ctx, userID, []string{ids[1], ids[2], ids[0], "missing"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	after = e.occurrence(t, occ.ID)
	assert.Zero(t, after.AddedCount)
	assert.Equal(t, model.OccurrencePending, after.Status)
}

func TestUpdateAndStar(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	q, err := e.questSvc.Create(ctx, userID, usecase.QuestionInput{Title: "Two Sum"})
	require.NoError(t, err)

	empty := ""
	_, err = e.questSvc.Update(ctx, userID, q.ID, model.QuestionPatch{Title: &empty})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	hard := model.DifficultyHard
	link := "https://leetcode.com/problems/two-sum"
	updated, err := e.questSvc.Update(ctx, userID, q.ID, model.QuestionPatch{Difficulty: &hard, Link: &link, Tags: []string{"hash-map"}})
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", updated.Title)
	assert.Equal(t, hard, updated.Difficulty)
	assert.Equal(t, link, updated.Link)
	assert.Equal(t, []string{"hash-map"}, updated.Tags)

	starred, err := e.questSvc.ToggleStar(ctx, userID, q.ID)
	require.NoError(t, err)
	assert.True(t, starred.Starred)
	unstarred, err := e.questSvc.ToggleStar(ctx, userID, q.ID)
	require.NoError(t, err)
	assert.False(t, unstarred.Starred)

	_, err = e.questSvc.ToggleStar(ctx, "someone-else", q.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAttachLogsCounterDrift(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	task := e.dailyTask(t, "Arrays", "DSA", "2025-01-06", 2)
	occ := e.occurrenceOn(t, task, "2025-01-06")
	backlog, err := e.questSvc.Create(ctx, userID, usecase.QuestionInput{Title: "Two Sum"})
	require.NoError(t, err)

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	svc := usecase.NewQuestionsService(e.questions, e.occurrences, usecase.NewCounterLedger(e.occurrences, log), e.reviews, e.clock.Now, log)
	e.occurrences.IncrementErr = errors.New("write concern timeout")

	_, err = svc.Create(ctx, userID, usecase.QuestionInput{Title: "Three Sum", OccurrenceID: occ.ID})
	require.Error(t, err)
	_, err = svc.MoveToOccurrence(ctx, userID, backlog.ID, occ.ID)
	require.Error(t, err)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "attached question missing from counters"))
	assert.Contains(t, out, backlog.ID)
	assert.Contains(t, out, occ.ID)

	attached, err := e.questions.FindActive(ctx, model.QuestionFilter{UserID: userID, OccurrenceIDs: []string{occ.ID}})
	require.NoError(t, err)
	assert.Len(t, attached, 2)
	assert.Equal(t, 0, e.occurrence(t, occ.ID).AddedCount)
}
