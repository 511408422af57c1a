package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepdaily/apperr"
	"prepdaily/model"
	"prepdaily/testutils"
	"prepdaily/usecase"
)

func TestCounterLedgerStatusTransitions(t *testing.T) {
	occurrences := testutils.NewMemOccurrences()
	occurrences.Put(&model.Occurrence{ID: "occ-1", UserID: userID, TaskID: "task-1", TargetCount: 3, Status: model.OccurrencePending})
	ledger := usecase.NewCounterLedger(occurrences, testutils.Logger())
	ctx := context.Background()

	steps := []struct {
		name   string
		delta  usecase.Delta
		added  int
		solved int
		want   model.OccurrenceStatus
	}{
		{"first question", usecase.Delta{Added: 1}, 1, 0, model.OccurrenceIncomplete},
		{"target reached", usecase.Delta{Added: 2}, 3, 0, model.OccurrencePending},
		{"one solved", usecase.Delta{Solved: 1}, 3, 1, model.OccurrenceInProgress},
		{"all solved", usecase.Delta{Solved: 2}, 3, 3, model.OccurrenceCompleted},
		{"extra pending question", usecase.Delta{Added: 1}, 4, 3, model.OccurrenceInProgress},
		{"solved question removed", usecase.Delta{Added: -2, Solved: -1}, 2, 2, model.OccurrenceIncomplete},
		{"all removed", usecase.Delta{Added: -2, Solved: -2}, 0, 0, model.OccurrencePending},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			occ, err := ledger.Apply(ctx, "occ-1", step.delta)
			require.NoError(t, err)
			assert.Equal(t, step.added, occ.AddedCount)
			assert.Equal(t, step.solved, occ.SolvedCount)
			assert.Equal(t, step.want, occ.Status)

			stored, err := occurrences.GetOccurrence(ctx, userID, "occ-1")
			require.NoError(t, err)
			assert.Equal(t, step.want, stored.Status)
		})
	}
}

func TestCounterLedgerZeroDeltaIsNoop(t *testing.T) {
	ledger := usecase.NewCounterLedger(testutils.NewMemOccurrences(), testutils.Logger())
	occ, err := ledger.Apply(context.Background(), "missing", usecase.Delta{})
	assert.NoError(t, err)
	assert.Nil(t, occ)
}

func TestCounterLedgerMissingOccurrence(t *testing.T) {
	ledger := usecase.NewCounterLedger(testutils.NewMemOccurrences(), testutils.Logger())
	_, err := ledger.Apply(context.Background(), "missing", usecase.Delta{Added: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCounterLedgerStatusFailureKeepsCounters(t *testing.T) {
	occurrences := testutils.NewMemOccurrences()
	occurrences.Put(&model.Occurrence{ID: "occ-1", UserID: userID, TargetCount: 1, Status: model.OccurrencePending})
	occurrences.SetStatusErr = errors.New("write concern timeout")
	ledger := usecase.NewCounterLedger(occurrences, testutils.Logger())
	ctx := context.Background()

	occ, err := ledger.Apply(ctx, "occ-1", usecase.Delta{Added: 1, Solved: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, occ.AddedCount)
	assert.Equal(t, model.OccurrencePending, occ.Status)

	// The next mutation repairs the stale status.
	occurrences.SetStatusErr = nil
	occ, err = ledger.Apply(ctx, "occ-1", usecase.Delta{Added: 1})
	require.NoError(t, err)
	assert.Equal(t, model.OccurrenceInProgress, occ.Status)
}

func TestCounterLedgerApplyAll(t *testing.T) {
	occurrences := testutils.NewMemOccurrences()
	occurrences.Put(&model.Occurrence{ID: "a", UserID: userID, TargetCount: 1})
	occurrences.Put(&model.Occurrence{ID: "b", UserID: userID, TargetCount: 1})
	ledger := usecase.NewCounterLedger(occurrences, testutils.Logger())
	ctx := context.Background()

	err := ledger.ApplyAll(ctx, map[string]usecase.Delta{
		"a":       {Added: 2, Solved: 2},
		"missing": {Added: 1},
		"b":       {Added: 1},
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	a, _ := occurrences.GetOccurrence(ctx, userID, "a")
	b, _ := occurrences.GetOccurrence(ctx, userID, "b")
	assert.Equal(t, model.OccurrenceCompleted, a.Status)
	assert.Equal(t, model.OccurrencePending, b.Status)
	assert.Equal(t, 1, b.AddedCount)
}

// TestCountersTrackQuestions drives random question operations and checks
// after each one that every occurrence's counters equal a recount of its
// live questions.
func TestCountersTrackQuestions(t *testing.T) {
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	var occIDs []string
	for _, name := range []string{"Arrays", "Graphs", "DP"} {
		task := e.dailyTask(t, name, "DSA", "2025-01-06", 1+rng.Intn(3))
		occIDs = append(occIDs, e.occurrenceOn(t, task, "2025-01-06").ID)
	}

	var questionIDs []string
	pick := func() string {
		if len(questionIDs) == 0 {
			return "none"
		}
		return questionIDs[rng.Intn(len(questionIDs))]
	}

	for i := 0; i < 400; i++ {
		var err error
		switch rng.Intn(8) {
		case 0, 1:
			in := usecase.QuestionInput{Title: "q"}
			if rng.Intn(3) > 0 {
				in.OccurrenceID = occIDs[rng.Intn(len(occIDs))]
			}
			var q *model.Question
			q, err = e.questSvc.Create(ctx, userID, in)
			if err == nil {
				questionIDs = append(questionIDs, q.ID)
			}
		case 2:
			_, err = e.questSvc.Solve(ctx, userID, pick())
		case 3:
			_, err = e.questSvc.Reset(ctx, userID, pick())
		case 4:
			err = e.questSvc.Delete(ctx, userID, pick())
		case 5:
			_, err = e.questSvc.MoveToBacklog(ctx, userID, pick())
		case 6:
			_, err = e.questSvc.MoveToOccurrence(ctx, userID, pick(), occIDs[rng.Intn(len(occIDs))])
		case 7:
			_, err = e.questSvc.BulkMoveToOccurrence(ctx, userID, []string{pick(), pick()}, occIDs[rng.Intn(len(occIDs))])
		}
		if err != nil {
			kind := apperr.KindOf(err)
			require.Contains(t, []apperr.Kind{apperr.KindNotFound, apperr.KindInvalidState}, kind, "step %d: %v", i, err)
		}

		for _, id := range occIDs {
			live, err := e.questions.FindActive(ctx, model.QuestionFilter{UserID: userID, OccurrenceIDs: []string{id}})
			require.NoError(t, err)
			solved := 0
			for _, q := range live {
				if q.Status == model.QuestionSolved {
					solved++
				}
			}
			occ := e.occurrence(t, id)
			require.Equal(t, len(live), occ.AddedCount, "step %d added", i)
			require.Equal(t, solved, occ.SolvedCount, "step %d solved", i)
			require.Equal(t, model.DeriveStatus(occ.AddedCount, occ.SolvedCount, occ.TargetCount), occ.Status, "step %d status", i)
		}
	}
}

func TestConcurrentQuestionsKeepCounters(t *testing.T) {
	const n = 50
	e := newEnv(t, "2025-01-06")
	ctx := context.Background()
	task := e.dailyTask(t, "Arrays", "DSA", "2025-01-06", n)
	occ := e.occurrenceOn(t, task, "2025-01-06")

	ids := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q, err := e.questSvc.Create(ctx, userID, usecase.QuestionInput{
				Title:        fmt.Sprintf("Question %d", i),
				OccurrenceID: occ.ID,
			})
			errs[i] = err
			if err == nil {
				ids[i] = q.ID
			}
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "create %d", i)
	}

	added := e.occurrence(t, occ.ID)
	assert.Equal(t, n, added.AddedCount)
	assert.Equal(t, 0, added.SolvedCount)
	assert.Equal(t, model.OccurrencePending, added.Status)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.questSvc.Solve(ctx, userID, ids[i])
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "solve %d", i)
	}

	final := e.occurrence(t, occ.ID)
	assert.Equal(t, n, final.AddedCount)
	assert.Equal(t, n, final.SolvedCount)
	assert.Equal(t, model.OccurrenceCompleted, final.Status)
}
