package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"prepdaily/model"
	"prepdaily/utils"
)

// Delta is a change to an occurrence's counters.
type Delta struct {
	Added  int
	Solved int
}

func (d Delta) IsZero() bool { return d.Added == 0 && d.Solved == 0 }

func (d Delta) Plus(o Delta) Delta {
	return Delta{Added: d.Added + o.Added, Solved: d.Solved + o.Solved}
}

// attachDelta is the change caused by q joining an occurrence. Its negation
// is the change caused by q leaving one.
func attachDelta(q *model.Question) Delta {
	d := Delta{Added: 1}
	if q.Status == model.QuestionSolved {
		d.Solved = 1
	}
	return d
}

func detachDelta(q *model.Question) Delta {
	d := attachDelta(q)
	return Delta{Added: -d.Added, Solved: -d.Solved}
}

// CounterLedger keeps an occurrence's counters and status in step with its
// questions.
type CounterLedger struct {
	occurrences OccurrenceStore
	log         *slog.Logger
}

func NewCounterLedger(occurrences OccurrenceStore, log *slog.Logger) *CounterLedger {
	if log == nil {
		log = slog.Default()
	}
	return &CounterLedger{occurrences: occurrences, log: log}
}

// Apply increments the counters and then refreshes status against the
// post-increment values. A failed status write leaves the counters correct;
// the next mutation recomputes status.
func (l *CounterLedger) Apply(ctx context.Context, occurrenceID string, d Delta) (*model.Occurrence, error) {
	if d.IsZero() {
		return nil, nil
	}
	occ, err := l.occurrences.Increment(ctx, occurrenceID, d.Added, d.Solved)
	if err != nil {
		utils.TrackLedgerUpdate("increment_failed")
		return nil, fmt.Errorf("apply counters to %s: %w", occurrenceID, err)
	}
	utils.TrackLedgerUpdate("applied")

	if occ.SolvedCount < 0 || occ.SolvedCount > occ.AddedCount {
		l.log.Warn("occurrence counters out of range",
			"occurrence_id", occ.ID, "added", occ.AddedCount, "solved", occ.SolvedCount)
	}

	status := model.DeriveStatus(occ.AddedCount, occ.SolvedCount, occ.TargetCount)
	if status == occ.Status {
		return occ, nil
	}
	written, err := l.occurrences.SetStatus(ctx, occ.ID, status, occ.AddedCount, occ.SolvedCount)
	if err != nil {
		utils.TrackLedgerUpdate("status_failed")
		l.log.Warn("occurrence status left stale", "occurrence_id", occ.ID, "status", status, "error", err)
		return occ, nil
	}
	if written {
		occ.Status = status
	}
	return occ, nil
}

// ApplyAll applies one aggregated delta per occurrence. It keeps going after
// a failure and returns the first error.
func (l *CounterLedger) ApplyAll(ctx context.Context, deltas map[string]Delta) error {
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var first error
	for _, id := range ids {
		if _, err := l.Apply(ctx, id, deltas[id]); err != nil && first == nil {
			first = err
		}
	}
	return first
}
