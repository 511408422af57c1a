package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name                  string
		added, solved, target int
		want                  OccurrenceStatus
	}{
		{"nothing added", 0, 0, 5, OccurrencePending},
		{"below target", 3, 0, 5, OccurrenceIncomplete},
		{"below target with solves", 3, 3, 5, OccurrenceIncomplete},
		{"target met and all solved", 5, 5, 5, OccurrenceCompleted},
		{"target met partly solved", 5, 2, 5, OccurrenceInProgress},
		{"target met none solved", 5, 0, 5, OccurrencePending},
		{"over target all solved", 7, 7, 5, OccurrenceCompleted},
		{"zero target", 1, 0, 0, OccurrencePending},
		{"zero target solved", 1, 1, 0, OccurrenceCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.added, tt.solved, tt.target))
		})
	}
}

func TestQuestionAttached(t *testing.T) {
	empty := ""
	occ := "occ-1"

	assert.False(t, (&Question{}).Attached())
	assert.False(t, (&Question{OccurrenceID: &empty}).Attached())
	assert.True(t, (&Question{OccurrenceID: &occ}).Attached())
}
