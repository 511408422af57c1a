package model

import "time"

type QuestionStatus string
type Difficulty string

const (
	QuestionPending QuestionStatus = "pending"
	QuestionSolved  QuestionStatus = "solved"

	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Revision records one spaced-repetition review.
type Revision struct {
	ReviewedAt   time.Time `bson:"reviewed_at" json:"reviewed_at"`
	ReviewNumber int       `bson:"review_number" json:"review_number"`
}

// Question is a unit of work. A question with no OccurrenceID sits in the
// backlog.
type Question struct {
	ID             string         `bson:"_id" json:"id"`
	UserID         string         `bson:"user_id" json:"user_id"`
	OccurrenceID   *string        `bson:"occurrence_id,omitempty" json:"occurrence_id,omitempty"`
	TaskID         *string        `bson:"task_id,omitempty" json:"task_id,omitempty"`
	Category       string         `bson:"category,omitempty" json:"category,omitempty"`
	Title          string         `bson:"title" json:"title"`
	Link           string         `bson:"link,omitempty" json:"link,omitempty"`
	Topic          string         `bson:"topic,omitempty" json:"topic,omitempty"`
	Difficulty     Difficulty     `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Notes          string         `bson:"notes,omitempty" json:"notes,omitempty"`
	Tags           []string       `bson:"tags,omitempty" json:"tags,omitempty"`
	Status         QuestionStatus `bson:"status" json:"status"`
	SolvedAt       *time.Time     `bson:"solved_at,omitempty" json:"solved_at,omitempty"`
	ReviewCount    int            `bson:"review_count" json:"review_count"`
	NextReviewAt   *time.Time     `bson:"next_review_at,omitempty" json:"next_review_at,omitempty"`
	LastReviewedAt *time.Time     `bson:"last_reviewed_at,omitempty" json:"last_reviewed_at,omitempty"`
	Starred        bool           `bson:"starred" json:"starred"`
	Revisions      []Revision     `bson:"revisions,omitempty" json:"revisions,omitempty"`
	DeletedAt      *time.Time     `bson:"deleted_at,omitempty" json:"-"`
	CreatedAt      time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `bson:"updated_at" json:"updated_at"`
}

// Attached reports whether the question belongs to an occurrence.
func (q *Question) Attached() bool {
	return q.OccurrenceID != nil && *q.OccurrenceID != ""
}

// QuestionFilter selects live (non-deleted) questions. Zero fields do not
// constrain the query.
type QuestionFilter struct {
	UserID        string
	IDs           []string
	OccurrenceIDs []string
	TaskID        string
	BacklogOnly   bool
	Status        QuestionStatus
	DueBefore     *time.Time // also orders by next_review_at ascending
	Topic         string
	Difficulty    Difficulty
}

// QuestionPatch carries content edits. Nil fields are left unchanged.
type QuestionPatch struct {
	Title      *string
	Link       *string
	Topic      *string
	Difficulty *Difficulty
	Notes      *string
	Tags       []string
}
