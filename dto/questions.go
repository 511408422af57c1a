package dto

import (
	"prepdaily/model"
	"prepdaily/usecase"
)

type CreateQuestionRequest struct {
	OccurrenceID string   `json:"occurrence_id"`
	Title        string   `json:"title" binding:"required,max=300"`
	Link         string   `json:"link" binding:"omitempty,url"`
	Topic        string   `json:"topic" binding:"max=100"`
	Difficulty   string   `json:"difficulty" binding:"difficulty"`
	Notes        string   `json:"notes"`
	Tags         []string `json:"tags" binding:"omitempty,dive,max=50"`
}

func (r *CreateQuestionRequest) ToInput() usecase.QuestionInput {
	return usecase.QuestionInput{
		OccurrenceID: r.OccurrenceID,
		Title:        r.Title,
		Link:         r.Link,
		Topic:        r.Topic,
		Difficulty:   model.Difficulty(r.Difficulty),
		Notes:        r.Notes,
		Tags:         r.Tags,
	}
}

type UpdateQuestionRequest struct {
	Title      *string  `json:"title" binding:"omitempty,min=1,max=300"`
	Link       *string  `json:"link" binding:"omitempty"`
	Topic      *string  `json:"topic" binding:"omitempty,max=100"`
	Difficulty *string  `json:"difficulty" binding:"omitempty,difficulty"`
	Notes      *string  `json:"notes"`
	Tags       []string `json:"tags" binding:"omitempty,dive,max=50"`
}

func (r *UpdateQuestionRequest) ToPatch() model.QuestionPatch {
	patch := model.QuestionPatch{
		Title: r.Title,
		Link:  r.Link,
		Topic: r.Topic,
		Notes: r.Notes,
		Tags:  r.Tags,
	}
	if r.Difficulty != nil {
		d := model.Difficulty(*r.Difficulty)
		patch.Difficulty = &d
	}
	return patch
}

type MoveQuestionRequest struct {
	OccurrenceID string `json:"occurrence_id" binding:"required"`
}

type BulkMoveRequest struct {
	QuestionIDs  []string `json:"question_ids" binding:"required,min=1,dive,required"`
	OccurrenceID string   `json:"occurrence_id" binding:"required"`
}

type BulkDeleteRequest struct {
	QuestionIDs []string `json:"question_ids" binding:"required,min=1,dive,required"`
}

type BulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}
