package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"prepdaily/dto"
	"prepdaily/model"
	"prepdaily/usecase"
	"prepdaily/utils"
)

type QuestionHandler struct {
	service *usecase.QuestionsService
}

func NewQuestionHandler(service *usecase.QuestionsService) *QuestionHandler {
	return &QuestionHandler{service: service}
}

type questionAction func(ctx context.Context, userID, questionID string) (*model.Question, error)

// run serves the single-question transitions that take no body.
func (h *QuestionHandler) run(c *gin.Context, action questionAction) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	q, err := action(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, q)
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	h.run(c, h.service.Get)
}

func (h *QuestionHandler) SolveQuestion(c *gin.Context) {
	h.run(c, h.service.Solve)
}

// ResetQuestion returns a solved question to pending.
func (h *QuestionHandler) ResetQuestion(c *gin.Context) {
	h.run(c, h.service.Reset)
}

func (h *QuestionHandler) ReviewQuestion(c *gin.Context) {
	h.run(c, h.service.Review)
}

func (h *QuestionHandler) ToggleStar(c *gin.Context) {
	h.run(c, h.service.ToggleStar)
}

func (h *QuestionHandler) MoveToBacklog(c *gin.Context) {
	h.run(c, h.service.MoveToBacklog)
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.service.Create(c.Request.Context(), userID, req.ToInput())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, q)
}

func (h *QuestionHandler) GetBacklog(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	questions, err := h.service.Backlog(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, questions)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), req.ToPatch())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, q)
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, gin.H{"message": "Question deleted successfully"})
}

func (h *QuestionHandler) MoveToOccurrence(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.MoveQuestionRequest
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.service.MoveToOccurrence(c.Request.Context(), userID, c.Param("id"), req.OccurrenceID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, q)
}

func (h *QuestionHandler) BulkMove(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.BulkMoveRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.BulkMoveToOccurrence(c.Request.Context(), userID, req.QuestionIDs, req.OccurrenceID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, res)
}

func (h *QuestionHandler) BulkDelete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.BulkDeleteRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.service.BulkDelete(c.Request.Context(), userID, req.QuestionIDs)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, dto.BulkDeleteResponse{Deleted: n})
}

// DueReviews lists solved questions whose next review is due.
func (h *QuestionHandler) DueReviews(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var q dto.ReviewQuery
	if !bindQuery(c, &q) {
		return
	}
	questions, err := h.service.DueForReview(c.Request.Context(), userID, usecase.ReviewFilter{
		Topic:      q.Topic,
		Difficulty: model.Difficulty(q.Difficulty),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, questions)
}
