package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"prepdaily/calendar"
	"prepdaily/dto"
	"prepdaily/usecase"
	"prepdaily/utils"
)

type DailyHandler struct {
	service *usecase.DailyService
	now     usecase.Clock
}

func NewDailyHandler(service *usecase.DailyService, now usecase.Clock) *DailyHandler {
	if now == nil {
		now = time.Now
	}
	return &DailyHandler{service: service, now: now}
}

// GetDay resolves ?date=YYYY-MM-DD, defaulting to today.
func (h *DailyHandler) GetDay(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var q dto.DayQuery
	if !bindQuery(c, &q) {
		return
	}
	date := calendar.Today(h.now())
	if q.Date != "" {
		d, err := calendar.ParseDate(q.Date)
		if err != nil {
			utils.BadRequest(c, "date must be YYYY-MM-DD")
			return
		}
		date = d
	}
	plan, err := h.service.ResolveDay(c.Request.Context(), userID, date)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, plan)
}

func (h *DailyHandler) GetRange(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var q dto.RangeQuery
	if !bindQuery(c, &q) {
		return
	}
	from, err := calendar.ParseDate(q.From)
	if err != nil {
		utils.BadRequest(c, "from must be YYYY-MM-DD")
		return
	}
	to, err := calendar.ParseDate(q.To)
	if err != nil {
		utils.BadRequest(c, "to must be YYYY-MM-DD")
		return
	}
	plans, err := h.service.ResolveRange(c.Request.Context(), userID, from, to)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, plans)
}
