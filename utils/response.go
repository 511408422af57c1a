package utils

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"prepdaily/apperr"
)

type Response struct {
	Status  int         `json:"-"`                 // HTTP status code
	Message string      `json:"message,omitempty"` // Optional message
	Error   string      `json:"error,omitempty"`   // Error message
	Code    string      `json:"code,omitempty"`    // Error kind
	Data    interface{} `json:"data,omitempty"`    // Response data
}

// Success responses
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &Response{
		Status: http.StatusOK,
		Data:   data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, &Response{
		Status:  http.StatusCreated,
		Message: "Resource created successfully",
		Data:    data,
	})
}

// Error responses
func Unauthorized(c *gin.Context, message string) {
	abortWith(c, http.StatusUnauthorized, apperr.KindUnauthorized, message)
}

func BadRequest(c *gin.Context, message string) {
	abortWith(c, http.StatusBadRequest, apperr.KindInvalidInput, message)
}

func NotFound(c *gin.Context, message string) {
	abortWith(c, http.StatusNotFound, apperr.KindNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	abortWith(c, http.StatusConflict, apperr.KindInvalidState, message)
}

func InternalError(c *gin.Context, message string) {
	abortWith(c, http.StatusInternalServerError, "", message)
}

func abortWith(c *gin.Context, status int, kind apperr.Kind, message string) {
	c.AbortWithStatusJSON(status, &Response{
		Status: status,
		Error:  message,
		Code:   string(kind),
	})
}

// RespondError maps a tagged failure onto the envelope. Untagged errors are
// logged and reported as internal errors without their detail.
func RespondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		NotFound(c, err.Error())
	case apperr.KindInvalidState:
		Conflict(c, err.Error())
	case apperr.KindConflict:
		abortWith(c, http.StatusConflict, apperr.KindConflict, "concurrent update, try again")
	case apperr.KindInvalidInput:
		BadRequest(c, err.Error())
	case apperr.KindUnauthorized:
		Unauthorized(c, err.Error())
	default:
		TrackError("handler", "internal")
		slog.ErrorContext(c.Request.Context(), "request failed",
			"path", c.FullPath(), "request_id", c.GetString("request_id"), "error", err)
		InternalError(c, "internal server error")
	}
}
