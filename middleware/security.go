package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prepdaily/utils"
)

// RequestSizeLimiter rejects bodies over maxSize before binding reads them.
func RequestSizeLimiter(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, utils.Response{
				Status: http.StatusRequestEntityTooLarge,
				Error:  "request body too large",
				Code:   "PAYLOAD_TOO_LARGE",
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
