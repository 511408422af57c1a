package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"prepdaily/utils"
)

func EnhancedRecoveryMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered",
					"panic", err,
					"path", c.FullPath(),
					"request_id", c.GetString("request_id"),
					"stack", string(debug.Stack()),
				)
				utils.TrackError("handler", "panic")
				utils.InternalError(c, "internal server error")
			}
		}()
		c.Next()
	}
}
