// Package handler exposes the engine over HTTP. Every handler reads the
// authenticated user from the "user_id" context key set by
// middleware.AuthMiddleware.
package handler

import (
	"github.com/gin-gonic/gin"

	"prepdaily/utils"
)

// currentUser returns the authenticated user id, writing a 401 when absent.
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		utils.Unauthorized(c, "Missing user ID")
		return "", false
	}
	return userID, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		utils.BadRequest(c, "Invalid query: "+err.Error())
		return false
	}
	return true
}
