package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"prepdaily/utils"
)

// TokenRevoker is implemented by services.RedisTokenBlacklist.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
}

type AuthHandler struct {
	revoker TokenRevoker
}

func NewAuthHandler(revoker TokenRevoker) *AuthHandler {
	return &AuthHandler{revoker: revoker}
}

// Logout revokes the bearer token the request was authenticated with.
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	token := c.GetString("token")
	if token == "" {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}
	if h.revoker == nil {
		utils.InternalError(c, "token revocation unavailable")
		return
	}

	var expiresAt time.Time
	if v, ok := c.Get("token_expires_at"); ok {
		expiresAt, _ = v.(time.Time)
	}
	if err := h.revoker.Revoke(c.Request.Context(), token, expiresAt); err != nil {
		slog.ErrorContext(c.Request.Context(), "logout failed", "error", err)
		utils.TrackError("auth", "revoke_failed")
		utils.InternalError(c, "Failed to logout")
		return
	}
	utils.Success(c, gin.H{"message": "Successfully logged out"})
}
