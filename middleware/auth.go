package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"prepdaily/utils"
)

// TokenChecker reports whether a bearer token has been revoked.
type TokenChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type AuthConfig struct {
	SecretKey []byte
	// Issuer, when set, must match the token's iss claim.
	Issuer    string
	Blacklist TokenChecker
}

// Context keys set by AuthMiddleware.
const (
	ContextUserID         = "user_id"
	ContextToken          = "token"
	ContextTokenExpiresAt = "token_expires_at"
)

func AuthMiddleware(cfg AuthConfig) gin.HandlerFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		// Get the token from the header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.Unauthorized(c, "Missing or invalid token")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims := jwt.MapClaims{}
		_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return cfg.SecretKey, nil
		})
		if err != nil {
			utils.TrackError("auth", "invalid_token")
			utils.Unauthorized(c, "Invalid token")
			return
		}

		// Check token type to ensure it's not a refresh token
		if tokenType, exists := claims["type"]; exists && tokenType == "refresh" {
			utils.Unauthorized(c, "Invalid token type")
			return
		}

		userID := subject(claims)
		if userID == "" {
			utils.Unauthorized(c, "Invalid user ID in token")
			return
		}

		if cfg.Blacklist != nil {
			revoked, err := cfg.Blacklist.IsRevoked(c.Request.Context(), tokenString)
			if err != nil {
				slog.ErrorContext(c.Request.Context(), "token blacklist unavailable", "error", err)
				utils.TrackError("auth", "blacklist_unavailable")
				utils.InternalError(c, "could not verify token")
				return
			}
			if revoked {
				utils.Unauthorized(c, "Token has been invalidated")
				return
			}
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextToken, tokenString)
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			c.Set(ContextTokenExpiresAt, exp.Time)
		}
		c.Next()
	}
}

// subject prefers the user_id claim and falls back to sub.
func subject(claims jwt.MapClaims) string {
	if id, ok := claims["user_id"].(string); ok && id != "" {
		return id
	}
	sub, _ := claims.GetSubject()
	return sub
}

// SignToken issues an access token for userID. It backs the CLI and tests;
// production tokens come from the identity provider.
func SignToken(secret []byte, issuer, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"sub":     userID,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
		"type":    "access",
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
