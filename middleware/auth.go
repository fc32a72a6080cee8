package middleware

import (
	"net/http"
	"strings"
	"time"

	userRepo "memorybook/database/repository/user"
	"memorybook/utils"

	"github.com/gin-gonic/gin"
)

// SessionAuthMiddleware guards routes that require a live session.
// The bearer JWT proves identity; the session mirror (or, on a cache
// miss, the user record's session_expiry) proves the session has not
// been expired or signed out since the token was minted.
func SessionAuthMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, email, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if !sessionAlive(users, userID, tokenString) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			return
		}

		c.Set("userID", userID)
		c.Set("userEmail", email)
		c.Next()
	}
}

// sessionAlive checks the redis mirror first, then falls back to the
// stored session_expiry on the user record. A mirror bound to a token
// hash only admits that exact token, so tokens from an earlier sign-in
// die with the session that issued them.
func sessionAlive(users userRepo.UserRepository, userID, tokenString string) bool {
	if utils.SessionCacheClient != nil {
		mirror, err := utils.GetSessionMirror(utils.SessionCacheClient, userID)
		if err == nil && mirror != nil {
			if mirror.TokenHash != "" && mirror.TokenHash != utils.HashToken(tokenString) {
				return false
			}
			return time.Now().UnixMilli() < mirror.ExpiresAt
		}
	}
	u, err := users.GetByID(userID)
	if err != nil || u == nil || u.SessionExpiry == nil {
		return false
	}
	return time.Now().UnixMilli() < *u.SessionExpiry
}
