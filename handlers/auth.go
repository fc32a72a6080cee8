package handlers

import (
	"errors"
	"net/http"

	"memorybook/services/auth"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// AuthSvc is wired in main before the router starts.
var AuthSvc auth.AuthService

// authStatus maps the sign-in sentinels to HTTP statuses.
func authStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailVerificationRequired):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidLink):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrLinkExpired):
		return http.StatusGone
	case errors.Is(err, auth.ErrLinkAlreadyUsed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RegisterHandler creates an account for an allow-listed address.
func RegisterHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid registration request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := AuthSvc.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		logger.Error("Registration failed", zap.Error(err))
		c.JSON(authStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Account created. Check your email for a verification link."})
}

// LoginHandler runs the full sign-in gate and returns a session token.
func LoginHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp, err := AuthSvc.SignIn(c.Request.Context(), req.Email, req.Password, c.Request.UserAgent())
	if err != nil {
		logger.Warn("Login failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(authStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LogoutHandler closes the current session. Idempotent.
func LogoutHandler(c *gin.Context) {
	logger := getLogger(c)

	if err := AuthSvc.SignOut(c.Request.Context()); err != nil {
		logger.Error("Logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// VerifyLoginHandler consumes the emailed verification link.
func VerifyLoginHandler(c *gin.Context) {
	logger := getLogger(c)

	uid := c.Query("uid")
	token := c.Query("token")

	if err := AuthSvc.VerifyLoginLink(c.Request.Context(), uid, token); err != nil {
		logger.Warn("Login link verification failed", zap.String("uid", uid), zap.Error(err))
		c.JSON(authStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified. You can now sign in."})
}

// UpdateFCMTokenHandler records the member's device push token.
func UpdateFCMTokenHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	userID := c.GetString("userID")
	if err := UserRepo.UpdateSetDocument(userID, bson.M{"fcm_token": req.Token}); err != nil {
		logger.Error("Failed to update FCM token", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update push token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Push token updated"})
}

// SessionStatusHandler reports whether the held session is still live.
func SessionStatusHandler(c *gin.Context) {
	resp := gin.H{"valid": AuthSvc.IsSessionValid()}
	if exp := AuthSvc.SessionExpiry(); exp != nil {
		resp["sessionExpiry"] = *exp
	}
	c.JSON(http.StatusOK, resp)
}
