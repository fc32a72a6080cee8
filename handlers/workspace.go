package handlers

import (
	"net/http"

	userRepo "memorybook/database/repository/user"
	"memorybook/services/workspace"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WorkspaceSvc and UserRepo are wired in main before the router starts.
var (
	WorkspaceSvc workspace.WorkspaceService
	UserRepo     userRepo.UserRepository
)

// GetWorkspaceHandler loads (or lazily creates) the shared workspace
// for the signed-in member and returns it with the allow-list verdict.
func GetWorkspaceHandler(c *gin.Context) {
	logger := getLogger(c)

	userID := c.GetString("userID")
	user, err := UserRepo.GetByID(userID)
	if err != nil || user == nil {
		logger.Error("Failed to load user for workspace init", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load workspace"})
		return
	}

	if err := WorkspaceSvc.Initialize(c.Request.Context(), user); err != nil {
		logger.Error("Workspace initialization failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load workspace"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workspace":     WorkspaceSvc.Workspace(),
		"isAllowedUser": WorkspaceSvc.IsAllowedUser(),
	})
}

// UpdateBottleMessageHandler replaces the bottle's message and starts a
// fresh reply thread.
func UpdateBottleMessageHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	actor := c.GetString("userEmail")
	if err := WorkspaceSvc.UpdateBottleMessage(c.Request.Context(), actor, req.Message); err != nil {
		logger.Error("Failed to update bottle message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bottle message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspace": WorkspaceSvc.Workspace()})
}

// MoveBottleHandler updates the bottle's coordinates only.
func MoveBottleHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := WorkspaceSvc.MoveBottle(c.Request.Context(), req.Lat, req.Lng); err != nil {
		logger.Error("Failed to move bottle", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move bottle"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspace": WorkspaceSvc.Workspace()})
}

// RelocateBottleHandler drifts the bottle by a bounded random offset,
// the effect of a member reading it.
func RelocateBottleHandler(c *gin.Context) {
	logger := getLogger(c)

	if err := WorkspaceSvc.RelocateBottle(c.Request.Context()); err != nil {
		logger.Error("Failed to relocate bottle", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to relocate bottle"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspace": WorkspaceSvc.Workspace()})
}

// ReplyToBottleHandler appends a reply authored by the signed-in member.
func ReplyToBottleHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	author := c.GetString("userEmail")
	if err := WorkspaceSvc.ReplyToBottle(c.Request.Context(), author, req.Text); err != nil {
		logger.Error("Failed to reply to bottle", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reply to bottle"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspace": WorkspaceSvc.Workspace()})
}

// DeleteBottleReplyHandler removes one reply; unknown IDs are a no-op.
func DeleteBottleReplyHandler(c *gin.Context) {
	logger := getLogger(c)

	replyID := c.Param("replyId")
	if err := WorkspaceSvc.DeleteBottleReply(c.Request.Context(), replyID); err != nil {
		logger.Error("Failed to delete bottle reply", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reply"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspace": WorkspaceSvc.Workspace()})
}
