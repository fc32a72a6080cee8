package workspace

import (
	"context"
	"fmt"

	"memorybook/models"
	"memorybook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Initialize recomputes the allow-list check for the user, loads the
// singleton workspace by its configured id, and creates it with seed
// state on first access. Creation is race-safe: two allowed users
// initializing concurrently still produce exactly one document.
func (s *DefaultWorkspaceService) Initialize(ctx context.Context, user *models.User) error {
	allowed := false
	for _, e := range s.AllowedEmails {
		if e == user.Email {
			allowed = true
			break
		}
	}

	s.mu.Lock()
	s.isAllowed = allowed
	if !allowed {
		s.workspace = nil
	}
	s.mu.Unlock()

	if !allowed {
		// Soft failure: the UI reacts to the flag, nothing throws.
		utils.GetLogger().Warn("User not in allowed list", zap.String("email", user.Email))
		return nil
	}

	ws, err := s.Repo.GetByID(s.WorkspaceID)
	if err != nil {
		return fmt.Errorf("failed to load workspace: %w", err)
	}

	if ws == nil {
		seed := &models.Workspace{
			ID:            s.WorkspaceID,
			Name:          DefaultWorkspaceName,
			AllowedEmails: s.AllowedEmails,
			Bottle: &models.Bottle{
				Message:     DefaultBottleMessage,
				Lat:         DefaultBottleLat,
				Lng:         DefaultBottleLng,
				LastMovedAt: s.now(),
				Replies:     []models.BottleReply{},
			},
		}
		ws, err = s.Repo.EnsureWorkspace(seed)
		if err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}
	}

	// Older documents may predate these fields; fall back to config.
	if ws.Name == "" {
		ws.Name = DefaultWorkspaceName
	}
	if len(ws.AllowedEmails) == 0 {
		ws.AllowedEmails = s.AllowedEmails
	}

	s.mu.Lock()
	s.workspace = ws
	s.mu.Unlock()

	// Stamp the user record with the workspace membership; merge
	// write, so loginHistory and session fields stay intact.
	err = s.UserRepo.UpdateSetDocument(user.ID, bson.M{
		"email":        user.Email,
		"workspace_id": s.WorkspaceID,
		"last_login":   s.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to stamp user workspace membership: %w", err)
	}
	return nil
}
