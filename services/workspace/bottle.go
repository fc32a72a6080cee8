package workspace

import (
	"context"
	"fmt"

	"memorybook/models"
	"memorybook/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// UpdateBottleMessage replaces the bottle's message, keeps its current
// position (or the seed position if none), stamps lastMovedAt and
// clears the reply thread. A new message starts a fresh conversation.
func (s *DefaultWorkspaceService) UpdateBottleMessage(ctx context.Context, actorEmail, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspace == nil {
		return fmt.Errorf("workspace not initialized")
	}

	lat, lng := DefaultBottleLat, DefaultBottleLng
	if b := s.workspace.Bottle; b != nil {
		lat, lng = b.Lat, b.Lng
	}

	updated := &models.Bottle{
		Message:     message,
		Lat:         lat,
		Lng:         lng,
		LastMovedAt: s.now(),
		Replies:     []models.BottleReply{},
	}

	// The whole bottle field group is one merge payload; workspace
	// siblings (name, allowedEmails) are never part of it.
	if err := s.Repo.MergeSet(s.workspace.ID, bson.M{"bottle": updated}); err != nil {
		return fmt.Errorf("failed to update bottle message: %w", err)
	}
	s.workspace.Bottle = updated

	if s.Notifier != nil {
		s.Notifier.BottleMessagePosted(ctx, actorEmail, message)
	}
	return nil
}

// MoveBottle updates only the coordinates and lastMovedAt. Message and
// replies are untouched: the write names the coordinate fields alone,
// so even a stale snapshot cannot clobber a concurrent reply.
func (s *DefaultWorkspaceService) MoveBottle(ctx context.Context, lat, lng float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspace == nil {
		return fmt.Errorf("workspace not initialized")
	}
	if s.workspace.Bottle == nil {
		utils.GetLogger().Warn("MoveBottle: no bottle to move")
		return nil
	}

	movedAt := s.now()
	err := s.Repo.MergeSet(s.workspace.ID, bson.M{
		"bottle.lat":           lat,
		"bottle.lng":           lng,
		"bottle.last_moved_at": movedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to move bottle: %w", err)
	}
	s.workspace.Bottle.Lat = lat
	s.workspace.Bottle.Lng = lng
	s.workspace.Bottle.LastMovedAt = movedAt
	return nil
}

// RelocateBottle displaces the bottle by a bounded random offset, the
// side effect of a member reading it.
func (s *DefaultWorkspaceService) RelocateBottle(ctx context.Context) error {
	s.mu.RLock()
	b := (*models.Bottle)(nil)
	if s.workspace != nil {
		b = s.workspace.Bottle
	}
	s.mu.RUnlock()
	if b == nil {
		utils.GetLogger().Warn("RelocateBottle: no bottle to relocate")
		return nil
	}

	dLat, dLng := s.offset()
	return s.MoveBottle(ctx, b.Lat+dLat, b.Lng+dLng)
}

// ReplyToBottle appends one reply to the thread. Replying when no
// bottle exists is a logged no-op: callers only offer the action when
// a bottle is present, so surfacing an error would be noise.
func (s *DefaultWorkspaceService) ReplyToBottle(ctx context.Context, authorEmail, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspace == nil || s.workspace.Bottle == nil {
		utils.GetLogger().Warn("ReplyToBottle: no bottle to reply to",
			zap.String("author", authorEmail))
		return nil
	}

	reply := models.BottleReply{
		ID:        uuid.NewString(),
		Text:      text,
		Author:    authorEmail,
		CreatedAt: s.now(),
	}
	replies := append(append([]models.BottleReply{}, s.workspace.Bottle.Replies...), reply)

	if err := s.Repo.MergeSet(s.workspace.ID, bson.M{"bottle.replies": replies}); err != nil {
		return fmt.Errorf("failed to reply to bottle: %w", err)
	}
	s.workspace.Bottle.Replies = replies

	if s.Notifier != nil {
		s.Notifier.BottleReplyPosted(ctx, authorEmail, text)
	}
	return nil
}

// DeleteBottleReply removes the reply with the given id; absence is a
// no-op.
func (s *DefaultWorkspaceService) DeleteBottleReply(ctx context.Context, replyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspace == nil || s.workspace.Bottle == nil {
		return nil
	}

	replies := s.workspace.Bottle.Replies
	filtered := make([]models.BottleReply, 0, len(replies))
	for _, r := range replies {
		if r.ID != replyID {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == len(replies) {
		return nil
	}

	if err := s.Repo.MergeSet(s.workspace.ID, bson.M{"bottle.replies": filtered}); err != nil {
		return fmt.Errorf("failed to delete bottle reply: %w", err)
	}
	s.workspace.Bottle.Replies = filtered
	return nil
}
