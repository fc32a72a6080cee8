package notification

import (
	"context"
	"fmt"

	userRepo "memorybook/database/repository/user"
	"memorybook/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService sends best-effort FCM pushes to the other
// workspace members when the bottle sees activity. Failures are
// logged, never surfaced: a missed push must not break a write.
type NotificationService interface {
	BottleMessagePosted(ctx context.Context, actorEmail, message string)
	BottleReplyPosted(ctx context.Context, actorEmail, text string)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	UserRepo userRepo.UserRepository
	// AllowedEmails is the membership to fan out to.
	AllowedEmails []string
}

func (s *DefaultNotificationService) BottleMessagePosted(ctx context.Context, actorEmail, message string) {
	s.fanOut(ctx, actorEmail, "A new bottle washed ashore", message, map[string]string{
		"event": "bottle_message",
	})
}

func (s *DefaultNotificationService) BottleReplyPosted(ctx context.Context, actorEmail, text string) {
	s.fanOut(ctx, actorEmail, "Someone replied to the bottle", text, map[string]string{
		"event": "bottle_reply",
	})
}

// fanOut pushes to every member except the actor.
func (s *DefaultNotificationService) fanOut(ctx context.Context, actorEmail, title, body string, data map[string]string) {
	if utils.FCMClient == nil {
		return
	}
	for _, email := range s.AllowedEmails {
		if email == actorEmail {
			continue
		}
		if err := s.pushTo(ctx, email, title, body, data); err != nil {
			utils.GetLogger().Warn("Failed to push bottle notification",
				zap.String("email", email), zap.Error(err))
		}
	}
}

func (s *DefaultNotificationService) pushTo(ctx context.Context, email, title, body string, data map[string]string) error {
	u, err := s.UserRepo.GetByEmail(email)
	if err != nil {
		return fmt.Errorf("could not look up member %s: %w", email, err)
	}
	if u == nil || u.FCMToken == "" {
		return nil
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}
