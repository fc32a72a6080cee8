// File: utils/session_store.go
package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const SessionMirrorPrefix = "session:"

// SessionMirror is the redis-held copy of a member's active session.
// The user record is the source of truth; the mirror lets the HTTP
// surface check validity without a Mongo round trip. Its TTL matches
// the session expiry, so expired mirrors vanish on their own.
type SessionMirror struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	// TokenHash is the SHA-256 of the bearer token issued with this
	// session. Empty for sessions adopted without a token in hand; the
	// HTTP gate only enforces it when present.
	TokenHash string    `json:"tokenHash,omitempty"`
	ExpiresAt int64     `json:"expiresAt"` // epoch ms
	CreatedAt time.Time `json:"createdAt"`
}

// SaveSessionMirror stores the mirror with a TTL ending at ExpiresAt.
func SaveSessionMirror(client *redis.Client, mirror SessionMirror) error {
	ttl := time.Until(time.UnixMilli(mirror.ExpiresAt))
	if ttl <= 0 {
		return fmt.Errorf("refusing to mirror an already-expired session for user %s", mirror.UserID)
	}
	data, err := json.Marshal(mirror)
	if err != nil {
		return fmt.Errorf("failed to marshal session mirror: %w", err)
	}
	ctx := context.Background()
	if err := client.Set(ctx, SessionMirrorPrefix+mirror.UserID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session mirror: %w", err)
	}
	return nil
}

// GetSessionMirror retrieves the mirror. Returns (nil, nil) when no
// live session is mirrored for the user.
func GetSessionMirror(client *redis.Client, userID string) (*SessionMirror, error) {
	ctx := context.Background()
	data, err := client.Get(ctx, SessionMirrorPrefix+userID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session mirror: %w", err)
	}
	var mirror SessionMirror
	if err := json.Unmarshal([]byte(data), &mirror); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session mirror: %w", err)
	}
	return &mirror, nil
}

// DeleteSessionMirror removes the mirror; missing keys are not an error.
func DeleteSessionMirror(client *redis.Client, userID string) error {
	ctx := context.Background()
	return client.Del(ctx, SessionMirrorPrefix+userID).Err()
}
