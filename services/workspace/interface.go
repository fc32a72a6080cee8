package workspace

import (
	"context"
	"math/rand"
	"sync"
	"time"

	workspaceRepo "memorybook/database/repository/workspace"
	userRepo "memorybook/database/repository/user"
	"memorybook/models"
)

// Seed state for a freshly created workspace.
const (
	DefaultWorkspaceName = "Our Memories"
	DefaultBottleMessage = "Welcome to our secret bottle! Write something for us to find."
	DefaultBottleLat     = 5.3547
	DefaultBottleLng     = 100.3293

	// MaxRelocateOffset bounds the random displacement applied when a
	// member reads the bottle, in degrees.
	MaxRelocateOffset = 0.05
)

// WorkspaceService guarantees a single, consistently-initialized
// shared workspace and serializes structural mutations to its bottle.
type WorkspaceService interface {
	// Initialize loads or lazily creates the singleton workspace for
	// an authenticated user. Not being on the allow-list is a soft
	// state (IsAllowedUser reports false), not an error.
	Initialize(ctx context.Context, user *models.User) error
	// IsAllowedUser reports the outcome of the last Initialize.
	IsAllowedUser() bool
	// Workspace returns the held workspace snapshot, or nil.
	Workspace() *models.Workspace

	// UpdateBottleMessage replaces the bottle's message and starts a
	// fresh reply thread. The only operation that clears replies. The
	// actor email keeps the author out of their own notification.
	UpdateBottleMessage(ctx context.Context, actorEmail, message string) error
	// MoveBottle updates coordinates and lastMovedAt only.
	MoveBottle(ctx context.Context, lat, lng float64) error
	// RelocateBottle moves the bottle by a bounded random offset,
	// the effect of a member "reading" it.
	RelocateBottle(ctx context.Context) error
	// ReplyToBottle appends a reply authored by the given email.
	// Silently logged no-op when no bottle exists.
	ReplyToBottle(ctx context.Context, authorEmail, text string) error
	// DeleteBottleReply removes exactly one reply; no-op when absent.
	DeleteBottleReply(ctx context.Context, replyID string) error
}

// Notifier delivers best-effort partner pushes on bottle activity.
type Notifier interface {
	BottleMessagePosted(ctx context.Context, actorEmail, message string)
	BottleReplyPosted(ctx context.Context, actorEmail, text string)
}

// DefaultWorkspaceService is the production implementation.
type DefaultWorkspaceService struct {
	Repo     workspaceRepo.WorkspaceRepository
	UserRepo userRepo.UserRepository

	// AllowedEmails is re-checked here independently of the session
	// authority, as defense in depth.
	AllowedEmails []string
	WorkspaceID   string

	// Notifier may be nil; pushes are best effort.
	Notifier Notifier

	// Now is the clock; tests substitute it.
	Now func() time.Time
	// Offset generates the relocation displacement; tests substitute
	// it. Defaults to a uniform draw within ±MaxRelocateOffset.
	Offset func() (dLat, dLng float64)

	mu        sync.RWMutex
	workspace *models.Workspace
	isAllowed bool
}

func (s *DefaultWorkspaceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultWorkspaceService) offset() (float64, float64) {
	if s.Offset != nil {
		return s.Offset()
	}
	return (rand.Float64()*2 - 1) * MaxRelocateOffset,
		(rand.Float64()*2 - 1) * MaxRelocateOffset
}

// IsAllowedUser reports whether the last Initialize admitted the user.
func (s *DefaultWorkspaceService) IsAllowedUser() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAllowed
}

// Workspace returns the held snapshot.
func (s *DefaultWorkspaceService) Workspace() *models.Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspace
}
