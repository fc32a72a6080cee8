package auth

import (
	"context"
	"sync"
	"time"

	userRepo "memorybook/database/repository/user"
	"memorybook/services/identity"

	"github.com/go-redis/redis/v8"
)

// AuthService is the session authority: the sole gatekeeper for all
// protected functionality. Access requires allow-list membership, a
// verified email, and a live session.
type AuthService interface {
	// SignIn authenticates the credential pair and opens a session of
	// the configured duration.
	SignIn(ctx context.Context, email, password, userAgent string) (*AuthResponse, error)
	// SignOut closes the current session. Idempotent; a missing
	// session is not an error.
	SignOut(ctx context.Context) error
	// IsSessionValid reports whether the held session is live. Pure;
	// no I/O.
	IsSessionValid() bool
	// SessionExpiry returns the held session's expiry (epoch ms), or
	// nil when no session is held.
	SessionExpiry() *int64
	// VerifyLoginLink consumes a single-use login verification token
	// and stamps the user's email as verified. It does not open a
	// session; the user must still sign in.
	VerifyLoginLink(ctx context.Context, uid, token string) error
	// Register creates an account for an allow-listed address and
	// queues its first verification email.
	Register(ctx context.Context, email, password string) error
	// Close tears down the auth-state subscription and any running
	// expiry watcher.
	Close()
}

// AuthResponse is returned on successful sign-in.
type AuthResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Token         string `json:"token"`
	SessionExpiry int64  `json:"sessionExpiry"`
}

// session is the in-memory (user id, expiry) pair; the user record
// mirrors it.
type session struct {
	userID string
	email  string
	expiry int64 // epoch ms
}

// DefaultAuthService is the production implementation.
type DefaultAuthService struct {
	Repo     userRepo.UserRepository
	Provider identity.Provider

	// AllowedEmails is the configured allow-list, checked before any
	// credential verification.
	AllowedEmails []string
	// SessionDuration is authoritative; stale client copy claiming a
	// different duration is ignored.
	SessionDuration time.Duration
	// CheckInterval is the expiry watcher granularity (default one
	// minute).
	CheckInterval time.Duration
	// SessionCache, when set, mirrors the live session into redis for
	// the HTTP middleware.
	SessionCache *redis.Client

	// Now is the clock; tests substitute it.
	Now func() time.Time

	mu          sync.Mutex
	current     *session
	watcherStop chan struct{}
	unsubscribe func()
}

// NewDefaultAuthService wires the service and subscribes it to the
// provider's auth-state stream.
func NewDefaultAuthService(repo userRepo.UserRepository, provider identity.Provider, allowed []string, sessionDuration time.Duration, sessionCache *redis.Client) *DefaultAuthService {
	s := &DefaultAuthService{
		Repo:            repo,
		Provider:        provider,
		AllowedEmails:   allowed,
		SessionDuration: sessionDuration,
		CheckInterval:   time.Minute,
		SessionCache:    sessionCache,
		Now:             time.Now,
	}
	s.unsubscribe = provider.ObserveAuthState(s.handleAuthState)
	return s
}

// Close unsubscribes from the provider and stops the expiry watcher.
func (s *DefaultAuthService) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.mu.Lock()
	s.stopWatcherLocked()
	s.mu.Unlock()
}

func (s *DefaultAuthService) isAllowed(email string) bool {
	for _, e := range s.AllowedEmails {
		if e == email {
			return true
		}
	}
	return false
}

func (s *DefaultAuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
