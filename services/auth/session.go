package auth

import (
	"context"
	"time"

	"memorybook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// IsSessionValid reports whether the held session is live: a session
// is valid iff its expiry is set and strictly in the future.
func (s *DefaultAuthService) IsSessionValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false
	}
	return s.now().UnixMilli() < s.current.expiry
}

// SessionExpiry returns the held session's expiry in epoch ms, or nil.
func (s *DefaultAuthService) SessionExpiry() *int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	e := s.current.expiry
	return &e
}

// CurrentUserID returns the held session's user id, or "".
func (s *DefaultAuthService) CurrentUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.userID
}

// SignOut clears the stored sessionExpiry, stamps lastLogout and drops
// all held session state. Calling it without a session is a no-op.
func (s *DefaultAuthService) SignOut(ctx context.Context) error {
	s.mu.Lock()
	cur := s.current
	s.current = nil
	s.stopWatcherLocked()
	s.mu.Unlock()

	if cur == nil {
		return nil
	}

	err := s.Repo.UpdateSetDocument(cur.userID, bson.M{
		"session_expiry": nil,
		"last_logout":    s.now(),
	})
	if err != nil {
		utils.GetLogger().Error("SignOut: failed to clear stored session", zap.Error(err))
		return err
	}

	if s.SessionCache != nil {
		if err := utils.DeleteSessionMirror(s.SessionCache, cur.userID); err != nil {
			utils.GetLogger().Error("SignOut: failed to drop session mirror", zap.Error(err))
		}
	}

	if err := s.Provider.SignOut(ctx, cur.userID); err != nil {
		utils.GetLogger().Error("SignOut: provider sign-out failed", zap.Error(err))
	}
	return nil
}

// setSession installs the in-memory session, mirrors it, and makes
// sure the expiry watcher is running. tokenHash binds the mirror to the
// bearer token that opened the session; reconciliation paths have no
// token in hand and pass "".
func (s *DefaultAuthService) setSession(userID, email string, expiry int64, tokenHash string) {
	s.mu.Lock()
	s.current = &session{userID: userID, email: email, expiry: expiry}
	s.startWatcherLocked()
	s.mu.Unlock()

	if s.SessionCache != nil {
		mirror := utils.SessionMirror{
			UserID:    userID,
			Email:     email,
			TokenHash: tokenHash,
			ExpiresAt: expiry,
			CreatedAt: s.now(),
		}
		if err := utils.SaveSessionMirror(s.SessionCache, mirror); err != nil {
			utils.GetLogger().Error("Failed to mirror session", zap.Error(err))
		}
	}
}

// clearSession drops in-memory state only; the stored record is left
// alone. Used on provider-side sign-outs already persisted elsewhere.
func (s *DefaultAuthService) clearSession() {
	s.mu.Lock()
	s.current = nil
	s.stopWatcherLocked()
	s.mu.Unlock()
}

// startWatcherLocked launches the recurring expiry check. The check is
// background work, not lazy: an expired session is signed out within
// one interval even if nothing touches a protected resource. Caller
// holds s.mu.
func (s *DefaultAuthService) startWatcherLocked() {
	if s.watcherStop != nil {
		return
	}
	stop := make(chan struct{})
	s.watcherStop = stop

	interval := s.CheckInterval
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !s.IsSessionValid() {
					utils.GetLogger().Info("Session expired, signing out")
					if err := s.SignOut(context.Background()); err != nil {
						utils.GetLogger().Error("Auto sign-out failed", zap.Error(err))
					}
					return
				}
			}
		}
	}()
}

// stopWatcherLocked tears the watcher down so timers never leak across
// sign-in/out cycles. Caller holds s.mu.
func (s *DefaultAuthService) stopWatcherLocked() {
	if s.watcherStop != nil {
		close(s.watcherStop)
		s.watcherStop = nil
	}
}
