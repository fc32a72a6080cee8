package auth

import (
	"context"
	"time"

	"memorybook/services/identity"
	"memorybook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ReconcileAction is the decision the auth-state reconciler takes on
// an upstream identity change.
type ReconcileAction int

const (
	// ActionClear: no identity; drop any held session state.
	ActionClear ReconcileAction = iota
	// ActionAdopt: the stored expiry is still in the future; adopt it.
	ActionAdopt
	// ActionMint: identity verified but no live stored session; mint a
	// fresh full-duration session. Covers returning to the app after
	// the in-memory session was lost while the account stayed
	// authenticated upstream.
	ActionMint
	// ActionSignOut: identity present but unverified; force sign-out.
	ActionSignOut
)

// Reconcile is the pure decision function over (identity, stored
// expiry, now). Keeping it free of I/O makes the reconciliation
// testable without a live provider.
func Reconcile(ident *identity.Identity, storedExpiry *int64, now time.Time) ReconcileAction {
	if ident == nil {
		return ActionClear
	}
	if storedExpiry != nil && *storedExpiry > now.UnixMilli() {
		return ActionAdopt
	}
	if ident.EmailVerified {
		return ActionMint
	}
	return ActionSignOut
}

// handleAuthState runs on every upstream identity change. It is
// idempotent and safe to run on every app (re)load.
func (s *DefaultAuthService) handleAuthState(ident *identity.Identity) {
	if ident == nil {
		s.clearSession()
		return
	}

	var storedExpiry *int64
	u, err := s.Repo.GetByID(ident.UID)
	if err != nil {
		utils.GetLogger().Error("Auth-state reconciliation: failed to read user record", zap.Error(err))
		return
	}
	storedExpiry = u.SessionExpiry

	switch Reconcile(ident, storedExpiry, s.now()) {
	case ActionAdopt:
		s.setSession(ident.UID, ident.Email, *storedExpiry, "")

	case ActionMint:
		now := s.now()
		expiry := now.Add(s.SessionDuration).UnixMilli()
		err := s.Repo.UpdateSetDocument(ident.UID, bson.M{
			"email":          ident.Email,
			"session_expiry": expiry,
			"last_login":     now,
		})
		if err != nil {
			utils.GetLogger().Error("Auth-state reconciliation: failed to persist minted session", zap.Error(err))
			return
		}
		s.setSession(ident.UID, ident.Email, expiry, "")

	case ActionSignOut:
		s.clearSession()
		if err := s.Provider.SignOut(context.Background(), ident.UID); err != nil {
			utils.GetLogger().Error("Auth-state reconciliation: provider sign-out failed", zap.Error(err))
		}
	}
}
