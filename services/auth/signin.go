package auth

import (
	"context"
	"errors"
	"fmt"

	"memorybook/models"
	"memorybook/services/identity"
	"memorybook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// SignIn gates access in order: allow-list, credentials, verification.
// Only the fully-verified path opens a session.
func (s *DefaultAuthService) SignIn(ctx context.Context, email, password, userAgent string) (*AuthResponse, error) {
	// The allow-list is checked before the provider ever sees the
	// password, so a rejected email costs no credential check.
	if !s.isAllowed(email) {
		return nil, ErrNotAuthorized
	}

	ident, err := s.Provider.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrBadCredentials) {
			return nil, ErrInvalidCredentials
		}
		utils.GetLogger().Error("SignIn: provider authentication failed", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	// Force-refresh the verification flag; it may have changed since
	// the credential check read the record.
	if err := s.Provider.Reload(ctx, ident); err != nil {
		utils.GetLogger().Error("SignIn: failed to reload identity", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	if !ident.EmailVerified {
		// Side effect of failing: exactly one verification email is
		// queued, then the provider session is terminated.
		if err := s.Provider.SendVerificationEmail(ctx, ident); err != nil {
			utils.GetLogger().Error("SignIn: failed to send verification email", zap.Error(err))
		}
		if err := s.Provider.SignOut(ctx, ident.UID); err != nil {
			utils.GetLogger().Error("SignIn: provider sign-out failed", zap.Error(err))
		}
		s.clearSession()
		return nil, ErrEmailVerificationRequired
	}

	now := s.now()
	expiry := now.Add(s.SessionDuration).UnixMilli()

	// Merge semantics: only the session fields are written, so
	// loginHistory and other siblings survive.
	err = s.Repo.UpdateSetDocument(ident.UID, bson.M{
		"email":          ident.Email,
		"session_expiry": expiry,
		"last_login":     now,
	})
	if err != nil {
		utils.GetLogger().Error("SignIn: failed to persist session", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	entry := models.LoginEntry{Timestamp: now, UserAgent: userAgent}
	if err := s.Repo.AppendLoginHistory(ident.UID, entry); err != nil {
		// History is informational; a failed append must not cost the
		// member their sign-in.
		utils.GetLogger().Error("SignIn: failed to append login history", zap.Error(err))
	}

	token, err := utils.GenerateToken(ident.UID, ident.Email, s.SessionDuration)
	if err != nil {
		utils.GetLogger().Error("SignIn: failed to generate token", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	s.setSession(ident.UID, ident.Email, expiry, utils.HashToken(token))

	return &AuthResponse{
		ID:            ident.UID,
		Email:         ident.Email,
		Token:         token,
		SessionExpiry: expiry,
	}, nil
}

// Register creates a provider account for an allow-listed address. The
// account still has to verify its email before it can sign in.
func (s *DefaultAuthService) Register(ctx context.Context, email, password string) error {
	if !s.isAllowed(email) {
		return ErrNotAuthorized
	}
	ident, err := s.Provider.Register(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.Provider.SendVerificationEmail(ctx, ident); err != nil {
		utils.GetLogger().Error("Register: failed to send verification email", zap.Error(err))
	}
	return nil
}
