package auth

import (
	"context"
	"testing"
	"time"

	"memorybook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyLoginLinkStateMachine(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newSvc := func(u *models.User) (*DefaultAuthService, *fakeUserRepo) {
		repo := newFakeUserRepo(u)
		provider := newFakeProvider("secret")
		svc := newTestService(repo, provider, []string{u.Email}, now)
		t.Cleanup(svc.Close)
		return svc, repo
	}

	issued := func() *models.User {
		return &models.User{
			ID:               "u1",
			Email:            "alice@example.com",
			LoginToken:       "tok-123",
			LoginTokenExpiry: now.Add(time.Hour).UnixMilli(),
		}
	}

	t.Run("empty uid or token", func(t *testing.T) {
		svc, _ := newSvc(issued())
		assert.ErrorIs(t, svc.VerifyLoginLink(context.Background(), "", "tok-123"), ErrInvalidLink)
		assert.ErrorIs(t, svc.VerifyLoginLink(context.Background(), "u1", ""), ErrInvalidLink)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newSvc(issued())
		assert.ErrorIs(t, svc.VerifyLoginLink(context.Background(), "nobody", "tok-123"), ErrInvalidLink)
	})

	t.Run("token mismatch", func(t *testing.T) {
		svc, _ := newSvc(issued())
		assert.ErrorIs(t, svc.VerifyLoginLink(context.Background(), "u1", "tok-999"), ErrInvalidLink)
	})

	t.Run("no token ever issued", func(t *testing.T) {
		u := issued()
		u.LoginToken = ""
		svc, _ := newSvc(u)
		assert.ErrorIs(t, svc.VerifyLoginLink(context.Background(), "u1", "tok-123"), ErrInvalidLink)
	})

	t.Run("expired token", func(t *testing.T) {
		u := issued()
		u.LoginTokenExpiry = now.Add(-time.Minute).UnixMilli()
		svc, _ := newSvc(u)
		assert.ErrorIs(t, svc.VerifyLoginLink(context.Background(), "u1", "tok-123"), ErrLinkExpired)
	})

	// Mismatch outranks expiry: a wrong token against an expired record
	// still reads as invalid, not expired.
	t.Run("mismatch against expired token", func(t *testing.T) {
		u := issued()
		u.LoginTokenExpiry = now.Add(-time.Minute).UnixMilli()
		svc, _ := newSvc(u)
		assert.ErrorIs(t, svc.VerifyLoginLink(context.Background(), "u1", "tok-999"), ErrInvalidLink)
	})

	t.Run("success stamps verification and burns the token", func(t *testing.T) {
		svc, repo := newSvc(issued())
		require.NoError(t, svc.VerifyLoginLink(context.Background(), "u1", "tok-123"))

		last := repo.lastSet()
		require.NotNil(t, last)
		assert.Equal(t, now, last["email_verified_at"])
		assert.Equal(t, true, last["login_token_used"])

		// Success does not open a session.
		assert.False(t, svc.IsSessionValid())

		// The same link a second time is already used.
		assert.ErrorIs(t, svc.VerifyLoginLink(context.Background(), "u1", "tok-123"), ErrLinkAlreadyUsed)
	})

	t.Run("used token", func(t *testing.T) {
		u := issued()
		u.LoginTokenUsed = true
		svc, _ := newSvc(u)
		assert.ErrorIs(t, svc.VerifyLoginLink(context.Background(), "u1", "tok-123"), ErrLinkAlreadyUsed)
	})
}
