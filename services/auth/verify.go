package auth

import (
	"context"
	"fmt"

	"memorybook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// VerifyLoginLink consumes the single-use token from an emailed
// verification link. Token states: none -> issued -> used (terminal),
// or issued -> expired (terminal). The checks are ordered so exactly
// one failure kind can apply to a given link.
//
// Success stamps emailVerifiedAt and burns the token. It deliberately
// does not open a session; the member still has to sign in.
func (s *DefaultAuthService) VerifyLoginLink(ctx context.Context, uid, token string) error {
	if uid == "" || token == "" {
		return ErrInvalidLink
	}

	u, err := s.Repo.GetByID(uid)
	if err != nil {
		utils.GetLogger().Warn("VerifyLoginLink: failed to fetch user", zap.String("uid", uid), zap.Error(err))
		return ErrInvalidLink
	}

	if u.LoginToken == "" || u.LoginToken != token {
		return ErrInvalidLink
	}
	if u.LoginTokenExpiry < s.now().UnixMilli() {
		return ErrLinkExpired
	}
	if u.LoginTokenUsed {
		return ErrLinkAlreadyUsed
	}

	err = s.Repo.UpdateSetDocument(uid, bson.M{
		"email_verified_at": s.now(),
		"login_token_used":  true,
	})
	if err != nil {
		utils.GetLogger().Error("VerifyLoginLink: failed to stamp verification", zap.Error(err))
		return fmt.Errorf("verification failed, please try again")
	}
	return nil
}
