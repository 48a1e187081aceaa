// Package services contains the application services of the PocketLibrary
// client: the session (who is signed in) and the sync repository that keeps
// the local collection and its cloud mirror in step.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pocketlibrary/internal/auth"
	"github.com/dmitrijs2005/pocketlibrary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pocketlibrary/internal/common"
)

// Identity resolves the signed-in user. ok is false when there is no
// session.
type Identity interface {
	CurrentUserID(ctx context.Context) (userID string, ok bool)
}

// SessionService manages the locally stored session token.
//
// Contract:
//   - SignIn: issue a token for userID and remember it.
//   - UseToken: verify a token issued elsewhere and remember it.
//   - CurrentUserID: the subject of the stored token, if still valid.
//   - SignOut: forget the token and any other session state.
type SessionService interface {
	Identity
	SignIn(ctx context.Context, userID string) (token string, err error)
	UseToken(ctx context.Context, token string) (userID string, err error)
	SignOut(ctx context.Context) error
}

type sessionService struct {
	meta   metadata.Repository
	secret []byte
	ttl    time.Duration
}

func NewSessionService(meta metadata.Repository, secret []byte, ttl time.Duration) SessionService {
	return &sessionService{meta: meta, secret: secret, ttl: ttl}
}

func (s *sessionService) SignIn(ctx context.Context, userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.secret, s.ttl)
	if err != nil {
		return "", err
	}
	if err := s.meta.Set(ctx, common.SessionTokenKey, token); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}

func (s *sessionService) UseToken(ctx context.Context, token string) (string, error) {
	userID, err := auth.UserIDFromToken(token, s.secret)
	if err != nil {
		return "", err
	}
	if err := s.meta.Set(ctx, common.SessionTokenKey, token); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return userID, nil
}

// CurrentUserID treats a missing, expired or unreadable token as no session.
func (s *sessionService) CurrentUserID(ctx context.Context) (string, bool) {
	token, err := s.meta.Get(ctx, common.SessionTokenKey)
	if err != nil {
		return "", false
	}
	userID, err := auth.UserIDFromToken(token, s.secret)
	if err != nil {
		return "", false
	}
	return userID, true
}

func (s *sessionService) SignOut(ctx context.Context) error {
	return s.meta.Clear(ctx)
}
