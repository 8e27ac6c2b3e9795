// Package services contains the server-side business logic: the auth
// orchestrator (signup, login, logout, authorize) and the profile manager.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

type AuthService struct {
	users    users.Repository
	hasher   cryptox.Hasher
	tokens   *auth.TokenService
	denylist auth.Denylist
	now      func() time.Time
	logger   logging.Logger

	dummyDigest []byte
}

// NewAuthService wires the orchestrator. A nil denylist means stateless
// logout; a nil clock means time.Now.
func NewAuthService(repo users.Repository, hasher cryptox.Hasher, tokens *auth.TokenService,
	denylist auth.Denylist, now func() time.Time, logger logging.Logger) (*AuthService, error) {

	if denylist == nil {
		denylist = auth.NopDenylist{}
	}
	if now == nil {
		now = time.Now
	}

	// logins for unknown handles verify against this digest so they cost
	// the same as a wrong password
	dummyPassword, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("dummy password: %w", err)
	}
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("dummy digest: %w", err)
	}

	return &AuthService{
		users:       repo,
		hasher:      hasher,
		tokens:      tokens,
		denylist:    denylist,
		now:         now,
		logger:      logger.With("module", "auth_service"),
		dummyDigest: dummy,
	}, nil
}

// Signup registers a new identity.
func (s *AuthService) Signup(ctx context.Context, handle, password string, profile models.Profile) (*models.User, error) {
	handle = models.NormalizeHandle(handle)
	if handle == "" {
		return nil, fmt.Errorf("%w: empty login handle", common.ErrInvalidInput)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, handle, digest, profile)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateIdentity) || errors.Is(err, common.ErrInvalidInput) {
			return nil, err
		}
		s.logger.Error(ctx, "create user failed", "error", err)
		return nil, fmt.Errorf("%w: create user: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login checks credentials and issues a session token. An unknown handle and
// a wrong password produce the same error after the same amount of work.
func (s *AuthService) Login(ctx context.Context, handle, password string) (*models.SessionToken, error) {
	u, err := s.users.FindByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyDigest)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "find user failed", "error", err)
		return nil, fmt.Errorf("%w: find user: %w", common.ErrorInternal, err)
	}

	if !s.hasher.Verify(password, u.PasswordDigest) {
		return nil, common.ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(u.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", u.ID, "token_id", tok.ID)
	return tok, nil
}

// Authorize is the gate for every protected operation: it validates the
// token, consults the denylist and returns the subject id.
func (s *AuthService) Authorize(ctx context.Context, value string) (string, error) {
	claims, err := s.tokens.Validate(value, s.now())
	if err != nil {
		return "", err
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error(ctx, "denylist lookup failed", "token_id", claims.ID, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if revoked {
		return "", common.ErrRevokedToken
	}

	return claims.SubjectID, nil
}

// Logout revokes the token until its natural expiry. Tokens that are already
// expired or revoked are acknowledged; forged or garbled ones are not.
func (s *AuthService) Logout(ctx context.Context, value string) error {
	claims, err := s.tokens.Inspect(value)
	if err != nil {
		return err
	}

	if s.now().After(claims.ExpiresAt) {
		return nil
	}

	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt); err != nil {
		s.logger.Error(ctx, "revoke failed", "token_id", claims.ID, "error", err)
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "session ended", "user_id", claims.SubjectID, "token_id", claims.ID)
	return nil
}

// TokenTTL reports how long issued tokens live.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
