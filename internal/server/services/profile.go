package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

// Authorizer resolves a presented token to its subject id.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (string, error)
}

// Presigner hands out temporary upload URLs for an object key.
type Presigner interface {
	PresignPut(ctx context.Context, key string) (string, error)
}

// ProfileService reads and amends profiles on behalf of their owner.
type ProfileService struct {
	authz     Authorizer
	users     users.Repository
	presigner Presigner
	logger    logging.Logger
}

// NewProfileService builds the service. presigner may be nil, which disables
// avatar uploads.
func NewProfileService(authz Authorizer, repo users.Repository, presigner Presigner, logger logging.Logger) *ProfileService {
	return &ProfileService{
		authz:     authz,
		users:     repo,
		presigner: presigner,
		logger:    logger.With("module", "profile_service"),
	}
}

// Get returns the token owner's record.
func (s *ProfileService) Get(ctx context.Context, token string) (*models.User, error) {
	subject, err := s.authz.Authorize(ctx, token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, subject)
	if err != nil {
		return nil, s.storeError(ctx, subject, err)
	}
	return u, nil
}

// Update applies patch to targetID's profile. An empty targetID means the
// token owner; any other identity is forbidden.
func (s *ProfileService) Update(ctx context.Context, token, targetID string, patch models.ProfilePatch) (*models.User, error) {
	subject, err := s.authz.Authorize(ctx, token)
	if err != nil {
		return nil, err
	}

	if targetID == "" {
		targetID = subject
	}
	if targetID != subject {
		s.logger.Warn(ctx, "cross-account update rejected", "user_id", subject, "target_id", targetID)
		return nil, common.ErrForbidden
	}

	patch, err = patch.Normalize()
	if err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	u, err := s.users.UpdateProfile(ctx, subject, patch)
	if err != nil {
		return nil, s.storeError(ctx, subject, err)
	}

	s.logger.Info(ctx, "profile updated", "user_id", subject, "fields", len(patch))
	return u, nil
}

// AvatarUploadURL returns an object key under avatars/<user id>/ and a
// presigned PUT URL for it.
func (s *ProfileService) AvatarUploadURL(ctx context.Context, token string) (string, string, error) {
	subject, err := s.authz.Authorize(ctx, token)
	if err != nil {
		return "", "", err
	}

	if s.presigner == nil {
		return "", "", fmt.Errorf("%w: avatar uploads are disabled", common.ErrInvalidInput)
	}

	key := fmt.Sprintf("avatars/%s/%s", subject, uuid.NewString())
	url, err := s.presigner.PresignPut(ctx, key)
	if err != nil {
		s.logger.Error(ctx, "presign failed", "user_id", subject, "error", err)
		return "", "", fmt.Errorf("%w: presign: %w", common.ErrorInternal, err)
	}
	return key, url, nil
}

// storeError maps a store failure after successful authorization. A missing
// record for a valid token means the store and the token disagree.
func (s *ProfileService) storeError(ctx context.Context, subject string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "authorized subject has no record", "user_id", subject)
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	s.logger.Error(ctx, "store failed", "user_id", subject, "error", err)
	return fmt.Errorf("%w: %w", common.ErrorInternal, err)
}
