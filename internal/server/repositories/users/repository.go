// Package users is the credential store: one record per identity, unique by
// normalized login handle. Memory, PostgreSQL and SQLite implementations
// share the Repository contract.
package users

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts a new identity. The handle is normalized first; an
	// existing handle yields common.ErrDuplicateIdentity.
	Create(ctx context.Context, handle string, digest []byte, profile models.Profile) (*models.User, error)
	FindByHandle(ctx context.Context, handle string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	// UpdateProfile merges patch into the stored profile. Keys with empty
	// values are removed, absent keys are left alone.
	UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error)
}

func prepareCreate(handle string, digest []byte, profile models.Profile) (string, models.Profile, error) {
	handle = models.NormalizeHandle(handle)
	if handle == "" {
		return "", nil, fmt.Errorf("%w: empty login handle", common.ErrInvalidInput)
	}
	if len(digest) == 0 {
		return "", nil, fmt.Errorf("%w: empty password digest", common.ErrInvalidInput)
	}
	profile, err := profile.Normalize()
	if err != nil {
		return "", nil, err
	}
	if err := profile.Validate(); err != nil {
		return "", nil, err
	}
	// empty values mean "not set"
	maps.DeleteFunc(profile, func(_, v string) bool { return v == "" })
	return handle, profile, nil
}

// mergePatchJSON encodes patch as a JSON merge patch: cleared keys become
// null so that both jsonb_strip_nulls and json_patch drop them.
func mergePatchJSON(patch models.ProfilePatch) ([]byte, error) {
	doc := make(map[string]*string, len(patch))
	for k, v := range patch {
		if v == "" {
			doc[k] = nil
			continue
		}
		doc[k] = &v
	}
	return json.Marshal(doc)
}

func decodeProfile(raw []byte) (models.Profile, error) {
	p := models.Profile{}
	if len(raw) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}
