package users

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps identities in process memory. A single mutex makes
// Create an atomic check-and-insert.
type MemoryRepository struct {
	mu       sync.RWMutex
	byID     map[string]*models.User
	byHandle map[string]string
	now      func() time.Time
}

func NewMemoryRepository(now func() time.Time) *MemoryRepository {
	if now == nil {
		now = time.Now
	}
	return &MemoryRepository{
		byID:     make(map[string]*models.User),
		byHandle: make(map[string]string),
		now:      now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, handle string, digest []byte, profile models.Profile) (*models.User, error) {
	handle, profile, err := prepareCreate(handle, digest, profile)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byHandle[handle]; ok {
		return nil, common.ErrDuplicateIdentity
	}

	now := r.now().UTC()
	u := &models.User{
		ID:             uuid.NewString(),
		LoginHandle:    handle,
		PasswordDigest: append([]byte(nil), digest...),
		Profile:        profile,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.byID[u.ID] = u
	r.byHandle[handle] = u.ID

	return clone(u), nil
}

func (r *MemoryRepository) FindByHandle(ctx context.Context, handle string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHandle[models.NormalizeHandle(handle)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.Profile = u.Profile.Apply(patch)
	u.UpdatedAt = r.now().UTC()

	return clone(u), nil
}

// clone hands out copies so callers cannot mutate stored records.
func clone(u *models.User) *models.User {
	c := *u
	c.PasswordDigest = append([]byte(nil), u.PasswordDigest...)
	c.Profile = maps.Clone(u.Profile)
	return &c
}
