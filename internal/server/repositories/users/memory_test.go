package users

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	testRepository(t, func(t *testing.T) Repository {
		return NewMemoryRepository(nil)
	})
}

func TestMemoryRepository_Timestamps(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewMemoryRepository(func() time.Time { return now })

	u, err := r.Create(context.Background(), "a", []byte("d"), models.Profile{"display_name": "A"})
	require.NoError(t, err)
	assert.Equal(t, now, u.CreatedAt)

	now = now.Add(time.Hour)
	got, err := r.UpdateProfile(context.Background(), u.ID, models.ProfilePatch{"bio": "b"})
	require.NoError(t, err)
	assert.Equal(t, now, got.UpdatedAt)
	assert.Equal(t, u.CreatedAt, got.CreatedAt)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	r := NewMemoryRepository(nil)
	u, err := r.Create(context.Background(), "a", []byte("d"), models.Profile{"display_name": "A"})
	require.NoError(t, err)

	u.Profile["display_name"] = "mutated"
	u.PasswordDigest[0] = 'X'

	got, err := r.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Profile["display_name"])
	assert.Equal(t, []byte("d"), got.PasswordDigest)
}
