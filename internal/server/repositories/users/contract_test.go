package users

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepository runs the behaviour every Repository must share.
func testRepository(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()
	digest := []byte("$2a$04$digest")

	t.Run("create and find", func(t *testing.T) {
		r := newRepo(t)

		u, err := r.Create(ctx, "  Alice@Example.com ", digest, models.Profile{"name": "Alice", "bio": ""})
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, "alice@example.com", u.LoginHandle)
		assert.Equal(t, models.Profile{"display_name": "Alice"}, u.Profile)
		assert.Equal(t, digest, u.PasswordDigest)
		assert.False(t, u.CreatedAt.IsZero())

		byHandle, err := r.FindByHandle(ctx, "ALICE@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byHandle.ID)

		byID, err := r.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", byID.LoginHandle)
		assert.Equal(t, u.Profile, byID.Profile)
		assert.Equal(t, digest, byID.PasswordDigest)
	})

	t.Run("duplicate handle regardless of case", func(t *testing.T) {
		r := newRepo(t)

		_, err := r.Create(ctx, "bob", digest, models.Profile{"display_name": "Bob"})
		require.NoError(t, err)

		_, err = r.Create(ctx, "BOB ", digest, models.Profile{"display_name": "Other"})
		assert.ErrorIs(t, err, common.ErrDuplicateIdentity)
	})

	t.Run("invalid input", func(t *testing.T) {
		r := newRepo(t)

		_, err := r.Create(ctx, "   ", digest, models.Profile{"display_name": "X"})
		assert.ErrorIs(t, err, common.ErrInvalidInput)

		_, err = r.Create(ctx, "x", digest, models.Profile{"email": "x@y.z"})
		assert.ErrorIs(t, err, common.ErrInvalidInput)

		_, err = r.Create(ctx, "x", nil, models.Profile{"display_name": "X"})
		assert.ErrorIs(t, err, common.ErrInvalidInput)

		_, err = r.FindByHandle(ctx, "x")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		r := newRepo(t)

		_, err := r.FindByHandle(ctx, "ghost")
		assert.ErrorIs(t, err, common.ErrorNotFound)

		_, err = r.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, common.ErrorNotFound)

		_, err = r.UpdateProfile(ctx, "00000000-0000-0000-0000-000000000000", models.ProfilePatch{"bio": "x"})
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("partial update", func(t *testing.T) {
		r := newRepo(t)

		u, err := r.Create(ctx, "carol", digest, models.Profile{
			"display_name": "Carol",
			"email":        "carol@example.com",
			"bio":          "hello",
		})
		require.NoError(t, err)

		got, err := r.UpdateProfile(ctx, u.ID, models.ProfilePatch{
			"display_name": "Caroline",
			"bio":          "",
			"occupation":   "pilot",
		})
		require.NoError(t, err)

		assert.Equal(t, models.Profile{
			"display_name": "Caroline",
			"email":        "carol@example.com",
			"occupation":   "pilot",
		}, got.Profile)
		assert.Equal(t, "carol", got.LoginHandle)
		assert.Equal(t, digest, got.PasswordDigest)

		again, err := r.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, got.Profile, again.Profile)
	})

	t.Run("concurrent creates of one handle", func(t *testing.T) {
		r := newRepo(t)

		const n = 16
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			ok   int
			dups int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := r.Create(ctx, "Race@Example.com", digest, models.Profile{"display_name": "R"})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case assert.ErrorIs(t, err, common.ErrDuplicateIdentity):
					dups++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, ok)
		assert.Equal(t, n-1, dups)
	})
}
