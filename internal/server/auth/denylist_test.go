package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopDenylist(t *testing.T) {
	var d Denylist = NopDenylist{}
	require.NoError(t, d.Revoke(context.Background(), "id", testNow))

	revoked, err := d.IsRevoked(context.Background(), "id")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryDenylist(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDenylist(func() time.Time { return testNow })
	t.Cleanup(func() { _ = d.Close() })

	revoked, err := d.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "a", testNow.Add(time.Minute)))
	require.NoError(t, d.Revoke(ctx, "b", testNow.Add(time.Hour)))
	// a shorter second revoke does not shorten the entry
	require.NoError(t, d.Revoke(ctx, "b", testNow.Add(time.Second)))

	revoked, err = d.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, 2, d.Len())

	d.cleanup(testNow.Add(2 * time.Minute))
	assert.Equal(t, 1, d.Len())

	revoked, _ = d.IsRevoked(ctx, "a")
	assert.False(t, revoked)
	revoked, _ = d.IsRevoked(ctx, "b")
	assert.True(t, revoked)
}

func TestMemoryDenylist_CloseIsIdempotent(t *testing.T) {
	d := NewMemoryDenylist(nil)
	assert.NoError(t, d.Close())
	assert.NoError(t, d.Close())
}

type fakeRedis struct {
	keys      map[string]time.Duration
	setErr    error
	existsErr error
	closed    bool
}

func (f *fakeRedis) Set(ctx context.Context, key string, _ any, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.setErr != nil {
		cmd.SetErr(f.setErr)
		return cmd
	}
	f.keys[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.existsErr != nil {
		cmd.SetErr(f.existsErr)
		return cmd
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisDenylist(t *testing.T) {
	ctx := context.Background()
	fr := &fakeRedis{keys: map[string]time.Duration{}}
	d := newRedisDenylist(fr, logging.Nop{}, func() time.Time { return testNow })

	require.NoError(t, d.Revoke(ctx, "jti-1", testNow.Add(10*time.Minute)))
	assert.Equal(t, 10*time.Minute, fr.keys["authkeeper:revoked:jti-1"])

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = d.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	// already expired: nothing stored
	require.NoError(t, d.Revoke(ctx, "old", testNow.Add(-time.Second)))
	assert.NotContains(t, fr.keys, "authkeeper:revoked:old")

	require.NoError(t, d.Close())
	assert.True(t, fr.closed)
}

func TestRedisDenylist_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	fr := &fakeRedis{keys: map[string]time.Duration{}, setErr: boom, existsErr: boom}
	d := newRedisDenylist(fr, logging.Nop{}, func() time.Time { return testNow })

	err := d.Revoke(ctx, "x", testNow.Add(time.Minute))
	assert.ErrorIs(t, err, boom)

	revoked, err := d.IsRevoked(ctx, "x")
	assert.ErrorIs(t, err, boom)
	assert.False(t, revoked)
}
