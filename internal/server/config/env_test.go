package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("AUTHKEEPER_GRPC_ADDR", ":6000")
	t.Setenv("AUTHKEEPER_TOKEN_TTL", "45m")
	t.Setenv("AUTHKEEPER_DENYLIST", "redis")
	t.Setenv("AUTHKEEPER_REDIS_DB", "3")

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseEnv(&c))

	assert.Equal(t, ":6000", c.EndpointAddrGRPC)
	assert.Equal(t, 45*time.Minute, c.TokenTTL)
	assert.Equal(t, DenylistRedis, c.Denylist)
	assert.Equal(t, 3, c.RedisDB)
	// untouched
	assert.Equal(t, "secretKey", c.SecretKey)
}

func TestParseEnv_BadValue(t *testing.T) {
	t.Setenv("AUTHKEEPER_BCRYPT_COST", "lots")

	var c Config
	err := parseEnv(&c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}
