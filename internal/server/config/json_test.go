package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"endpoint_addr_grpc": "www.example:9000",
		"endpoint_addr_http": "www.example:9001",
		"storage":            "sqlite",
		"database_dsn":       "dsn",
		"sqlite_path":        "auth.db",
		"secret_key":         "my_secret_key",
		"token_ttl":          "1m",
		"hasher":             "argon2id",
		"bcrypt_cost":        11,
		"denylist":           "none",
		"redis_addr":         "r:1",
		"redis_password":     "rp",
		"redis_db":           4,
		"s3_root_user":       "user",
		"s3_root_password":   "password",
		"s3_bucket":          "bucket",
		"s3_region":          "region",
		"s3_base_endpoint":   "base_endpoint",
		"log_level":          "warn",
	})

	t.Run("loads every field", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-config", full}))

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "www.example:9001", cfg.EndpointAddrHTTP)
		assert.Equal(t, "sqlite", cfg.Storage)
		assert.Equal(t, "dsn", cfg.DatabaseDSN)
		assert.Equal(t, "auth.db", cfg.SQLitePath)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, time.Minute, cfg.TokenTTL)
		assert.Equal(t, "argon2id", cfg.Hasher)
		assert.Equal(t, 11, cfg.BcryptCost)
		assert.Equal(t, "none", cfg.Denylist)
		assert.Equal(t, "r:1", cfg.RedisAddr)
		assert.Equal(t, "rp", cfg.RedisPassword)
		assert.Equal(t, 4, cfg.RedisDB)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"secret_key": "k2"})

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-c", partial}))

		assert.Equal(t, "k2", cfg.SecretKey)
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		cfg := &Config{SecretKey: "key"}
		require.NoError(t, parseJson(cfg, nil))
		assert.Equal(t, &Config{SecretKey: "key"}, cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		err := parseJson(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		err := parseJson(&Config{}, []string{"-config", bad})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode config file")
	})
}
