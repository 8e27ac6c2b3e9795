package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    *Config
		wantErr bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-w", ":9091", "-st", "postgres", "-d", "db", "-f", "x.db",
				"-s", "secret", "-t", "1", "-hs", "argon2id", "-bc", "12", "-dl", "redis",
				"-ra", "redis:6379", "-rp", "pw", "-rd", "2", "-u", "user", "-p", "password",
				"-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint", "-l", "debug",
			},
			want: &Config{
				EndpointAddrGRPC: "127.0.0.1:9090",
				EndpointAddrHTTP: ":9091",
				Storage:          "postgres",
				DatabaseDSN:      "db",
				SQLitePath:       "x.db",
				SecretKey:        "secret",
				TokenTTL:         time.Minute,
				Hasher:           "argon2id",
				BcryptCost:       12,
				Denylist:         "redis",
				RedisAddr:        "redis:6379",
				RedisPassword:    "pw",
				RedisDB:          2,
				S3RootUser:       "user",
				S3RootPassword:   "password",
				S3Bucket:         "bucket",
				S3Region:         "us-west-1",
				S3BaseEndpoint:   "http://endpoint",
				LogLevel:         "debug",
			},
		},
		{
			name: "config flag ignored, ttl untouched",
			args: []string{"-c", "cfg.json", "-a", ":1"},
			want: &Config{EndpointAddrGRPC: ":1", TokenTTL: 7 * time.Minute},
		},
		{
			name:    "bad int",
			args:    []string{"-t", "ten"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{TokenTTL: 7 * time.Minute}

			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.want, config))
		})
	}
}
