package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// "30m" strings and integer nanoseconds. Pointer fields distinguish absent
// keys from zero values so a partial file only overrides what it names.
type JsonConfig struct {
	EndpointAddrGRPC *string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP *string         `json:"endpoint_addr_http"`
	Storage          *string         `json:"storage"`
	DatabaseDSN      *string         `json:"database_dsn"`
	SQLitePath       *string         `json:"sqlite_path"`
	SecretKey        *string         `json:"secret_key"`
	TokenTTL         *timex.Duration `json:"token_ttl"`
	Hasher           *string         `json:"hasher"`
	BcryptCost       *int            `json:"bcrypt_cost"`
	Denylist         *string         `json:"denylist"`
	RedisAddr        *string         `json:"redis_addr"`
	RedisPassword    *string         `json:"redis_password"`
	RedisDB          *int            `json:"redis_db"`
	S3RootUser       *string         `json:"s3_root_user"`
	S3RootPassword   *string         `json:"s3_root_password"`
	S3Bucket         *string         `json:"s3_bucket"`
	S3Region         *string         `json:"s3_region"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint"`
	LogLevel         *string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, into config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	set(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	set(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	set(&config.Storage, c.Storage)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SQLitePath, c.SQLitePath)
	set(&config.SecretKey, c.SecretKey)
	if c.TokenTTL != nil {
		config.TokenTTL = c.TokenTTL.Duration
	}
	set(&config.Hasher, c.Hasher)
	set(&config.BcryptCost, c.BcryptCost)
	set(&config.Denylist, c.Denylist)
	set(&config.RedisAddr, c.RedisAddr)
	set(&config.RedisPassword, c.RedisPassword)
	set(&config.RedisDB, c.RedisDB)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&config.LogLevel, c.LogLevel)

	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
