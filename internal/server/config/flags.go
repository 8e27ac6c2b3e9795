package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
// Supported flags:
//
//	-a string    gRPC bind address (e.g. ":50051")
//	-w string    HTTP bind address (e.g. ":8080")
//	-st string   storage backend: memory, postgres, sqlite
//	-d string    PostgreSQL DSN
//	-f string    SQLite database file
//	-s string    token signing secret
//	-t int       token TTL, minutes
//	-hs string   password hasher: bcrypt, argon2id
//	-bc int      bcrypt cost
//	-dl string   denylist backend: none, memory, redis, postgres
//	-ra string   Redis address
//	-rp string   Redis password
//	-rd int      Redis database
//	-u string    S3 access key
//	-p string    S3 secret key
//	-b string    S3 bucket for avatars (empty disables uploads)
//	-g string    S3 region
//	-e string    S3 base endpoint
//	-l string    log level
//
// Args are filtered with flagx.FilterArgs first so the -c/-config flag and
// anything unknown do not make parsing fail.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{
		"-a", "-w", "-st", "-d", "-f", "-s", "-t", "-hs", "-bc", "-dl",
		"-ra", "-rp", "-rd", "-u", "-p", "-b", "-g", "-e", "-l",
	})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address")
	fs.StringVar(&config.Storage, "st", config.Storage, "storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SQLitePath, "f", config.SQLitePath, "sqlite file")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	ttl := fs.Int("t", int(config.TokenTTL.Minutes()), "token ttl (in minutes)")
	fs.StringVar(&config.Hasher, "hs", config.Hasher, "password hasher")
	fs.IntVar(&config.BcryptCost, "bc", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.Denylist, "dl", config.Denylist, "denylist backend")
	fs.StringVar(&config.RedisAddr, "ra", config.RedisAddr, "redis address")
	fs.StringVar(&config.RedisPassword, "rp", config.RedisPassword, "redis password")
	fs.IntVar(&config.RedisDB, "rd", config.RedisDB, "redis db")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	ttlSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			ttlSet = true
		}
	})
	if ttlSet {
		config.TokenTTL = time.Duration(*ttl) * time.Minute
	}
	return nil
}
