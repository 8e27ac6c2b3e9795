package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the authkeeper CLI.
type Config struct {
	ServerEndpointAddr string
	SessionDir         string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionDir = ".authkeeper"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// flags. Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
