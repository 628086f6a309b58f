package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the share client.
//
// HMACSecret is usually taken from the HMAC_SECRET environment variable;
// when it is empty the CLI prompts for it. DataDir holds the local SQLite
// database of imported folders.
type Config struct {
	ServerURL      string
	HMACSecret     string
	DataDir        string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with defaults for a local server.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DataDir = "data"
	c.RequestTimeout = 15 * time.Second
}

// LoadConfig builds a Config from defaults, JSON, environment and flags.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
