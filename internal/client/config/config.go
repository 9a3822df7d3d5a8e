package config

import (
	"fmt"
	"time"
)

const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config holds runtime settings for the gophauth client.
//
// Fields:
//   - APIURL: base URL of the auth API, without a trailing slash.
//   - DatabasePath: SQLite file that keeps the session token between runs.
//   - RequestTimeout: deadline applied to every API request.
//   - LogLevel: debug, info, warn or error.
//   - TokenStorage: "sqlite" (persistent) or "memory" (forgotten on exit).
type Config struct {
	APIURL         string
	DatabasePath   string
	RequestTimeout time.Duration
	LogLevel       string
	TokenStorage   string
}

// LoadDefaults populates c with defaults suitable for a local server.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://127.0.0.1:8080"
	c.DatabasePath = "gophauth.db"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "info"
	c.TokenStorage = StorageSQLite
}

// LoadConfig builds a Config from defaults, then the environment (and a .env
// file in the working directory), then the JSON file, then flags. args are
// the command-line arguments without the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.TokenStorage {
	case StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("unknown token storage %q", c.TokenStorage)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
