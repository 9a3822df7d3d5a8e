package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is a DTO used only for unmarshalling. token_ttl accepts "24h"
// or integer nanoseconds. Empty fields keep the current value.
type JsonConfig struct {
	Addr          string         `json:"addr"`
	DatabaseDSN   string         `json:"database_dsn"`
	SecretKey     string         `json:"secret_key"`
	TokenTTL      timex.Duration `json:"token_ttl"`
	AllowedOrigin string         `json:"allowed_origin"`
	LogLevel      string         `json:"log_level"`
	UserStore     string         `json:"user_store"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args, "CONFIG")
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	overlay(&cfg.Addr, jc.Addr)
	overlay(&cfg.DatabaseDSN, jc.DatabaseDSN)
	overlay(&cfg.SecretKey, jc.SecretKey)
	overlay(&cfg.AllowedOrigin, jc.AllowedOrigin)
	overlay(&cfg.LogLevel, jc.LogLevel)
	overlay(&cfg.UserStore, jc.UserStore)
	if jc.TokenTTL.Duration > 0 {
		cfg.TokenTTL = jc.TokenTTL.Duration
	}
	return nil
}
