// Package config loads runtime configuration for the gophauth client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, with a .env file as fallback (see parseEnv).
//  3. Optional JSON file selected via -c / -config or the CONFIG variable.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   base URL of the auth API
//	-d string   path of the SQLite token database
//	-t int      request timeout (seconds)
//	-l string   log level
//	-k string   token storage: sqlite or memory
//
// Environment
//
//	API_URL, TOKEN_DB, REQUEST_TIMEOUT ("10s"), LOG_LEVEL, TOKEN_STORAGE
//
// # JSON schema
//
//	{
//	  "api_url": "http://127.0.0.1:8080",
//	  "database_path": "gophauth.db",
//	  "request_timeout": "10s",
//	  "log_level": "info",
//	  "token_storage": "sqlite"
//	}
package config
