package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.APIURL)
	assert.Equal(t, "gophauth.db", c.DatabasePath)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, StorageSQLite, c.TokenStorage)
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_URL", "http://env:1")
	t.Setenv("LOG_LEVEL", "warn")

	path := writeTempJSON(t, "", "", map[string]any{
		"api_url":         "http://json:2",
		"request_timeout": "3s",
	})

	cfg, err := LoadConfig([]string{"-c", path, "-a", "http://flag:3"})
	require.NoError(t, err)

	want := defaults()
	want.APIURL = "http://flag:3"
	want.RequestTimeout = 3 * time.Second
	want.LogLevel = "warn"
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoadConfig_RejectsUnknownStorage(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadConfig([]string{"-k", "floppy"})
	require.ErrorContains(t, err, "floppy")
}

func TestLoadConfig_RejectsZeroTimeout(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadConfig([]string{"-t", "0"})
	require.Error(t, err)
}

func TestParseEnv(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("API_URL=http://dotenv:1\nTOKEN_DB=from-dotenv.db\n"), 0o600))

	t.Run("process env wins over .env", func(t *testing.T) {
		t.Setenv("API_URL", "http://process:2")

		cfg := defaults()
		require.NoError(t, parseEnv(cfg, dotenv))
		assert.Equal(t, "http://process:2", cfg.APIURL)
		assert.Equal(t, "from-dotenv.db", cfg.DatabasePath)
	})

	t.Run("missing .env is fine", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseEnv(cfg, filepath.Join(dir, "nope.env")))
		assert.Empty(t, cmp.Diff(defaults(), cfg))
	})

	t.Run("timeout and storage", func(t *testing.T) {
		t.Setenv("REQUEST_TIMEOUT", "250ms")
		t.Setenv("TOKEN_STORAGE", StorageMemory)

		cfg := defaults()
		require.NoError(t, parseEnv(cfg, ""))
		assert.Equal(t, 250*time.Millisecond, cfg.RequestTimeout)
		assert.Equal(t, StorageMemory, cfg.TokenStorage)
	})

	t.Run("bad timeout", func(t *testing.T) {
		t.Setenv("REQUEST_TIMEOUT", "soon")
		require.ErrorContains(t, parseEnv(defaults(), ""), "REQUEST_TIMEOUT")
	})
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		start    func() *Config
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://h:1", "-d", "x.db", "-t", "5", "-l", "debug", "-k", "memory"},
			expected: &Config{
				APIURL:         "http://h:1",
				DatabasePath:   "x.db",
				RequestTimeout: 5 * time.Second,
				LogLevel:       "debug",
				TokenStorage:   StorageMemory,
			},
		},
		{
			name:     "unknown flags are ignored",
			args:     []string{"-c", "cfg.json", "-x", "1", "-a=http://h:2"},
			expected: func() *Config { c := defaults(); c.APIURL = "http://h:2"; return c }(),
		},
		{
			name:     "sub-second value survives when -t is absent",
			start:    func() *Config { c := defaults(); c.RequestTimeout = 1500 * time.Millisecond; return c },
			args:     []string{},
			expected: func() *Config { c := defaults(); c.RequestTimeout = 1500 * time.Millisecond; return c }(),
		},
		{name: "incorrect timeout", args: []string{"-t", "abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			if tt.start != nil {
				cfg = tt.start()
			}

			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
