package server

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.UserStore = config.StoreMemory
	cfg.Addr = "127.0.0.1:0"
	return cfg
}

func stubOpenDB(t *testing.T, fn func(context.Context, string) (*sql.DB, error)) {
	t.Helper()
	orig := openDB
	openDB = fn
	t.Cleanup(func() { openDB = orig })
}

func TestNewApp_MemoryStore(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, memoryConfig(), logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := `{"email":"ann@example.com","password":"password1","name":"Ann"}`
	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "auth_attempts_total")
}

func TestNewApp_DatabaseUnavailable(t *testing.T) {
	stubOpenDB(t, func(context.Context, string) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	})

	cfg := memoryConfig()
	cfg.UserStore = config.StorePostgres

	_, err := NewApp(context.Background(), cfg, logging.Nop())
	require.ErrorContains(t, err, "connection refused")
}

func TestSigningSecret(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()

	cfg.SecretKey = "fixed"
	s, err := signingSecret(ctx, cfg, logging.Nop())
	require.NoError(t, err)
	assert.Equal(t, []byte("fixed"), s)

	cfg.SecretKey = ""
	a, err := signingSecret(ctx, cfg, logging.Nop())
	require.NoError(t, err)
	b, err := signingSecret(ctx, cfg, logging.Nop())
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), logging.Nop())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_BadAddress(t *testing.T) {
	cfg := memoryConfig()
	app, err := NewApp(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)

	cfg.Addr = "127.0.0.1:-1"
	require.Error(t, app.Run(context.Background()))
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, memoryConfig(), logging.Nop()))

	stubOpenDB(t, func(context.Context, string) (*sql.DB, error) {
		return nil, errors.New("no database")
	})
	cfg := memoryConfig()
	cfg.UserStore = config.StorePostgres
	require.ErrorContains(t, Migrate(ctx, cfg, logging.Nop()), "no database")
}
