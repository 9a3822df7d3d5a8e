// Package server wires configuration, storage, the user service and the
// HTTP API together and runs them until the context is cancelled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// openDB is a seam for tests.
var openDB = repomanager.OpenPostgres

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

// NewApp opens storage (running migrations for PostgreSQL) and builds the
// HTTP handler.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	secret, err := signingSecret(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &App{config: cfg, logger: logger}

	var rm repomanager.RepositoryManager
	switch cfg.UserStore {
	case config.StoreMemory:
		logger.Warn(ctx, "using in-memory user store, accounts are lost on restart")
		rm = repomanager.NewMemoryRepositoryManager()
	default:
		db, err := openDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		pm := repomanager.NewPostgresRepositoryManager()
		if err := pm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
		app.db = db
		rm = pm
	}

	svc := services.NewUserService(app.db, rm, secret, cfg.TokenTTL)
	app.handler = httpapi.NewRouter(svc, httpapi.Options{
		AllowedOrigin: cfg.AllowedOrigin,
		Logger:        logger,
		Metrics:       httpapi.NewMetrics(),
	})

	return app, nil
}

func signingSecret(ctx context.Context, cfg *config.Config, logger logging.Logger) ([]byte, error) {
	if cfg.SecretKey != "" {
		return []byte(cfg.SecretKey), nil
	}
	s, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	logger.Warn(ctx, "no JWT secret configured, using a random one; tokens will not survive a restart")
	return []byte(s), nil
}

// Handler returns the HTTP API handler.
func (app *App) Handler() http.Handler {
	return app.handler
}

// Run serves the API on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (app *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", app.config.Addr, err)
	}
	return app.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (app *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "HTTP server started", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the database connection, if any.
func (app *App) Close() error {
	if app.db == nil {
		return nil
	}
	return app.db.Close()
}

// Migrate applies the embedded migrations to the configured database.
func Migrate(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	if cfg.UserStore == config.StoreMemory {
		logger.Info(ctx, "in-memory user store, nothing to migrate")
		return nil
	}
	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	if err := repomanager.NewPostgresRepositoryManager().RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}
	logger.Info(ctx, "migrations applied")
	return nil
}
