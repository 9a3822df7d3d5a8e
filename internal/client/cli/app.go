package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/gophauth/internal/client/api"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/gate"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/client/tokens"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger
	api    api.Client
	store  *session.Store
	gate   *gate.Gate
	reader *bufio.Reader

	outMu sync.Mutex
	out   io.Writer

	// pending is set while a login or register call is outstanding. It is
	// local to the forms and never seen by the gate.
	pending atomic.Bool

	closers []func() error
}

// NewApp wires token storage, the HTTP transport and the session store from
// c. Close releases the token database.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	storage, closeFn, err := openTokenStorage(ctx, c)
	if err != nil {
		logger.Error(ctx, "error initializing token storage", "error", err)
		return nil, err
	}

	client, err := api.NewHTTPClient(c.APIURL, storage,
		api.WithTimeout(c.RequestTimeout),
		api.WithLogger(logger.With("component", "api")),
	)
	if err != nil {
		_ = closeFn()
		return nil, err
	}

	a := newApp(c, logger, client, storage, os.Stdin, os.Stdout)
	a.closers = append(a.closers, closeFn)
	return a, nil
}

func newApp(c *config.Config, logger logging.Logger, client api.Client, storage tokens.Storage, in io.Reader, out io.Writer) *App {
	a := &App{
		config: c,
		logger: logger,
		api:    client,
		store:  session.NewStore(client, storage, logger.With("component", "session")),
		reader: bufio.NewReader(in),
		out:    out,
	}
	a.gate = gate.New(a.store, gate.ViewFunc(a.renderLoading), gate.ViewFunc(a.redirectToLogin))
	return a
}

func openTokenStorage(ctx context.Context, c *config.Config) (tokens.Storage, func() error, error) {
	if c.TokenStorage == config.StorageMemory {
		return tokens.NewMemoryStorage(), func() error { return nil }, nil
	}

	db, err := repositories.OpenDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", c.DatabasePath, err)
	}
	return tokens.NewMetadataStorage(metadata.NewSQLiteRepository(db)), db.Close, nil
}

// Run restores the session in the background and blocks in the REPL until
// the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	go a.store.Initialize(ctx)

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	go a.watchSession(watchCtx)

	a.println("Welcome to gophauth (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
	return nil
}

// watchSession reports the outcome of the startup restore once it settles.
func (a *App) watchSession(ctx context.Context) {
	ch, cancel := a.store.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case st := <-ch:
			if st.Loading {
				continue
			}
			if st.User != nil {
				a.logger.Debug(ctx, "session changed", "user_id", st.User.ID)
			} else {
				a.logger.Debug(ctx, "session changed", "user", "none")
			}
		}
	}
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.store.State().Authenticated()
}

// status is shown in the prompt.
func (a *App) status() string {
	st := a.store.State()
	switch {
	case st.Loading:
		return "(loading)"
	case st.User != nil:
		return fmt.Sprintf("(%s)", st.User.Email)
	default:
		return ""
	}
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}
