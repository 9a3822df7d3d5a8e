// Package session owns the client's notion of who is logged in.
//
// A Store is created once per process, restored from the persisted token by
// Initialize and then changed only through Login, Register and Logout. It is
// the single writer of token storage. Views read it through State and
// Subscribe; the access gate reads it through State.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/client/api"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/tokens"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// State is a snapshot of the session. Loading is true only until the startup
// restore settles.
type State struct {
	User    *models.User
	Loading bool
}

// Authenticated reports whether a user is present.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Store holds the current session and is the only writer of token storage.
type Store struct {
	api    api.Client
	tokens tokens.Storage
	logger logging.Logger

	// writeMu pairs every token write with its epoch check or bump.
	writeMu sync.Mutex

	mu    sync.RWMutex
	state State
	// epoch counts Login/Register/Logout; a restore that started in an older
	// epoch must not overwrite their outcome.
	epoch uint64
	subs  map[chan State]struct{}

	initOnce sync.Once
	settled  chan struct{}
}

// NewStore returns a Store in the loading state; call Initialize once.
func NewStore(client api.Client, storage tokens.Storage, logger logging.Logger) *Store {
	return &Store{
		api:     client,
		tokens:  storage,
		logger:  logger,
		state:   State{Loading: true},
		subs:    make(map[chan State]struct{}),
		settled: make(chan struct{}),
	}
}

// State returns the current snapshot. The User pointer is shared and must be
// treated as read-only.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Settled is closed once Initialize has finished.
func (s *Store) Settled() <-chan struct{} {
	return s.settled
}

// Initialize restores the session from the persisted token. Only the first
// call does anything. A token the server rejects, or any other failure on the
// way, is deleted and the session ends up logged out; nothing is returned
// because a stale session is not an error for the caller.
func (s *Store) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		defer close(s.settled)
		s.restore(ctx)
	})
}

func (s *Store) restore(ctx context.Context) {
	s.mu.RLock()
	startEpoch := s.epoch
	s.mu.RUnlock()

	_, ok, err := s.tokens.Get(ctx)
	if err != nil {
		s.logger.Warn(ctx, "reading persisted token failed, discarding session", "error", err)
		s.discard(ctx, startEpoch)
		return
	}
	if !ok {
		s.logger.Debug(ctx, "no persisted token")
		s.settle(startEpoch, nil)
		return
	}

	user, err := s.api.CurrentUser(ctx)
	if err == nil && !user.Identified() {
		err = fmt.Errorf("%w: user without id or email", api.ErrMalformedResponse)
	}
	if err != nil {
		s.logger.Warn(ctx, "persisted token rejected, discarding session", errorAttrs(err)...)
		s.discard(ctx, startEpoch)
		return
	}

	s.logger.Info(ctx, "session restored", "user_id", user.ID)
	s.settle(startEpoch, user)
}

// discard drops the stale token unless the user already changed the session.
func (s *Store) discard(ctx context.Context, startEpoch uint64) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.currentEpoch() == startEpoch {
		if err := s.tokens.Delete(ctx); err != nil {
			s.logger.Error(ctx, "deleting stale token failed", "error", err)
		}
	}
	s.settle(startEpoch, nil)
}

// errorAttrs renders err for the logger, adding the HTTP status of an
// *api.Error since its message alone omits it.
func errorAttrs(err error) []any {
	attrs := []any{"error", err}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		attrs = append(attrs, "status", apiErr.Status)
	}
	return attrs
}

// settle clears Loading and, if nothing changed the session meanwhile,
// adopts user.
func (s *Store) settle(startEpoch uint64, user *models.User) {
	s.update(func(st *State) {
		if s.epoch == startEpoch {
			st.User = user
		}
		st.Loading = false
	})
}

// Login exchanges credentials for a token, persists it and adopts the user.
// Transport errors come back unchanged (use errors.As with *api.Error) and
// leave the session as it was.
func (s *Store) Login(ctx context.Context, req models.LoginRequest) error {
	resp, err := s.api.Login(ctx, req)
	if err != nil {
		return err
	}
	return s.adopt(ctx, resp)
}

// Register creates an account and then behaves like Login.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) error {
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return err
	}
	return s.adopt(ctx, resp)
}

// adopt persists the token and installs the user. An empty token or an
// anonymous user is refused before anything is written.
func (s *Store) adopt(ctx context.Context, resp *models.AuthResponse) error {
	if resp == nil || resp.Token == "" {
		return fmt.Errorf("%w: empty token", api.ErrMalformedResponse)
	}
	if !resp.User.Identified() {
		return fmt.Errorf("%w: user without id or email", api.ErrMalformedResponse)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.tokens.Set(ctx, resp.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}

	user := resp.User
	s.update(func(st *State) {
		s.epoch++
		st.User = &user
	})
	s.logger.Info(ctx, "logged in", "user_id", user.ID)
	return nil
}

// Logout forgets the token and the user. It never fails from the caller's
// point of view and makes no network call.
func (s *Store) Logout(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.tokens.Delete(ctx); err != nil {
		s.logger.Error(ctx, "deleting token on logout failed", "error", err)
	}
	s.update(func(st *State) {
		s.epoch++
		st.User = nil
	})
}

// Token returns the persisted token for display purposes.
func (s *Store) Token(ctx context.Context) (string, bool, error) {
	return s.tokens.Get(ctx)
}

// Subscribe returns a channel that receives the latest state after every
// change. Slow readers only see the most recent state. Call cancel to stop.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

func (s *Store) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.state
	}
}
