package gate

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/client/tokens"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct{ st session.State }

func (s *staticSource) State() session.State { return s.st }

func text(s string) View {
	return ViewFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func TestDecide(t *testing.T) {
	u := &models.User{ID: 7, Name: "Ann"}

	tests := []struct {
		name string
		st   session.State
		want Decision
	}{
		{name: "loading without user", st: session.State{Loading: true}, want: DecisionLoading},
		{name: "loading wins over user", st: session.State{Loading: true, User: u}, want: DecisionLoading},
		{name: "settled without user", st: session.State{}, want: DecisionRedirect},
		{name: "settled with user", st: session.State{User: u}, want: DecisionContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.st))
		})
	}
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "loading", DecisionLoading.String())
	assert.Equal(t, "redirect", DecisionRedirect.String())
	assert.Equal(t, "content", DecisionContent.String())
	assert.Equal(t, "unknown", Decision(42).String())
}

func TestGate_Render(t *testing.T) {
	src := &staticSource{st: session.State{Loading: true}}
	g := New(src, text("Loading..."), text("redirect:/login"))
	content := text("secret")

	render := func() string {
		var buf bytes.Buffer
		require.NoError(t, g.Render(context.Background(), &buf, content))
		return buf.String()
	}

	assert.Equal(t, "Loading...", render())

	src.st = session.State{}
	assert.Equal(t, "redirect:/login", render())

	src.st = session.State{User: &models.User{ID: 1}}
	assert.Equal(t, "secret", render())
}

func TestGate_ContentNeverRenderedWithoutUser(t *testing.T) {
	rendered := false
	content := ViewFunc(func(context.Context, io.Writer) error {
		rendered = true
		return nil
	})

	for _, st := range []session.State{{Loading: true}, {}} {
		g := New(&staticSource{st: st}, text(""), text(""))
		require.NoError(t, g.Render(context.Background(), io.Discard, content))
	}
	assert.False(t, rendered)
}

type blockingAPI struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingAPI) Login(context.Context, models.LoginRequest) (*models.AuthResponse, error) {
	close(b.started)
	<-b.release
	return &models.AuthResponse{Token: "T", User: models.User{ID: 1, Email: "ann@example.com", Name: "Ann"}}, nil
}

func (b *blockingAPI) Register(context.Context, models.RegisterRequest) (*models.AuthResponse, error) {
	return nil, assert.AnError
}

func (b *blockingAPI) CurrentUser(context.Context) (*models.User, error) { return nil, assert.AnError }
func (b *blockingAPI) Health(context.Context) error                     { return nil }

// A login still in flight lives in the form, not in the session, so the gate
// keeps redirecting until the store adopts a user.
func TestGate_PendingLoginDoesNotUnlockContent(t *testing.T) {
	fa := &blockingAPI{started: make(chan struct{}), release: make(chan struct{})}
	store := session.NewStore(fa, tokens.NewMemoryStorage(), logging.Nop())
	store.Initialize(context.Background())

	g := New(store, text("Loading..."), text("redirect"))
	require.Equal(t, DecisionRedirect, g.Decision())

	done := make(chan error, 1)
	go func() {
		done <- store.Login(context.Background(), models.LoginRequest{Email: "ann@example.com", Password: "pw"})
	}()
	<-fa.started

	assert.Equal(t, DecisionRedirect, g.Decision())

	close(fa.release)
	require.NoError(t, <-done)
	assert.Equal(t, DecisionContent, g.Decision())
}

func TestGate_PropagatesViewError(t *testing.T) {
	boom := assert.AnError
	g := New(&staticSource{st: session.State{User: &models.User{}}}, text(""), text(""))

	err := g.Render(context.Background(), io.Discard, ViewFunc(func(context.Context, io.Writer) error {
		return boom
	}))
	require.ErrorIs(t, err, boom)
}
