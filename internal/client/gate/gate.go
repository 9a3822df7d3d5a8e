// Package gate decides what a protected view may show for a given session
// state.
package gate

import (
	"context"
	"io"

	"github.com/dmitrijs2005/gophauth/internal/client/session"
)

// Decision is what a protected view shows for a session state.
type Decision int

const (
	// DecisionLoading means the session is still being restored.
	DecisionLoading Decision = iota
	// DecisionRedirect means nobody is logged in; go to the login view.
	DecisionRedirect
	// DecisionContent means the protected content may be shown.
	DecisionContent
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirect:
		return "redirect"
	case DecisionContent:
		return "content"
	default:
		return "unknown"
	}
}

// Decide maps a session state to a Decision. Loading wins over everything,
// so a half-restored session never shows content or bounces to login.
func Decide(st session.State) Decision {
	if st.Loading {
		return DecisionLoading
	}
	if st.User == nil {
		return DecisionRedirect
	}
	return DecisionContent
}

// View is anything that can draw itself.
type View interface {
	Render(ctx context.Context, w io.Writer) error
}

// ViewFunc adapts a function to View.
type ViewFunc func(ctx context.Context, w io.Writer) error

func (f ViewFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}

// StateSource is the read side of the session store.
type StateSource interface {
	State() session.State
}

// Gate wraps protected views. Loading and Redirect are rendered in place of
// the content when the session does not allow it.
type Gate struct {
	source   StateSource
	loading  View
	redirect View
}

// New builds a Gate that reads source and shows loading or redirect when
// content is not allowed.
func New(source StateSource, loading, redirect View) *Gate {
	return &Gate{source: source, loading: loading, redirect: redirect}
}

// Decision reports what Guard would pick right now.
func (g *Gate) Decision() Decision {
	return Decide(g.source.State())
}

// Guard returns the view to render for content under the current state.
func (g *Gate) Guard(content View) View {
	switch g.Decision() {
	case DecisionLoading:
		return g.loading
	case DecisionRedirect:
		return g.redirect
	default:
		return content
	}
}

// Render draws whichever view Guard picks for content.
func (g *Gate) Render(ctx context.Context, w io.Writer, content View) error {
	return g.Guard(content).Render(ctx, w)
}
