package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/gate"
	"github.com/dmitrijs2005/gophauth/internal/client/tokens"
)

const dateLayout = "2006-01-02"

func (a *App) renderLoading(_ context.Context, w io.Writer) error {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	_, err := fmt.Fprintln(w, "Loading...")
	return err
}

// redirectToLogin opens the login form in place of protected content. The
// form shows home itself when it succeeds.
func (a *App) redirectToLogin(ctx context.Context, _ io.Writer) error {
	a.println("Please log in to continue")
	return a.Login(ctx)
}

// protected renders content through the gate.
func (a *App) protected(ctx context.Context, content gate.ViewFunc) error {
	return a.gate.Render(ctx, a.out, content)
}

// Home shows the logged-in user.
func (a *App) Home(ctx context.Context) error {
	return a.protected(ctx, func(_ context.Context, w io.Writer) error {
		u := a.store.State().User
		if u == nil {
			return nil
		}

		a.outMu.Lock()
		defer a.outMu.Unlock()
		_, err := fmt.Fprintf(w, "Welcome, %s!\nEmail: %s\nUser ID: %d\nMember since: %s\n",
			u.Name, u.Email, u.ID, u.CreatedAt.Local().Format(dateLayout))
		return err
	})
}

// WhoAmI prints what the persisted token says about itself. The claims are
// decoded without verification and are for display only.
func (a *App) WhoAmI(ctx context.Context) error {
	return a.protected(ctx, func(ctx context.Context, w io.Writer) error {
		token, ok, err := a.store.Token(ctx)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		if !ok {
			a.println("No token stored")
			return nil
		}

		info, err := tokens.Inspect(token)
		if err != nil {
			a.println("Token is not readable:", err)
			return nil
		}

		a.outMu.Lock()
		defer a.outMu.Unlock()
		fmt.Fprintf(w, "Subject: %s\nEmail: %s\n", info.Subject, info.Email)
		if !info.IssuedAt.IsZero() {
			fmt.Fprintf(w, "Issued: %s\n", info.IssuedAt.Local().Format(time.RFC3339))
		}
		if !info.ExpiresAt.IsZero() {
			state := "valid"
			if info.Expired(time.Now()) {
				state = "expired"
			}
			fmt.Fprintf(w, "Expires: %s (%s)\n", info.ExpiresAt.Local().Format(time.RFC3339), state)
		}
		return nil
	})
}

// Status is public: it reports the session state and whether the API
// answers.
func (a *App) Status(ctx context.Context) error {
	st := a.store.State()
	switch {
	case st.Loading:
		a.println("Session: restoring")
	case st.User != nil:
		a.println("Session: logged in as", st.User.Email)
	default:
		a.println("Session: logged out")
	}

	if err := a.api.Health(ctx); err != nil {
		a.logger.Debug(ctx, "health check failed", "error", err)
		a.printf("API %s: unreachable\n", a.config.APIURL)
		return nil
	}
	a.printf("API %s: ok\n", a.config.APIURL)
	return nil
}
