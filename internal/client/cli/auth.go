package cli

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophauth/internal/client/api"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

const (
	minPasswordLength = 8

	msgUnexpected   = "An unexpected error occurred"
	msgBusy         = "Please wait, a request is already in progress"
	msgShortPass    = "Password must be at least 8 characters"
	msgRequiredData = "All fields are required"
)

// ErrBusy is returned when a form is submitted while a previous submission
// is still outstanding.
var ErrBusy = errors.New("request already in progress")

// Login is the login form. It prompts for credentials, submits them through
// the session store and, on success, shows the home view. On failure it prints
// the server's message for API errors and a generic message otherwise; the
// error is returned either way.
func (a *App) Login(ctx context.Context) error {
	if !a.pending.CompareAndSwap(false, true) {
		a.println(msgBusy)
		return ErrBusy
	}
	defer a.pending.Store(false)

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	req := models.LoginRequest{Email: email, Password: string(password)}
	if err := a.store.Login(ctx, req); err != nil {
		a.showError(ctx, "login failed", err)
		return err
	}

	return a.Home(ctx)
}

// Register is the sign-up form: name, email, password. The password length
// is checked locally before anything is sent.
func (a *App) Register(ctx context.Context) error {
	if !a.pending.CompareAndSwap(false, true) {
		a.println(msgBusy)
		return ErrBusy
	}
	defer a.pending.Store(false)

	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if name == "" || email == "" {
		a.println(msgRequiredData)
		return common.ErrValidation
	}
	if utf8.RuneCount(password) < minPasswordLength {
		a.println(msgShortPass)
		return common.ErrValidation
	}

	req := models.RegisterRequest{Email: email, Password: string(password), Name: name}
	if err := a.store.Register(ctx, req); err != nil {
		a.showError(ctx, "register failed", err)
		return err
	}

	return a.Home(ctx)
}

func (a *App) Logout(ctx context.Context) error {
	a.store.Logout(ctx)
	a.println("Logged out")
	return nil
}

func (a *App) showError(ctx context.Context, msg string, err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		a.logger.Info(ctx, msg, "status", apiErr.Status, "error", apiErr.Message)
		a.println(apiErr.Message)
		return
	}
	a.logger.Error(ctx, msg, "error", err)
	a.println(msgUnexpected)
}
