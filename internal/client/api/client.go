package api

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

type Client interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	Health(ctx context.Context) error
}

// TokenSource supplies the bearer token, if any. tokens.Storage satisfies it;
// the transport only ever reads.
type TokenSource interface {
	Get(ctx context.Context) (token string, ok bool, err error)
}
