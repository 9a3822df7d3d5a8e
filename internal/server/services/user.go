// Package services contains server-side business logic. UserService handles
// registration, login and the current-user lookup, and issues session tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

const MinPasswordLength = 8

// ValidationError describes input the service refuses. It matches
// common.ErrValidation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return common.ErrValidation
}

// AuthResult is what Register and Login hand back to the transport.
type AuthResult struct {
	Token string
	User  *models.User
}

type UserService struct {
	// db is nil when the repositories are not SQL-backed; Register then
	// skips the transaction.
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	jwtSecret   []byte
	tokenTTL    time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, secret []byte, tokenTTL time.Duration) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		jwtSecret:   secret,
		tokenTTL:    tokenTTL,
	}
}

// Register validates the input, creates the account and logs it in.
// A taken email yields common.ErrEmailTaken; bad input yields a
// *ValidationError.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	if email == "" || password == "" || name == "" {
		return nil, &ValidationError{Reason: "Email, password and name are required"}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, &ValidationError{Reason: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{Email: email, Name: name, PasswordHash: hash}

	create := func(ctx context.Context, db dbx.DBTX) error {
		repo := s.repomanager.Users(db)
		if _, err := repo.GetByEmail(ctx, email); err == nil {
			return common.ErrEmailTaken
		} else if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("error checking email: %w", err)
		}
		created, err := repo.Create(ctx, user)
		if err != nil {
			return err
		}
		user = created
		return nil
	}

	if s.db != nil {
		err = dbx.WithTx(ctx, s.db, nil, create)
	} else {
		err = create(ctx, nil)
	}
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.issue(user)
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller: both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users().GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}
	return s.issue(user)
}

// CurrentUser resolves the user a verified token points to. A token for a
// deleted account yields common.ErrNotFound.
func (s *UserService) CurrentUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return user, nil
}

// VerifyToken checks a bearer token and returns its claims.
func (s *UserService) VerifyToken(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

func (s *UserService) users() users.Repository {
	return s.repomanager.Users(s.db)
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, common.ErrInternal
	}
	return &AuthResult{Token: token, User: user}, nil
}
