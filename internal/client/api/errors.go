package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	// ErrMalformedResponse marks a 2xx body that decoded but lacks the
	// token or the user identity.
	ErrMalformedResponse = errors.New("malformed response")
)

const (
	msgUnknownError  = "Unknown error"
	msgRequestFailed = "Request failed"
)

// Error is a non-2xx API response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets a 401 match common.ErrUnauthorized.
func (e *Error) Is(target error) bool {
	return target == common.ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// String includes the status, for logs.
func (e *Error) String() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}
