package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/google/uuid"
)

// HTTPClient talks JSON to the API rooted at baseURL.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	timeout time.Duration
	logger  logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client (tests use the one
// from httptest.Server).
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) { h.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.logger = l }
}

func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api base URL is not set")
	}

	c := &HTTPClient{
		baseURL: baseURL,
		http:    http.DefaultClient,
		tokens:  tokens,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	resp := &models.AuthResponse{}
	if err := c.do(ctx, http.MethodPost, common.RouteLogin, req, resp); err != nil {
		return nil, err
	}
	return checkAuth(resp)
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	resp := &models.AuthResponse{}
	if err := c.do(ctx, http.MethodPost, common.RouteRegister, req, resp); err != nil {
		return nil, err
	}
	return checkAuth(resp)
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	user := &models.User{}
	if err := c.do(ctx, http.MethodGet, common.RouteMe, nil, user); err != nil {
		return nil, err
	}
	if !user.Identified() {
		return nil, fmt.Errorf("%w: user without id or email", ErrMalformedResponse)
	}
	return user, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, common.RouteHealth, nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)

	if c.tokens != nil {
		token, ok, err := c.tokens.Get(ctx)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		if ok {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
		}
	}

	c.logger.Debug(ctx, "api request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
		c.logger.Debug(ctx, "api error", "path", path, "status", apiErr.Status, "request_id", requestID)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkAuth(resp *models.AuthResponse) (*models.AuthResponse, error) {
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedResponse)
	}
	if !resp.User.Identified() {
		return nil, fmt.Errorf("%w: user without id or email", ErrMalformedResponse)
	}
	return resp, nil
}

// errorMessage extracts {"error": "..."} from a failed response.
func errorMessage(r io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return msgUnknownError
	}
	if payload.Error == "" {
		return msgRequestFailed
	}
	return payload.Error
}
