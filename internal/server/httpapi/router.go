// Package httpapi exposes the user service as a JSON HTTP API:
//
//	POST /api/v1/auth/register   201 {token, user}
//	POST /api/v1/auth/login      200 {token, user}
//	GET  /api/v1/me              200 user (bearer token required)
//	GET  /health                 200 {"status":"ok"}
//	GET  /metrics                Prometheus exposition
//
// Every error body is {"error": "<message>"}.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UserService is what the handlers need from services.UserService.
type UserService interface {
	Register(ctx context.Context, email, password, name string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	CurrentUser(ctx context.Context, id int64) (*models.User, error)
	VerifyToken(token string) (*auth.Claims, error)
}

// Options tune the router. Zero values are usable: no CORS headers, no
// metrics endpoint, discarded logs.
type Options struct {
	AllowedOrigin  string
	Logger         logging.Logger
	Metrics        *Metrics
	RequestTimeout time.Duration
}

func NewRouter(svc UserService, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	h := &handler{svc: svc, logger: opts.Logger, metrics: opts.Metrics}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger, opts.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(cors(opts.AllowedOrigin))

	r.Get(common.RouteHealth, h.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)
		r.With(requireAuth(svc)).Get("/me", h.me)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
