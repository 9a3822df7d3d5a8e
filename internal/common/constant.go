package common

// AuthorizationHeaderName carries the bearer token on API requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the token inside the Authorization header.
const BearerScheme = "Bearer"

// RequestIDHeaderName correlates client requests with server log lines.
const RequestIDHeaderName = "X-Request-Id"

// API routes, relative to the server base URL.
const (
	RouteLogin    = "/api/v1/auth/login"
	RouteRegister = "/api/v1/auth/register"
	RouteMe       = "/api/v1/me"
	RouteHealth   = "/health"
)
