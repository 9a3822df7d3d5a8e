// Package api is the client's transport to the authentication API.
//
// # Overview
//
// Client is the transport-agnostic contract used by the session store:
// Login, Register, CurrentUser and Health. HTTPClient implements it with JSON
// over HTTP, attaching the persisted token as a bearer credential and tagging
// each request with a fresh X-Request-Id.
//
// # Error Handling
//
// A response with a non-2xx status becomes *Error carrying the HTTP status
// and the server's message; match it with errors.As. A 401 also matches
// common.ErrUnauthorized through errors.Is. Network failures wrap
// ErrUnavailable. Anything else (for example a 2xx body that is not valid
// JSON) is a plain wrapped error. A 2xx body that decodes but has no token,
// or a user without id or email, wraps ErrMalformedResponse.
//
// No call is retried.
package api
