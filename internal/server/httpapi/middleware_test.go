package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, Options{AllowedOrigin: "http://localhost:5173"})

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, srv.URL+common.RouteLogin, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("simple request from allowed origin", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, srv.URL+common.RouteHealth, nil, http.Header{"Origin": {"http://localhost:5173"}})
		assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin gets no headers", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, srv.URL+common.RouteHealth, nil, http.Header{"Origin": {"http://evil.example"}})
		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})
}

func TestCORS_Wildcard(t *testing.T) {
	h := cors("*")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://anything.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://anything.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Disabled(t *testing.T) {
	h := cors("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://anything.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, Options{Metrics: NewMetrics()})

	doJSON(t, http.MethodPost, srv.URL+common.RouteRegister, annReg, nil)
	doJSON(t, http.MethodPost, srv.URL+common.RouteLogin, loginRequest{Email: annReg.Email, Password: "bad-password"}, nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, text, `gophauth_auth_attempts_total{action="register",outcome="success"} 1`)
	assert.Contains(t, text, `gophauth_auth_attempts_total{action="login",outcome="rejected"} 1`)
	assert.True(t, strings.Contains(text, `route="/api/v1/auth/register"`), "request histogram uses route patterns")
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.authAttempt(actionLogin, outcomeSuccess)
	m.observeRequest(http.MethodGet, "/", 200, 0)
}

func TestNoMetricsEndpointWithoutMetrics(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/metrics", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
