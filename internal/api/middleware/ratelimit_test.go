package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestion-ventes/ventes-api/internal/api/metrics"
	"github.com/gestion-ventes/ventes-api/internal/core/domain"
	"github.com/gestion-ventes/ventes-api/internal/core/ports"
	"github.com/gestion-ventes/ventes-api/internal/infrastructure/memory"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ports.RateDecision, error) {
	return ports.RateDecision{}, errors.New("connection refused")
}

func TestRateLimit_RejectsOverBudget(t *testing.T) {
	e := echo.New()
	limiter := memory.NewRateLimiter(2, time.Minute)
	mw := RateLimit(limiter, "login", KeyByIP, metrics.NewNop(), zerolog.Nop())
	next := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		require.NoError(t, next(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get(HeaderRateLimitLimit))
	}

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	err := next(e.NewContext(req, rec))
	require.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, "0", rec.Header().Get(HeaderRateLimitRemaining))
	assert.NotEmpty(t, rec.Header().Get(HeaderRetryAfter))

	// Another client keeps its own budget.
	req = httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	require.NoError(t, next(e.NewContext(req, httptest.NewRecorder())))
}

func TestRateLimit_FailsOpen(t *testing.T) {
	e := echo.New()
	called := false
	mw := RateLimit(failingLimiter{}, "api", KeyByIP, metrics.NewNop(), zerolog.Nop())
	next := mw(func(c echo.Context) error {
		called = true
		return nil
	})

	require.NoError(t, next(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())))
	assert.True(t, called)
}

func TestKeyByUsername(t *testing.T) {
	e := echo.New()

	t.Run("token subject", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set("username", "alice")
		assert.Equal(t, "user:alice", KeyByUsername(c))
	})

	t.Run("basic auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.SetBasicAuth("bob", "pw")
		assert.Equal(t, "user:bob", KeyByUsername(e.NewContext(req, httptest.NewRecorder())))
	})

	t.Run("json body is restored", func(t *testing.T) {
		body := `{"username":"carol","password":"secret-pass"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		assert.Equal(t, "user:carol", KeyByUsername(c))

		var payload map[string]string
		require.NoError(t, c.Bind(&payload))
		assert.Equal(t, "carol", payload["username"])
	})

	t.Run("falls back to ip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		assert.Equal(t, "ip:192.0.2.7", KeyByUsername(e.NewContext(req, httptest.NewRecorder())))
	})
}
