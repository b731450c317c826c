package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gestion-ventes/ventes-api/internal/api/handler"
	"github.com/gestion-ventes/ventes-api/internal/api/metrics"
	"github.com/gestion-ventes/ventes-api/internal/core/domain"
	"github.com/gestion-ventes/ventes-api/internal/infrastructure/security/token"
)

type stubVerifier struct {
	claims *domain.Claims
	err    error
	got    string
}

func (s *stubVerifier) Verify(raw string) (*domain.Claims, error) {
	s.got = raw
	return s.claims, s.err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens, err := token.NewService("middleware-test-secret")
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	signed, err := tokens.Issue(&domain.User{ID: 1, Username: "alice", Role: domain.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(tokens, metrics.NewNop(), zerolog.Nop())
	next := mw(func(c echo.Context) error {
		called = true
		if c.Get("username") != "alice" {
			t.Fatalf("username not set")
		}
		if c.Get("role") != "admin" {
			t.Fatalf("role not set")
		}
		claims, ok := c.Get(handler.ClaimsKey).(*domain.Claims)
		if !ok || claims.Username != "alice" {
			t.Fatalf("claims not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := next(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
	}{
		{"missing header", "", nil},
		{"wrong scheme", "Basic YWxpY2U6cHc=", nil},
		{"empty token", "Bearer ", nil},
		{"expired", "Bearer expired", domain.ErrTokenExpired},
		{"bad signature", "Bearer forged", domain.ErrTokenBadSignature},
		{"malformed", "Bearer garbage", domain.ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			verifier := &stubVerifier{err: tt.err}
			if tt.err == nil {
				verifier.err = errors.New("verifier should not be reached")
			}
			mw := Auth(verifier, metrics.NewNop(), zerolog.Nop())
			next := mw(func(c echo.Context) error {
				t.Fatalf("should not reach next handler")
				return nil
			})

			err := next(c)
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
			// The kind stays internal.
			if errors.Is(err, domain.ErrTokenExpired) || errors.Is(err, domain.ErrTokenBadSignature) {
				t.Fatalf("token failure kind leaked: %v", err)
			}
		})
	}
}

func TestAuthMiddleware_SchemeCaseInsensitive(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer abc.def.ghi")
	c := e.NewContext(req, httptest.NewRecorder())

	verifier := &stubVerifier{claims: &domain.Claims{Username: "bob", Role: domain.RoleUser}}
	next := Auth(verifier, metrics.NewNop(), zerolog.Nop())(func(c echo.Context) error { return nil })

	if err := next(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if verifier.got != "abc.def.ghi" {
		t.Fatalf("unexpected token passed to verifier: %q", verifier.got)
	}
}

func TestRequirePasswordRotated(t *testing.T) {
	e := echo.New()
	mw := RequirePasswordRotated()
	next := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(handler.ClaimsKey, &domain.Claims{Username: "admin", Role: domain.RoleAdmin, MustRotate: true})
	if err := next(c); !errors.Is(err, domain.ErrPasswordRotationRequired) {
		t.Fatalf("expected ErrPasswordRotationRequired, got %v", err)
	}

	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(handler.ClaimsKey, &domain.Claims{Username: "admin", Role: domain.RoleAdmin})
	if err := next(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
