package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gestion-ventes/ventes-api/internal/api/handler"
	"github.com/gestion-ventes/ventes-api/internal/api/metrics"
	"github.com/gestion-ventes/ventes-api/internal/core/domain"
	"github.com/gestion-ventes/ventes-api/internal/core/ports"
)

// Auth validates the bearer token and injects its claims into the context.
// Every failure reaches the client as the same domain.ErrUnauthorized; the
// precise kind is only logged and counted.
func Auth(verifier ports.TokenVerifier, m *metrics.Metrics, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				m.AuthFailuresTotal.WithLabelValues("missing").Inc()
				return domain.ErrUnauthorized
			}

			scheme, raw, ok := strings.Cut(authHeader, " ")
			raw = strings.TrimSpace(raw)
			if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
				m.AuthFailuresTotal.WithLabelValues("malformed").Inc()
				return domain.ErrUnauthorized
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				reason := failureReason(err)
				m.AuthFailuresTotal.WithLabelValues(reason).Inc()
				log.Debug().
					Str("reason", reason).
					Str("path", c.Path()).
					Str("remote_ip", c.RealIP()).
					Msg("bearer token rejected")
				return domain.ErrUnauthorized
			}

			c.Set(handler.ClaimsKey, claims)
			c.Set("username", claims.Username)
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenBadSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}

// RequirePasswordRotated blocks callers whose token still carries the
// rotation flag set on bootstrapped accounts.
func RequirePasswordRotated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(handler.ClaimsKey).(*domain.Claims)
			if !ok || claims == nil {
				return domain.ErrUnauthorized
			}
			if claims.MustRotate {
				return domain.ErrPasswordRotationRequired
			}
			return next(c)
		}
	}
}
