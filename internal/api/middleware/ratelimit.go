package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gestion-ventes/ventes-api/internal/api/metrics"
	"github.com/gestion-ventes/ventes-api/internal/core/domain"
	"github.com/gestion-ventes/ventes-api/internal/core/ports"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRetryAfter         = "Retry-After"
)

// maxKeyBody bounds how much of a request body KeyByUsername will buffer.
const maxKeyBody = 64 << 10

// KeyFunc derives the rate limiting key of a request.
type KeyFunc func(c echo.Context) string

// KeyByIP keys requests by client address.
func KeyByIP(c echo.Context) string {
	return "ip:" + c.RealIP()
}

// KeyByUsername keys requests by the acting username: the verified token
// subject on protected routes, otherwise the username of the login or
// registration attempt. Requests without a username fall back to KeyByIP.
func KeyByUsername(c echo.Context) string {
	if username, ok := c.Get("username").(string); ok && username != "" {
		return "user:" + username
	}
	if username, _, ok := c.Request().BasicAuth(); ok && username != "" {
		return "user:" + username
	}
	if username := peekUsername(c); username != "" {
		return "user:" + username
	}
	return KeyByIP(c)
}

// peekUsername reads the "username" field of a JSON body and restores the
// body for the handler.
func peekUsername(c echo.Context) string {
	req := c.Request()
	if req.Body == nil || !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(req.Body, maxKeyBody))
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var payload struct {
		Username string `json:"username"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return strings.TrimSpace(payload.Username)
}

// RateLimit consumes one unit of limiter per request. Over-budget requests
// fail with domain.ErrRateLimited and a Retry-After header. A limiter backend
// error lets the request through.
func RateLimit(limiter ports.RateLimiter, name string, key KeyFunc, m *metrics.Metrics, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision, err := limiter.Allow(c.Request().Context(), key(c))
			if err != nil && !errors.Is(err, domain.ErrRateLimited) {
				log.Error().Err(err).Str("limiter", name).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set(HeaderRateLimitLimit, strconv.Itoa(decision.Limit))
			h.Set(HeaderRateLimitRemaining, strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				h.Set(HeaderRetryAfter, strconv.Itoa(seconds))
				m.RateLimitRejectionsTotal.WithLabelValues(name).Inc()
				log.Warn().
					Str("limiter", name).
					Str("remote_ip", c.RealIP()).
					Str("path", c.Path()).
					Msg("rate limit exceeded")
				return domain.ErrRateLimited
			}

			return next(c)
		}
	}
}
