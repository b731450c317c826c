package ports

import (
	"context"
	"time"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
)

// PasswordHasher produces and checks self-describing password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
	// NeedsRehash reports whether encoded was produced with weaker parameters
	// than the hasher is currently configured with.
	NeedsRehash(encoded string) bool
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(user *domain.User, ttl time.Duration) (string, error)
}

// TokenVerifier checks a session token and returns its claims.
// Failures are one of domain.ErrTokenExpired, ErrTokenMalformed or ErrTokenBadSignature.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}

// RateDecision describes the outcome of a single rate limiter check.
type RateDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter counts requests per key inside a window.
type RateLimiter interface {
	// Allow consumes one unit for key. When the budget is exhausted the
	// decision has Allowed=false and the error is domain.ErrRateLimited.
	Allow(ctx context.Context, key string) (RateDecision, error)
}
