// Package token issues and verifies HS256 session tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
)

const defaultIssuer = "ventes-api"

var ErrEmptySecret = errors.New("token: signing secret must not be empty")

type sessionClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Rotate   bool   `json:"rot,omitempty"`
	jwt.RegisteredClaims
}

// Service implements ports.TokenIssuer and ports.TokenVerifier.
type Service struct {
	secret []byte
	issuer string
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIssuer(issuer string) Option {
	return func(s *Service) { s.issuer = issuer }
}

func NewService(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	s := &Service{secret: []byte(secret), issuer: defaultIssuer, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for user that expires ttl from now. Each token gets a
// unique jti.
func (s *Service) Issue(user *domain.User, ttl time.Duration) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Username: user.Username,
		Role:     user.Role,
		Rotate:   user.MustRotate,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns its claims. The error is one of
// domain.ErrTokenExpired, domain.ErrTokenBadSignature or domain.ErrTokenMalformed.
func (s *Service) Verify(raw string) (*domain.Claims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classify(err)
	}
	if claims.Username == "" || !domain.IsValidRole(claims.Role) {
		return nil, domain.ErrTokenMalformed
	}

	out := &domain.Claims{
		ID:         claims.ID,
		Username:   claims.Username,
		Role:       claims.Role,
		MustRotate: claims.Rotate,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrTokenBadSignature
	default:
		return domain.ErrTokenMalformed
	}
}
