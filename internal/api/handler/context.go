package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
)

// ClaimsKey is the echo context key under which the Auth middleware stores
// the verified *domain.Claims.
const ClaimsKey = "claims"

// ctxClaims extracts the claims injected by the Auth middleware. A missing
// value means the route was wired without authentication.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := c.Get(ClaimsKey).(*domain.Claims)
	if !ok || claims == nil || claims.Username == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
