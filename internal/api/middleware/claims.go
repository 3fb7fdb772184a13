package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/storefront/gateway/internal/core/domain"
)

const claimsKey = "claims"

// SetClaims binds the authenticated principal to the request context.
func SetClaims(c echo.Context, claims domain.Claims) {
	c.Set(claimsKey, claims)
}

// ClaimsFrom returns the principal bound by Authenticate, if any.
func ClaimsFrom(c echo.Context) (domain.Claims, bool) {
	claims, ok := c.Get(claimsKey).(domain.Claims)
	return claims, ok
}
