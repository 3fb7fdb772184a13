package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/pkg/metrics"
)

// RequireRole admits principals whose role is exactly one of allowedRoles.
// There is no hierarchy: admin does not satisfy a user-only check.
// Must run after Authenticate.
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[claims.Role]; !ok {
				metrics.AuthorizationDeniedTotal.Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
