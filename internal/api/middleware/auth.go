package middleware

import (
	"encoding/base64"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
	"github.com/storefront/gateway/internal/pkg/metrics"
)

// Authenticate resolves the Authorization header to claims. Bearer tokens go
// through verifier; Basic credentials go through basic, which may be nil to
// disable that scheme. On any failure the next handler is not called.
func Authenticate(verifier ports.TokenVerifier, basic ports.BasicAuthenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				metrics.AuthFailuresTotal.WithLabelValues("missing").Inc()
				return domain.ErrUnauthenticated
			}

			scheme, credentials, ok := strings.Cut(header, " ")
			credentials = strings.TrimSpace(credentials)
			if !ok || credentials == "" {
				metrics.AuthFailuresTotal.WithLabelValues("malformed").Inc()
				return domain.ErrUnauthenticated
			}

			ctx := c.Request().Context()
			var (
				claims domain.Claims
				err    error
			)
			switch {
			case strings.EqualFold(scheme, "bearer"):
				// Verify counts its own failures.
				claims, err = verifier.Verify(ctx, credentials)
			case strings.EqualFold(scheme, "basic") && basic != nil:
				username, password, decoded := decodeBasic(credentials)
				if !decoded {
					metrics.AuthFailuresTotal.WithLabelValues("malformed").Inc()
					return domain.ErrUnauthenticated
				}
				claims, err = basic.AuthenticateBasic(ctx, username, password)
				if err != nil {
					metrics.AuthFailuresTotal.WithLabelValues("basic").Inc()
				}
			default:
				metrics.AuthFailuresTotal.WithLabelValues("malformed").Inc()
				return domain.ErrUnauthenticated
			}
			if err != nil {
				return err
			}

			SetClaims(c, claims)
			return next(c)
		}
	}
}

func decodeBasic(credentials string) (username, password string, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(credentials)
	if err != nil {
		return "", "", false
	}
	username, password, ok = strings.Cut(string(raw), ":")
	if !ok || username == "" {
		return "", "", false
	}
	return username, password, true
}
