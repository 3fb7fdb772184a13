package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/gateway/internal/core/domain"
)

// testErrorHandler maps the domain errors the middleware returns, standing
// in for the application's central handler.
func testErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrInvalidCredentials):
		code = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput):
		code = http.StatusBadRequest
	}
	_ = c.JSON(code, map[string]string{"error": err.Error()})
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = testErrorHandler
	return e
}
