package domain

import "errors"

// Input and identity errors.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
)

// Lookup and uniqueness errors.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrOrderNotFound    = errors.New("order not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrContentNotFound  = errors.New("content not found")
	ErrDuplicateContent = errors.New("content already exists")
)

// ErrUpstreamUnavailable is returned when a remote dependency could not be
// reached, answered with an error, or timed out.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")
