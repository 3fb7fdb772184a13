package ports

import (
	"context"
	"time"

	"github.com/storefront/gateway/internal/core/domain"
)

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (string, domain.Claims, error)
}

// TokenVerifier validates a token and returns its claims. Every failure is
// reported as domain.ErrInvalidToken.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.Claims, error)
}

// TokenRevoker invalidates a token before its natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, claims domain.Claims) error
}

// TokenDenylist stores revoked token ids until they would have expired anyway.
type TokenDenylist interface {
	Deny(ctx context.Context, tokenID string, ttl time.Duration) error
	IsDenied(ctx context.Context, tokenID string) (bool, error)
}
