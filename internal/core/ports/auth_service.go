package ports

import (
	"context"

	"github.com/storefront/gateway/internal/core/domain"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string // optional; defaults to domain.RoleUser
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token  string
	Claims domain.Claims
	User   *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, claims domain.Claims) error
}

// BasicAuthenticator resolves a username/password pair to claims.
type BasicAuthenticator interface {
	AuthenticateBasic(ctx context.Context, username, password string) (domain.Claims, error)
}
