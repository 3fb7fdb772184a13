package ports

import (
	"context"

	"github.com/storefront/gateway/internal/core/domain"
)

// AuthRepository defines the interface for user credential persistence.
// Create must surface uniqueness violations as domain.ErrUserExists.
type AuthRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
