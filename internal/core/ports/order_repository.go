package ports

import (
	"context"

	"github.com/storefront/gateway/internal/core/domain"
)

// OrderFilter scopes list queries. An empty UserID means every order.
type OrderFilter struct {
	UserID string
}

// OrderRepository defines persistence operations for orders.
//
// Update and Delete take the owner the row must still belong to at write
// time; an empty ownerID skips that condition (admin override). When no row
// matches both id and owner they return domain.ErrOrderNotFound.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter, page domain.PageRequest) ([]*domain.Order, int64, error)
	Update(ctx context.Context, o *domain.Order, ownerID string) error
	Delete(ctx context.Context, id, ownerID string) error
}
