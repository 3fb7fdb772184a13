package ports

import (
	"context"

	"github.com/storefront/gateway/internal/core/domain"
)

// CreateOrderInput is everything a client may supply when placing an order.
// Prices are deliberately absent.
type CreateOrderInput struct {
	ProductID string
	Quantity  int
}

// UpdateOrderInput carries the client-mutable order fields. Nil means
// unchanged.
type UpdateOrderInput struct {
	Quantity *int
	Status   *domain.OrderStatus
}

// OrderService defines use-case operations for orders.
type OrderService interface {
	CreateOrder(ctx context.Context, requester domain.Claims, in CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, requester domain.Claims, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, requester domain.Claims, page domain.PageRequest) (domain.Page[*domain.Order], error)
	UpdateOrder(ctx context.Context, requester domain.Claims, id string, in UpdateOrderInput) (*domain.Order, error)
	DeleteOrder(ctx context.Context, requester domain.Claims, id string) error
}
