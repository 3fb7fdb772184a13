package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/gateway/internal/core/domain"
)

// ProductInput carries writable product fields. On update, nil fields are
// left unchanged.
type ProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
}

type ProductService interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, page domain.PageRequest) (domain.Page[*domain.Product], error)
	CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
