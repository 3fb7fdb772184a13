package ports

import (
	"context"

	"github.com/storefront/gateway/internal/core/domain"
)

// ProductLookup resolves authoritative product data from the catalog
// service. Implementations return domain.ErrProductNotFound for a missing
// product and wrap every other failure in domain.ErrUpstreamUnavailable.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}
