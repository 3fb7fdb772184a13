package ports

import (
	"context"

	"github.com/storefront/gateway/internal/core/domain"
)

// ContentFilter narrows content listings. Empty fields are ignored.
type ContentFilter struct {
	OwnerID  string
	ParentID string
}

// ContentRepository persists owned content of a single kind.
//
// Create returns domain.ErrDuplicateContent on a uniqueness violation.
// Update and Delete follow the same owner-at-write-time contract as
// OrderRepository and return domain.ErrContentNotFound when nothing matched.
// DeleteByParent removes every item attached to parentID and reports how
// many were removed.
type ContentRepository interface {
	Create(ctx context.Context, c *domain.Content) error
	FindByID(ctx context.Context, id string) (*domain.Content, error)
	List(ctx context.Context, filter ContentFilter, page domain.PageRequest) ([]*domain.Content, int64, error)
	Update(ctx context.Context, c *domain.Content, ownerID string) error
	Delete(ctx context.Context, id, ownerID string) error
	DeleteByParent(ctx context.Context, parentID string) (int64, error)
}
