package ports

import (
	"context"

	"github.com/storefront/gateway/internal/core/domain"
)

// ContentInput carries writable content fields. On update, nil fields are
// left unchanged.
type ContentInput struct {
	Title    *string
	Body     *string
	Tags     []string
	ImageURL *string
	ParentID string // create only
}

// ContentService implements CRUD for one kind of owned content. For private
// kinds, Get and List are restricted to the requester's own items unless the
// requester is an admin.
type ContentService interface {
	Kind() domain.ContentKind
	Create(ctx context.Context, requester domain.Claims, in ContentInput) (*domain.Content, error)
	Get(ctx context.Context, requester domain.Claims, id string) (*domain.Content, error)
	List(ctx context.Context, requester domain.Claims, filter ContentFilter, page domain.PageRequest) (domain.Page[*domain.Content], error)
	Update(ctx context.Context, requester domain.Claims, id string, in ContentInput) (*domain.Content, error)
	Delete(ctx context.Context, requester domain.Claims, id string) error
}
