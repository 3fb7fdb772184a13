package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubAuthRepo struct {
	users map[string]*domain.User
	seq   int
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// Create mirrors the unique indexes on username and email.
func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("u%d", r.seq)
	r.users[copy.Username] = cloneUser(copy)
	return copy, nil
}

func (r *stubAuthRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// ---------------------------------------------------------------------------
// Denylist
// ---------------------------------------------------------------------------

type stubDenylist struct {
	denied map[string]time.Duration
	err    error
}

func newStubDenylist() *stubDenylist {
	return &stubDenylist{denied: make(map[string]time.Duration)}
}

func (d *stubDenylist) Deny(_ context.Context, id string, ttl time.Duration) error {
	d.denied[id] = ttl
	return nil
}

func (d *stubDenylist) IsDenied(_ context.Context, id string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.denied[id]
	return ok, nil
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	seq       int
	createErr error
	// stealOnWrite reassigns the order to another user right before a
	// write, simulating a concurrent ownership change.
	stealOnWrite bool
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	o.ID = fmt.Sprintf("o%d", r.seq)
	clone := *o
	r.orders[o.ID] = &clone
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *stubOrderRepo) List(_ context.Context, f ports.OrderFilter, page domain.PageRequest) ([]*domain.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Order
	for _, o := range r.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		clone := *o
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, page), int64(len(matched)), nil
}

func (r *stubOrderRepo) Update(_ context.Context, o *domain.Order, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.orders[o.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if r.stealOnWrite {
		cur.UserID = "someone-else"
	}
	if ownerID != "" && cur.UserID != ownerID {
		return domain.ErrOrderNotFound
	}
	clone := *o
	r.orders[o.ID] = &clone
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if r.stealOnWrite {
		cur.UserID = "someone-else"
	}
	if ownerID != "" && cur.UserID != ownerID {
		return domain.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

// ---------------------------------------------------------------------------
// Product lookup
// ---------------------------------------------------------------------------

type stubLookup struct {
	products map[string]*domain.Product
	err      error
	// block makes GetProduct wait for the context to expire.
	block bool
	calls int
}

func (l *stubLookup) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	l.calls++
	if l.block {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, ctx.Err())
	}
	if l.err != nil {
		return nil, l.err
	}
	p, ok := l.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

// ---------------------------------------------------------------------------
// Content
// ---------------------------------------------------------------------------

type stubContentRepo struct {
	items        map[string]*domain.Content
	seq          int
	uniqueBody   bool
	stealOnWrite bool

	failDeleteByParent bool
}

func newStubContentRepo() *stubContentRepo {
	return &stubContentRepo{items: make(map[string]*domain.Content)}
}

func (r *stubContentRepo) Create(_ context.Context, c *domain.Content) error {
	if r.uniqueBody {
		for _, it := range r.items {
			if it.Body == c.Body {
				return domain.ErrDuplicateContent
			}
		}
	}
	r.seq++
	c.ID = fmt.Sprintf("c%d", r.seq)
	clone := *c
	r.items[c.ID] = &clone
	return nil
}

func (r *stubContentRepo) FindByID(_ context.Context, id string) (*domain.Content, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, domain.ErrContentNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubContentRepo) List(_ context.Context, f ports.ContentFilter, page domain.PageRequest) ([]*domain.Content, int64, error) {
	var matched []*domain.Content
	for _, c := range r.items {
		if f.OwnerID != "" && c.OwnerID != f.OwnerID {
			continue
		}
		if f.ParentID != "" && c.ParentID != f.ParentID {
			continue
		}
		clone := *c
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, page), int64(len(matched)), nil
}

func (r *stubContentRepo) Update(_ context.Context, c *domain.Content, ownerID string) error {
	cur, ok := r.items[c.ID]
	if !ok {
		return domain.ErrContentNotFound
	}
	if r.stealOnWrite {
		cur.OwnerID = "someone-else"
	}
	if ownerID != "" && cur.OwnerID != ownerID {
		return domain.ErrContentNotFound
	}
	clone := *c
	r.items[c.ID] = &clone
	return nil
}

func (r *stubContentRepo) Delete(_ context.Context, id, ownerID string) error {
	cur, ok := r.items[id]
	if !ok {
		return domain.ErrContentNotFound
	}
	if ownerID != "" && cur.OwnerID != ownerID {
		return domain.ErrContentNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *stubContentRepo) DeleteByParent(_ context.Context, parentID string) (int64, error) {
	if r.failDeleteByParent {
		return 0, errors.New("connection reset")
	}
	var n int64
	for id, c := range r.items {
		if c.ParentID == parentID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	items map[string]*domain.Product
	seq   int
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{items: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.seq++
	p.ID = fmt.Sprintf("p%d", r.seq)
	clone := *p
	r.items[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) List(_ context.Context, page domain.PageRequest) ([]*domain.Product, int64, error) {
	var all []*domain.Product
	for _, p := range r.items {
		clone := *p
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, page), int64(len(all)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) error {
	if _, ok := r.items[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	clone := *p
	r.items[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.items, id)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func paginate[T any](items []T, page domain.PageRequest) []T {
	skip := int(page.Skip())
	if skip >= len(items) {
		return []T{}
	}
	end := skip + page.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

func userClaims(id string) domain.Claims {
	return domain.Claims{SubjectID: id, Username: id, Role: domain.RoleUser}
}

func adminClaims(id string) domain.Claims {
	return domain.Claims{SubjectID: id, Username: id, Role: domain.RoleAdmin}
}
