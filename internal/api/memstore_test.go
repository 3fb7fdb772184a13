package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
)

// memRows is an insertion-ordered in-memory table. Listing is newest first.
type memRows[T any] struct {
	mu   sync.Mutex
	seq  int
	ids  []string
	rows map[string]T
}

func newMemRows[T any]() *memRows[T] {
	return &memRows[T]{rows: map[string]T{}}
}

func (m *memRows[T]) insert(prefix string, v T) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := fmt.Sprintf("%s%d", prefix, m.seq)
	m.ids = append(m.ids, id)
	m.rows[id] = v
	return id
}

func (m *memRows[T]) get(id string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[id]
	return v, ok
}

// replace swaps the row when ok(current) holds.
func (m *memRows[T]) replace(id string, v T, ok func(T) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, found := m.rows[id]
	if !found || !ok(cur) {
		return false
	}
	m.rows[id] = v
	return true
}

func (m *memRows[T]) remove(id string, ok func(T) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, found := m.rows[id]
	if !found || !ok(cur) {
		return false
	}
	delete(m.rows, id)
	return true
}

func (m *memRows[T]) page(match func(T) bool, p domain.PageRequest) ([]T, int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []T
	for i := len(m.ids) - 1; i >= 0; i-- {
		v, ok := m.rows[m.ids[i]]
		if ok && match(v) {
			all = append(all, v)
		}
	}
	total := int64(len(all))
	start := int(p.Skip())
	if start >= len(all) {
		return nil, total
	}
	end := start + p.PerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total
}

// --- users ---

type memUsers struct{ rows *memRows[domain.User] }

func (r memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.rows.mu.Lock()
	for _, existing := range r.rows.rows {
		if existing.Username == u.Username || existing.Email == u.Email {
			r.rows.mu.Unlock()
			return nil, domain.ErrUserExists
		}
	}
	r.rows.mu.Unlock()
	created := *u
	created.ID = r.rows.insert("u", created)
	r.rows.replace(created.ID, created, func(domain.User) bool { return true })
	return &created, nil
}

func (r memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.rows.mu.Lock()
	defer r.rows.mu.Unlock()
	for _, u := range r.rows.rows {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// --- orders ---

type memOrders struct{ rows *memRows[domain.Order] }

func ownedBy(ownerID string, owner func() string) bool {
	return ownerID == "" || owner() == ownerID
}

func (r memOrders) Create(_ context.Context, o *domain.Order) error {
	o.ID = r.rows.insert("o", *o)
	r.rows.replace(o.ID, *o, func(domain.Order) bool { return true })
	return nil
}

func (r memOrders) FindByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.rows.get(id)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (r memOrders) List(_ context.Context, f ports.OrderFilter, p domain.PageRequest) ([]*domain.Order, int64, error) {
	rows, total := r.rows.page(func(o domain.Order) bool { return f.UserID == "" || o.UserID == f.UserID }, p)
	out := make([]*domain.Order, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, total, nil
}

func (r memOrders) Update(_ context.Context, o *domain.Order, ownerID string) error {
	if !r.rows.replace(o.ID, *o, func(cur domain.Order) bool { return ownedBy(ownerID, func() string { return cur.UserID }) }) {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r memOrders) Delete(_ context.Context, id, ownerID string) error {
	if !r.rows.remove(id, func(cur domain.Order) bool { return ownedBy(ownerID, func() string { return cur.UserID }) }) {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r memOrders) count() int {
	r.rows.mu.Lock()
	defer r.rows.mu.Unlock()
	return len(r.rows.rows)
}

// --- content ---

type memContent struct {
	rows       *memRows[domain.Content]
	uniqueBody bool
}

func (r memContent) Create(_ context.Context, c *domain.Content) error {
	if r.uniqueBody {
		r.rows.mu.Lock()
		for _, existing := range r.rows.rows {
			if existing.Body == c.Body {
				r.rows.mu.Unlock()
				return domain.ErrDuplicateContent
			}
		}
		r.rows.mu.Unlock()
	}
	c.ID = r.rows.insert("c", *c)
	r.rows.replace(c.ID, *c, func(domain.Content) bool { return true })
	return nil
}

func (r memContent) FindByID(_ context.Context, id string) (*domain.Content, error) {
	c, ok := r.rows.get(id)
	if !ok {
		return nil, domain.ErrContentNotFound
	}
	return &c, nil
}

func (r memContent) List(_ context.Context, f ports.ContentFilter, p domain.PageRequest) ([]*domain.Content, int64, error) {
	rows, total := r.rows.page(func(c domain.Content) bool {
		return (f.OwnerID == "" || c.OwnerID == f.OwnerID) && (f.ParentID == "" || c.ParentID == f.ParentID)
	}, p)
	out := make([]*domain.Content, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, total, nil
}

func (r memContent) Update(_ context.Context, c *domain.Content, ownerID string) error {
	if !r.rows.replace(c.ID, *c, func(cur domain.Content) bool { return ownedBy(ownerID, func() string { return cur.OwnerID }) }) {
		return domain.ErrContentNotFound
	}
	return nil
}

func (r memContent) Delete(_ context.Context, id, ownerID string) error {
	if !r.rows.remove(id, func(cur domain.Content) bool { return ownedBy(ownerID, func() string { return cur.OwnerID }) }) {
		return domain.ErrContentNotFound
	}
	return nil
}

func (r memContent) DeleteByParent(_ context.Context, parentID string) (int64, error) {
	r.rows.mu.Lock()
	defer r.rows.mu.Unlock()
	var n int64
	for id, c := range r.rows.rows {
		if c.ParentID == parentID {
			delete(r.rows.rows, id)
			n++
		}
	}
	return n, nil
}

// --- products ---

type memProducts struct{ rows *memRows[domain.Product] }

func (r memProducts) Create(_ context.Context, p *domain.Product) error {
	p.ID = r.rows.insert("p", *p)
	r.rows.replace(p.ID, *p, func(domain.Product) bool { return true })
	return nil
}

func (r memProducts) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.rows.get(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (r memProducts) List(_ context.Context, p domain.PageRequest) ([]*domain.Product, int64, error) {
	rows, total := r.rows.page(func(domain.Product) bool { return true }, p)
	out := make([]*domain.Product, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, total, nil
}

func (r memProducts) Update(_ context.Context, p *domain.Product) error {
	if !r.rows.replace(p.ID, *p, func(domain.Product) bool { return true }) {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r memProducts) Delete(_ context.Context, id string) error {
	if !r.rows.remove(id, func(domain.Product) bool { return true }) {
		return domain.ErrProductNotFound
	}
	return nil
}

// --- denylist and request log ---

type memDenylist struct {
	mu  sync.Mutex
	ids map[string]time.Duration
}

func (d *memDenylist) Deny(_ context.Context, id string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids[id] = ttl
	return nil
}

func (d *memDenylist) IsDenied(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.ids[id]
	return ok, nil
}

type memSink struct {
	mu      sync.Mutex
	records []ports.RequestRecord
}

func (s *memSink) Record(rec ports.RequestRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}
