package domain

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PageRequest is a clamped page selection. Build it with NewPageRequest.
type PageRequest struct {
	Page    int
	PerPage int
}

// NewPageRequest clamps page to >= 1 and perPage to [1, MaxPerPage],
// substituting defaults for non-positive values.
func NewPageRequest(page, perPage int) PageRequest {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return PageRequest{Page: page, PerPage: perPage}
}

// Skip is the number of rows preceding the requested page.
func (r PageRequest) Skip() int64 {
	return int64(r.Page-1) * int64(r.PerPage)
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items       []T
	Total       int64
	TotalPages  int
	CurrentPage int
	PerPage     int
}

// NewPage assembles a page. A nil items slice is normalised to empty so
// out-of-range pages serialise as [] rather than null.
func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if total > 0 {
		pages = int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	}
	return Page[T]{
		Items:       items,
		Total:       total,
		TotalPages:  pages,
		CurrentPage: req.Page,
		PerPage:     req.PerPage,
	}
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool {
	return p.CurrentPage > 1
}

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// MapPage converts the items of a page while keeping its counters.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i, it := range p.Items {
		out[i] = fn(it)
	}
	return Page[U]{
		Items:       out,
		Total:       p.Total,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
		PerPage:     p.PerPage,
	}
}
