package domain

import (
	"strings"
	"time"
	"unicode"
)

// ContentKind names one of the owned-content resources. All kinds share the
// same storage shape and ownership rules.
type ContentKind string

const (
	KindQuote   ContentKind = "quote"
	KindPost    ContentKind = "post"
	KindComment ContentKind = "comment"
	KindNote    ContentKind = "note"
)

// ContentKinds lists every kind in route registration order.
var ContentKinds = []ContentKind{KindQuote, KindPost, KindComment, KindNote}

// Collection is the plural resource name, used for routes and collections.
func (k ContentKind) Collection() string {
	return string(k) + "s"
}

// Private reports whether only the owner and admins may read items of this
// kind. Other kinds are readable by any authenticated principal.
func (k ContentKind) Private() bool {
	return k == KindNote
}

// Content is an entity owned by exactly one principal.
type Content struct {
	ID        string
	Kind      ContentKind
	OwnerID   string
	Title     string
	Body      string
	Slug      string
	Tags      []string
	ImageURL  string
	ParentID  string // comments: the post they belong to
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the per-kind required fields.
func (c *Content) Validate() string {
	if strings.TrimSpace(c.Body) == "" {
		return "body is required"
	}
	switch c.Kind {
	case KindPost, KindNote:
		if strings.TrimSpace(c.Title) == "" {
			return "title is required"
		}
	case KindComment:
		if c.ParentID == "" {
			return "post_id is required"
		}
	}
	return ""
}

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}
