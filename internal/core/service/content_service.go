package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
)

// ContentService implements CRUD for one kind of owned content. Quotes,
// posts, comments and notes each get an instance over their own repository.
type ContentService struct {
	kind     domain.ContentKind
	repo     ports.ContentRepository
	parent   ports.ContentRepository // comments only: the posts repository
	children ports.ContentRepository // posts only: the comments repository
	logger   zerolog.Logger
}

func NewContentService(kind domain.ContentKind, repo ports.ContentRepository, logger zerolog.Logger) *ContentService {
	return &ContentService{
		kind:   kind,
		repo:   repo,
		logger: logger.With().Str("kind", string(kind)).Logger(),
	}
}

// WithParent sets the repository parent ids are checked against.
func (s *ContentService) WithParent(parent ports.ContentRepository) *ContentService {
	s.parent = parent
	return s
}

// WithChildren sets the repository cleared when an item of this kind is
// deleted.
func (s *ContentService) WithChildren(children ports.ContentRepository) *ContentService {
	s.children = children
	return s
}

func (s *ContentService) Kind() domain.ContentKind { return s.kind }

func (s *ContentService) Create(ctx context.Context, requester domain.Claims, in ports.ContentInput) (*domain.Content, error) {
	now := time.Now().UTC()
	c := &domain.Content{
		Kind:      s.kind,
		OwnerID:   requester.SubjectID,
		Title:     strings.TrimSpace(deref(in.Title)),
		Body:      strings.TrimSpace(deref(in.Body)),
		Tags:      normalizeTags(in.Tags),
		ImageURL:  deref(in.ImageURL),
		ParentID:  in.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.kind == domain.KindPost {
		c.Slug = domain.Slugify(c.Title)
	}
	if msg := c.Validate(); msg != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
	}

	if s.parent != nil {
		if _, err := s.parent.FindByID(ctx, c.ParentID); err != nil {
			if errors.Is(err, domain.ErrContentNotFound) {
				return nil, fmt.Errorf("%w: post %s does not exist", domain.ErrInvalidInput, c.ParentID)
			}
			return nil, fmt.Errorf("create %s: %w", s.kind, err)
		}
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicateContent) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("owner_id", c.OwnerID).Msg("failed to create content")
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}

	s.logger.Info().Str("id", c.ID).Str("owner_id", c.OwnerID).Msg("content created")
	return c, nil
}

func (s *ContentService) Get(ctx context.Context, requester domain.Claims, id string) (*domain.Content, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.kind.Private() && !requester.CanModify(c.OwnerID) {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

// List pages newest first. Private kinds only ever list the requester's own
// items, except for admins.
func (s *ContentService) List(ctx context.Context, requester domain.Claims, filter ports.ContentFilter, page domain.PageRequest) (domain.Page[*domain.Content], error) {
	if s.kind.Private() && !requester.IsAdmin() {
		filter.OwnerID = requester.SubjectID
	}
	items, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return domain.Page[*domain.Content]{}, fmt.Errorf("list %s: %w", s.kind, err)
	}
	return domain.NewPage(items, total, page), nil
}

// Update applies the non-nil fields. Ownership is checked on read and again
// by the repository's write filter.
func (s *ContentService) Update(ctx context.Context, requester domain.Claims, id string, in ports.ContentInput) (*domain.Content, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanModify(c.OwnerID) {
		return nil, domain.ErrForbidden
	}

	if in.Title != nil {
		c.Title = strings.TrimSpace(*in.Title)
		if s.kind == domain.KindPost {
			c.Slug = domain.Slugify(c.Title)
		}
	}
	if in.Body != nil {
		c.Body = strings.TrimSpace(*in.Body)
	}
	if in.Tags != nil {
		c.Tags = normalizeTags(in.Tags)
	}
	if in.ImageURL != nil {
		c.ImageURL = *in.ImageURL
	}
	if msg := c.Validate(); msg != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, c, ownerScope(requester)); err != nil {
		return nil, s.mutationError(ctx, id, err)
	}
	s.logger.Info().Str("id", id).Str("by", requester.SubjectID).Msg("content updated")
	return c, nil
}

func (s *ContentService) Delete(ctx context.Context, requester domain.Claims, id string) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !requester.CanModify(c.OwnerID) {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id, ownerScope(requester)); err != nil {
		return s.mutationError(ctx, id, err)
	}
	s.logger.Info().Str("id", id).Str("by", requester.SubjectID).Msg("content deleted")

	if s.children != nil {
		n, err := s.children.DeleteByParent(ctx, id)
		if err != nil {
			s.logger.Error().Err(err).Str("id", id).Msg("failed to delete attached content")
			return fmt.Errorf("delete %s children: %w", s.kind, err)
		}
		if n > 0 {
			s.logger.Info().Str("id", id).Int64("count", n).Msg("attached content deleted")
		}
	}
	return nil
}

func (s *ContentService) mutationError(ctx context.Context, id string, err error) error {
	if errors.Is(err, domain.ErrContentNotFound) {
		if _, ferr := s.repo.FindByID(ctx, id); ferr == nil {
			return domain.ErrForbidden
		}
		return err
	}
	if errors.Is(err, domain.ErrDuplicateContent) {
		return err
	}
	return fmt.Errorf("write %s: %w", s.kind, err)
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
