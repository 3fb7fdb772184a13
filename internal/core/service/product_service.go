package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
)

// ProductService manages the catalog.
type ProductService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context, page domain.PageRequest) (domain.Page[*domain.Product], error) {
	items, total, err := s.repo.List(ctx, page)
	if err != nil {
		return domain.Page[*domain.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return domain.NewPage(items, total, page), nil
}

func (s *ProductService) CreateProduct(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if in.Price == nil {
		return nil, fmt.Errorf("%w: price is required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	p := &domain.Product{
		Name:      strings.TrimSpace(*in.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyProductInput(p, in); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.logger.Info().Str("product_id", p.ID).Str("price", p.Price.String()).Msg("product created")
	return p, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ports.ProductInput) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if err := applyProductInput(p, in); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.logger.Info().Str("product_id", id).Msg("product updated")
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func applyProductInput(p *domain.Product, in ports.ProductInput) error {
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return fmt.Errorf("%w: price cannot be negative", domain.ErrInvalidInput)
		}
		p.Price = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return fmt.Errorf("%w: stock cannot be negative", domain.ErrInvalidInput)
		}
		p.Stock = *in.Stock
	}
	return nil
}
