package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
	"github.com/storefront/gateway/internal/pkg/metrics"
)

const DefaultLookupTimeout = 3 * time.Second

// OrderService prices orders against the catalog and persists them.
type OrderService struct {
	repo          ports.OrderRepository
	products      ports.ProductLookup
	lookupTimeout time.Duration
	logger        zerolog.Logger
}

func NewOrderService(repo ports.OrderRepository, products ports.ProductLookup, lookupTimeout time.Duration, logger zerolog.Logger) *OrderService {
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}
	return &OrderService{repo: repo, products: products, lookupTimeout: lookupTimeout, logger: logger}
}

// CreateOrder validates the input, resolves the unit price from the catalog,
// and stores a pending order. The lookup completes before anything is
// written, so a failed lookup never leaves a row behind.
func (s *OrderService) CreateOrder(ctx context.Context, requester domain.Claims, in ports.CreateOrderInput) (*domain.Order, error) {
	if in.ProductID == "" {
		return nil, fmt.Errorf("%w: product_id is required", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", domain.ErrInvalidInput)
	}

	product, err := s.lookup(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		UserID:     requester.SubjectID,
		ProductID:  product.ID,
		Quantity:   in.Quantity,
		UnitPrice:  product.Price,
		TotalPrice: domain.OrderTotal(product.Price, in.Quantity),
		Status:     domain.OrderPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("user_id", requester.SubjectID).Str("product_id", in.ProductID).Msg("failed to create order")
		return nil, fmt.Errorf("create order: %w", err)
	}

	metrics.OrdersCreatedTotal.Inc()
	s.logger.Info().
		Str("order_id", order.ID).
		Str("user_id", order.UserID).
		Str("product_id", order.ProductID).
		Str("total", order.TotalPrice.StringFixed(2)).
		Msg("order created")

	return order, nil
}

func (s *OrderService) lookup(ctx context.Context, productID string) (*domain.Product, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	start := time.Now()
	product, err := s.products.GetProduct(lookupCtx, productID)
	elapsed := time.Since(start).Seconds()

	switch {
	case err == nil:
		metrics.ProductLookupDuration.WithLabelValues("ok").Observe(elapsed)
		return product, nil
	case errors.Is(err, domain.ErrProductNotFound):
		metrics.ProductLookupDuration.WithLabelValues("not_found").Observe(elapsed)
		return nil, fmt.Errorf("create order: %w", domain.ErrProductNotFound)
	default:
		metrics.ProductLookupDuration.WithLabelValues("error").Observe(elapsed)
		s.logger.Warn().Err(err).Str("product_id", productID).Msg("product lookup failed")
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
}

// GetOrder returns the order if the requester owns it or is an admin.
func (s *OrderService) GetOrder(ctx context.Context, requester domain.Claims, id string) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanModify(order.UserID) {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// ListOrders pages through every order for admins and through the
// requester's own orders otherwise.
func (s *OrderService) ListOrders(ctx context.Context, requester domain.Claims, page domain.PageRequest) (domain.Page[*domain.Order], error) {
	filter := ports.OrderFilter{}
	if !requester.IsAdmin() {
		filter.UserID = requester.SubjectID
	}

	items, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return domain.Page[*domain.Order]{}, fmt.Errorf("list orders: %w", err)
	}
	return domain.NewPage(items, total, page), nil
}

// UpdateOrder applies quantity and status changes. The total is recomputed
// from the unit price captured at creation.
func (s *OrderService) UpdateOrder(ctx context.Context, requester domain.Claims, id string, in ports.UpdateOrderInput) (*domain.Order, error) {
	if in.Quantity == nil && in.Status == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	if in.Quantity != nil && *in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", domain.ErrInvalidInput)
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *in.Status)
	}

	order, err := s.GetOrder(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	if in.Quantity != nil {
		order.Quantity = *in.Quantity
		order.TotalPrice = domain.OrderTotal(order.UnitPrice, order.Quantity)
	}
	if in.Status != nil {
		order.Status = *in.Status
	}
	order.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, order, ownerScope(requester)); err != nil {
		return nil, s.mutationError(ctx, "update", requester, id, err)
	}

	s.logger.Info().Str("order_id", id).Str("by", requester.SubjectID).Msg("order updated")
	return order, nil
}

// DeleteOrder removes the order if the requester owns it or is an admin.
func (s *OrderService) DeleteOrder(ctx context.Context, requester domain.Claims, id string) error {
	if _, err := s.GetOrder(ctx, requester, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, ownerScope(requester)); err != nil {
		return s.mutationError(ctx, "delete", requester, id, err)
	}
	s.logger.Info().Str("order_id", id).Str("by", requester.SubjectID).Msg("order deleted")
	return nil
}

// mutationError reports a write whose owner filter no longer matched. The
// row existed a moment ago, so either it was deleted or it changed hands.
func (s *OrderService) mutationError(ctx context.Context, op string, requester domain.Claims, id string, err error) error {
	if errors.Is(err, domain.ErrOrderNotFound) {
		if _, ferr := s.repo.FindByID(ctx, id); ferr == nil {
			return domain.ErrForbidden
		}
		return err
	}
	s.logger.Error().Err(err).Str("order_id", id).Str("by", requester.SubjectID).Msgf("failed to %s order", op)
	return fmt.Errorf("%s order: %w", op, err)
}

// ownerScope is the owner a write must still match: none for admins.
func ownerScope(requester domain.Claims) string {
	if requester.IsAdmin() {
		return ""
	}
	return requester.SubjectID
}
