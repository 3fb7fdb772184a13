package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/storefront/gateway/internal/api/middleware"
	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
)

type stubOrderService struct {
	createFn func(ctx context.Context, requester domain.Claims, in ports.CreateOrderInput) (*domain.Order, error)
	getFn    func(ctx context.Context, requester domain.Claims, id string) (*domain.Order, error)
	listFn   func(ctx context.Context, requester domain.Claims, page domain.PageRequest) (domain.Page[*domain.Order], error)
	updateFn func(ctx context.Context, requester domain.Claims, id string, in ports.UpdateOrderInput) (*domain.Order, error)
	deleteFn func(ctx context.Context, requester domain.Claims, id string) error
}

func (s *stubOrderService) CreateOrder(ctx context.Context, r domain.Claims, in ports.CreateOrderInput) (*domain.Order, error) {
	return s.createFn(ctx, r, in)
}

func (s *stubOrderService) GetOrder(ctx context.Context, r domain.Claims, id string) (*domain.Order, error) {
	return s.getFn(ctx, r, id)
}

func (s *stubOrderService) ListOrders(ctx context.Context, r domain.Claims, p domain.PageRequest) (domain.Page[*domain.Order], error) {
	return s.listFn(ctx, r, p)
}

func (s *stubOrderService) UpdateOrder(ctx context.Context, r domain.Claims, id string, in ports.UpdateOrderInput) (*domain.Order, error) {
	return s.updateFn(ctx, r, id, in)
}

func (s *stubOrderService) DeleteOrder(ctx context.Context, r domain.Claims, id string) error {
	return s.deleteFn(ctx, r, id)
}

var alice = domain.Claims{SubjectID: "u1", Username: "alice", Role: domain.RoleUser}

func TestOrderHandler_Create_IgnoresClientPrices(t *testing.T) {
	e := newTestEcho()
	h := NewOrderHandler(&stubOrderService{
		createFn: func(_ context.Context, r domain.Claims, in ports.CreateOrderInput) (*domain.Order, error) {
			if r.SubjectID != "u1" || in.ProductID != "p1" || in.Quantity != 3 {
				t.Fatalf("unexpected call: %+v %+v", r, in)
			}
			unit := decimal.RequireFromString("19.99")
			return &domain.Order{ID: "o1", UserID: "u1", ProductID: "p1", Quantity: 3, UnitPrice: unit, TotalPrice: domain.OrderTotal(unit, 3), Status: domain.OrderPending}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/orders", `{"product_id":"p1","quantity":3,"total_price":"0.01","unit_price":"0.01"}`), rec)
	middleware.SetClaims(c, alice)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["total_price"] != "59.97" || resp["unit_price"] != "19.99" || resp["status"] != "pending" {
		t.Fatalf("unexpected order payload: %v", resp)
	}
}

func TestOrderHandler_Create_Validation(t *testing.T) {
	for name, body := range map[string]string{
		"zero quantity":     `{"product_id":"p1","quantity":0}`,
		"negative quantity": `{"product_id":"p1","quantity":-2}`,
		"missing product":   `{"quantity":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			e := newTestEcho()
			h := NewOrderHandler(&stubOrderService{})
			c := e.NewContext(jsonRequest(http.MethodPost, "/orders", body), httptest.NewRecorder())
			middleware.SetClaims(c, alice)
			if err := h.Create(c); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestOrderHandler_Update(t *testing.T) {
	e := newTestEcho()
	var got ports.UpdateOrderInput
	h := NewOrderHandler(&stubOrderService{
		updateFn: func(_ context.Context, _ domain.Claims, id string, in ports.UpdateOrderInput) (*domain.Order, error) {
			got = in
			return &domain.Order{ID: id, Quantity: *in.Quantity, Status: *in.Status}, nil
		},
	})

	c := e.NewContext(jsonRequest(http.MethodPut, "/orders/o1", `{"quantity":5,"status":"shipped"}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("o1")
	middleware.SetClaims(c, alice)
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Quantity == nil || *got.Quantity != 5 || got.Status == nil || *got.Status != domain.OrderShipped {
		t.Fatalf("unexpected input: %+v", got)
	}

	c = e.NewContext(jsonRequest(http.MethodPut, "/orders/o1", `{"status":"teleported"}`), httptest.NewRecorder())
	middleware.SetClaims(c, alice)
	if err := h.Update(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown status, got %v", err)
	}
}

func TestOrderHandler_List_PageEnvelope(t *testing.T) {
	e := newTestEcho()
	h := NewOrderHandler(&stubOrderService{
		listFn: func(_ context.Context, _ domain.Claims, p domain.PageRequest) (domain.Page[*domain.Order], error) {
			if p.Page != 2 || p.PerPage != 5 {
				t.Fatalf("unexpected page request %+v", p)
			}
			items := []*domain.Order{{ID: "o6"}, {ID: "o7"}}
			return domain.NewPage(items, 12, p), nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/orders?page=2&per_page=5", nil), rec)
	middleware.SetClaims(c, alice)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp pageResponse[orderResponse]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != 12 || resp.Pages != 3 || resp.CurrentPage != 2 || resp.PerPage != 5 || len(resp.Items) != 2 {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Links.Prev != "/orders?page=1&per_page=5" || resp.Links.Next != "/orders?page=3&per_page=5" {
		t.Fatalf("unexpected links: %+v", resp.Links)
	}
}

func TestOrderHandler_PropagatesServiceErrors(t *testing.T) {
	e := newTestEcho()
	h := NewOrderHandler(&stubOrderService{
		getFn: func(context.Context, domain.Claims, string) (*domain.Order, error) {
			return nil, domain.ErrForbidden
		},
		deleteFn: func(context.Context, domain.Claims, string) error {
			return domain.ErrOrderNotFound
		},
	})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/orders/o1", nil), httptest.NewRecorder())
	middleware.SetClaims(c, alice)
	if err := h.Get(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/orders/o1", nil), httptest.NewRecorder())
	middleware.SetClaims(c, alice)
	if err := h.Delete(c); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
