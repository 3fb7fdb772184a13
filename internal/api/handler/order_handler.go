package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
)

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// --- Request / Response types ---

// createOrderRequest has no price fields; any sent by the client are ignored.
type createOrderRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"required,gt=0"`
}

type updateOrderRequest struct {
	Quantity *int    `json:"quantity" validate:"omitempty,gt=0"`
	Status   *string `json:"status"   validate:"omitempty,oneof=pending confirmed shipped delivered cancelled"`
}

type orderResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	ProductID  string          `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"  swaggertype:"string" example:"19.99"`
	TotalPrice decimal.Decimal `json:"total_price" swaggertype:"string" example:"59.97"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		ProductID:  o.ProductID,
		Quantity:   o.Quantity,
		UnitPrice:  o.UnitPrice,
		TotalPrice: o.TotalPrice,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

// Create handles POST /orders.
//
// @Summary      Place an order
// @Description  The price is resolved from the catalog service; clients never supply it.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOrderRequest  true  "Order details"
// @Success      201   {object}  orderResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	claims, err := requester(c)
	if err != nil {
		return err
	}
	var req createOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.service.CreateOrder(c.Request().Context(), claims, ports.CreateOrderInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toOrderResponse(order))
}

// List handles GET /orders.
//
// @Summary      List orders
// @Description  Admins see every order; other users see their own.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int  false  "Page number"     default(1)
// @Param        per_page  query     int  false  "Items per page"  default(10)
// @Success      200       {object}  pageResponse[orderResponse]
// @Failure      401       {object}  errorResponse
// @Router       /orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	claims, err := requester(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListOrders(c.Request().Context(), claims, pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(c, page, toOrderResponse))
}

// Get handles GET /orders/:id.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  orderResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	claims, err := requester(c)
	if err != nil {
		return err
	}
	order, err := h.service.GetOrder(c.Request().Context(), claims, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// Update handles PUT /orders/:id.
//
// @Summary      Update an order
// @Description  Only quantity and status may change; the total is recomputed server-side.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Order ID"
// @Param        body  body      updateOrderRequest  true  "Fields to change"
// @Success      200   {object}  orderResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /orders/{id} [put]
func (h *OrderHandler) Update(c echo.Context) error {
	claims, err := requester(c)
	if err != nil {
		return err
	}
	var req updateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := ports.UpdateOrderInput{Quantity: req.Quantity}
	if req.Status != nil {
		status := domain.OrderStatus(*req.Status)
		in.Status = &status
	}
	order, err := h.service.UpdateOrder(c.Request().Context(), claims, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// Delete handles DELETE /orders/:id.
//
// @Summary      Delete an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /orders/{id} [delete]
func (h *OrderHandler) Delete(c echo.Context) error {
	claims, err := requester(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteOrder(c.Request().Context(), claims, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "order deleted"})
}
