package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
)

// ContentHandler serves one owned-content kind. The router mounts one
// instance per kind under its plural path.
type ContentHandler struct {
	service ports.ContentService
}

func NewContentHandler(service ports.ContentService) *ContentHandler {
	return &ContentHandler{service: service}
}

// Kind is the content kind this handler serves.
func (h *ContentHandler) Kind() domain.ContentKind {
	return h.service.Kind()
}

type contentRequest struct {
	Title    *string  `json:"title"     validate:"omitempty,max=200"`
	Body     *string  `json:"body"      validate:"omitempty,max=10000"`
	Tags     []string `json:"tags"      validate:"omitempty,max=20,dive,max=40"`
	ImageURL *string  `json:"image_url" validate:"omitempty,url"`
	PostID   string   `json:"post_id"`
}

func (r contentRequest) toInput() ports.ContentInput {
	return ports.ContentInput{
		Title:    r.Title,
		Body:     r.Body,
		Tags:     r.Tags,
		ImageURL: r.ImageURL,
		ParentID: r.PostID,
	}
}

type contentResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body"`
	Slug      string    `json:"slug,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	PostID    string    `json:"post_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toContentResponse(c *domain.Content) contentResponse {
	return contentResponse{
		ID:        c.ID,
		Kind:      string(c.Kind),
		OwnerID:   c.OwnerID,
		Title:     c.Title,
		Body:      c.Body,
		Slug:      c.Slug,
		Tags:      c.Tags,
		ImageURL:  c.ImageURL,
		PostID:    c.ParentID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Create handles POST /{kind}.
//
// @Summary      Create owned content
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Security     BasicAuth
// @Param        kind  path      string          true  "Content collection"  Enums(quotes, posts, comments, notes)
// @Param        body  body      contentRequest  true  "Content fields"
// @Success      201   {object}  contentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /{kind} [post]
func (h *ContentHandler) Create(c echo.Context) error {
	claims, err := requester(c)
	if err != nil {
		return err
	}
	var req contentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.service.Create(c.Request().Context(), claims, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toContentResponse(item))
}

// List handles GET /{kind}.
//
// @Summary      List owned content
// @Description  Newest first. Filter by owner, and comments by post. Notes
// @Description  only list the caller's own unless the caller is an admin.
// @Tags         content
// @Produce      json
// @Security     BearerAuth
// @Security     BasicAuth
// @Param        kind      path      string  true   "Content collection"  Enums(quotes, posts, comments, notes)
// @Param        owner     query     string  false  "Owner id"
// @Param        post_id   query     string  false  "Post id (comments only)"
// @Param        page      query     int     false  "Page number"     default(1)
// @Param        per_page  query     int     false  "Items per page"  default(10)
// @Success      200       {object}  pageResponse[contentResponse]
// @Failure      401       {object}  errorResponse
// @Router       /{kind} [get]
func (h *ContentHandler) List(c echo.Context) error {
	claims, err := requester(c)
	if err != nil {
		return err
	}
	filter := ports.ContentFilter{OwnerID: c.QueryParam("owner")}
	if h.service.Kind() == domain.KindComment {
		filter.ParentID = c.QueryParam("post_id")
	}

	page, err := h.service.List(c.Request().Context(), claims, filter, pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(c, page, toContentResponse))
}

// Get handles GET /{kind}/:id.
//
// @Summary      Get owned content
// @Tags         content
// @Produce      json
// @Security     BearerAuth
// @Security     BasicAuth
// @Param        kind  path      string  true  "Content collection"  Enums(quotes, posts, comments, notes)
// @Param        id    path      string  true  "Content ID"
// @Success      200   {object}  contentResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /{kind}/{id} [get]
func (h *ContentHandler) Get(c echo.Context) error {
	claims, err := requester(c)
	if err != nil {
		return err
	}
	item, err := h.service.Get(c.Request().Context(), claims, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContentResponse(item))
}

// Update handles PUT /{kind}/:id.
//
// @Summary      Update owned content
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Security     BasicAuth
// @Param        kind  path      string          true  "Content collection"  Enums(quotes, posts, comments, notes)
// @Param        id    path      string          true  "Content ID"
// @Param        body  body      contentRequest  true  "Fields to change"
// @Success      200   {object}  contentResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /{kind}/{id} [put]
func (h *ContentHandler) Update(c echo.Context) error {
	claims, err := requester(c)
	if err != nil {
		return err
	}
	var req contentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.service.Update(c.Request().Context(), claims, c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContentResponse(item))
}

// Delete handles DELETE /{kind}/:id.
//
// @Summary      Delete owned content
// @Tags         content
// @Produce      json
// @Security     BearerAuth
// @Security     BasicAuth
// @Param        kind  path      string  true  "Content collection"  Enums(quotes, posts, comments, notes)
// @Param        id    path      string  true  "Content ID"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /{kind}/{id} [delete]
func (h *ContentHandler) Delete(c echo.Context) error {
	claims, err := requester(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), claims, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: string(h.service.Kind()) + " deleted"})
}
