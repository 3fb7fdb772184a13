package handler

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/storefront/gateway/internal/api/middleware"
	"github.com/storefront/gateway/internal/core/domain"
)

// bindAndValidate decodes the body into req and runs the validator tags.
// Unknown JSON fields are ignored, so server-owned fields can never be set.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	return c.Validate(req)
}

// requester returns the authenticated principal. Routes using it sit behind
// middleware.Authenticate, so a miss means the route was wired without it.
func requester(c echo.Context) (domain.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return domain.Claims{}, domain.ErrUnauthenticated
	}
	return claims, nil
}

// pageRequest reads ?page= and ?per_page=. Missing or malformed values fall
// back to the defaults; out-of-range values are clamped.
func pageRequest(c echo.Context) domain.PageRequest {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	return domain.NewPageRequest(page, perPage)
}

type pageLinks struct {
	Prev string `json:"prev,omitempty"`
	Next string `json:"next,omitempty"`
}

// pageResponse is the pagination envelope shared by every listing.
type pageResponse[T any] struct {
	Items       []T       `json:"items"`
	Total       int64     `json:"total"`
	Pages       int       `json:"pages"`
	CurrentPage int       `json:"current_page"`
	PerPage     int       `json:"per_page"`
	Links       pageLinks `json:"links"`
}

// newPageResponse converts p and builds prev/next links on the request path,
// keeping every other query parameter.
func newPageResponse[T, U any](c echo.Context, p domain.Page[T], fn func(T) U) pageResponse[U] {
	mapped := domain.MapPage(p, fn)
	resp := pageResponse[U]{
		Items:       mapped.Items,
		Total:       mapped.Total,
		Pages:       mapped.TotalPages,
		CurrentPage: mapped.CurrentPage,
		PerPage:     mapped.PerPage,
	}
	if p.HasPrev() {
		resp.Links.Prev = pageLink(c, p.CurrentPage-1, p.PerPage)
	}
	if p.HasNext() {
		resp.Links.Next = pageLink(c, p.CurrentPage+1, p.PerPage)
	}
	return resp
}

func pageLink(c echo.Context, page, perPage int) string {
	q := url.Values{}
	for k, v := range c.QueryParams() {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return c.Request().URL.Path + "?" + q.Encode()
}

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}
