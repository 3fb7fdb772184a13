// Package catalog is the gateway's client for the product service.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/gateway/internal/core/domain"
)

const maxBodyBytes = 1 << 20

// Client implements ports.ProductLookup over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds client configuration. Timeout is a transport-level backstop;
// callers bound each lookup with their own context deadline.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type productResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// GetProduct fetches one product. A 404 maps to domain.ErrProductNotFound;
// every other failure, including a deadline, wraps
// domain.ErrUpstreamUnavailable.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	endpoint := c.baseURL + "/products/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: catalog responded %s", domain.ErrUpstreamUnavailable, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrUpstreamUnavailable, err)
	}

	var p productResponse
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: decode product: %v", domain.ErrUpstreamUnavailable, err)
	}
	if p.ID == "" || p.Price.IsNegative() {
		return nil, fmt.Errorf("%w: catalog returned an invalid product", domain.ErrUpstreamUnavailable)
	}

	return &domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
	}, nil
}
