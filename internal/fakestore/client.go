// Package fakestore is a read-only client for the FakeStore product catalog.
package fakestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/telemetry"
)

// maxResponseBytes bounds how much of a catalog response is read.
const maxResponseBytes = 10 << 20

// ErrProductNotFound is returned by GetProduct for an unknown id.
var ErrProductNotFound = &domain.Error{Code: domain.ENOTFOUND, Message: "FakeStore product not found"}

// Product is a catalog entry as served by FakeStore.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

// Rating is FakeStore's aggregate rating for a product.
type Rating struct {
	Rate  decimal.Decimal `json:"rate"`
	Count int             `json:"count"`
}

// Client calls the FakeStore REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for baseURL. Requests time out after timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid FakeStore base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid FakeStore base URL %q: scheme must be http or https", baseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &telemetry.HTTPTransport{Transport: http.DefaultTransport},
		},
		logger: logger.With("component", "fakestore"),
	}, nil
}

// GetProducts returns the full product catalog.
func (c *Client) GetProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.get(ctx, "products", "products", &products); err != nil {
		return []Product{}, err
	}
	return products, nil
}

// GetProduct returns one product, or ErrProductNotFound.
// FakeStore answers unknown ids with 200 and an empty body.
func (c *Client) GetProduct(ctx context.Context, id int) (*Product, error) {
	if id <= 0 {
		return nil, ErrProductNotFound
	}

	var product *Product
	if err := c.get(ctx, "product", "products/"+strconv.Itoa(id), &product); err != nil {
		return nil, err
	}
	if product == nil || product.ID == 0 {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// GetCategories returns the catalog's category names.
func (c *Client) GetCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.get(ctx, "categories", "products/categories", &categories); err != nil {
		return []string{}, err
	}
	return categories, nil
}

// GetProductsByCategory returns the products of one category.
func (c *Client) GetProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	var products []Product
	path := "products/category/" + url.PathEscape(category)
	if err := c.get(ctx, "products_by_category", path, &products); err != nil {
		return []Product{}, err
	}
	return products, nil
}

// get fetches path relative to the base URL and decodes the JSON body into
// out. Failures are logged and returned as domain.EUNAVAILABLE.
func (c *Client) get(ctx context.Context, endpoint, path string, out any) (err error) {
	op := "fakestore." + endpoint
	start := time.Now()

	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			c.logger.WarnContext(ctx, "FakeStore request failed",
				"endpoint", endpoint,
				"error", err,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}
		if telemetry.Business != nil {
			telemetry.Business.FakeStoreLatency.WithLabelValues(endpoint, result).Observe(time.Since(start).Seconds())
		}
	}()

	ref, err := url.Parse(path)
	if err != nil {
		return domain.Internal(err, op, "failed to build request URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.ResolveReference(ref).String(), nil)
	if err != nil {
		return domain.Internal(err, op, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Unavailable(err, op, "FakeStore is unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.Unavailable(err, op, "failed to read FakeStore response")
	}

	if resp.StatusCode == http.StatusNotFound && endpoint == "product" {
		return ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Unavailable(
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200)),
			op, "FakeStore returned an error",
		)
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.Unavailable(err, op, "failed to parse FakeStore response")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// IsNotFound reports whether err means the requested product does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}
