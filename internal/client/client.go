// =============================================================================
// Price Export - Remote Catalog Client
// =============================================================================
//
// This module talks to the product-information service. Two reads are
// supported:
//
//   GET <base>/products/<productID>
//   GET <base>/stores/<storeID>/products/<productID>/inventory
//
// Both answer {"result": {...}} on success. Any non-200 status is treated as
// "not found": a warning is logged and the caller gets a sentinel (ErrNotFound
// for products, quantity 0 for inventory). Transport failures and bodies that
// cannot be decoded are returned as errors.
//
// Requests are sequential and never retried.
//
// =============================================================================

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Standard error types
var (
	ErrNotFound     = errors.New("not found")
	ErrHTTPRequest  = errors.New("HTTP request error")
	ErrHTTPResponse = errors.New("HTTP response error")
)

// HTTPDoer is a minimal interface for HTTP clients
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// StatusError carries the URL and status of a non-success response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.URL, e.Status)
}

// Unwrap lets errors.Is(err, ErrNotFound) match.
func (e *StatusError) Unwrap() error { return ErrNotFound }

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ProductAttributes are the fields of a product the export uses.
// Absent numeric fields decode as zero.
type ProductAttributes struct {
	Name                *string         `json:"name"`
	PriceInCents        decimal.Decimal `json:"price_in_cents"`
	RegularPriceInCents decimal.Decimal `json:"regular_price_in_cents"`
	PackageVolumeML     decimal.Decimal `json:"package_unit_volume_in_milliliters"`
	PricePerLiterCents  decimal.Decimal `json:"price_per_liter_in_cents"`
}

// inventory keeps quantity raw so that 3, 3.0 and "3" all decode.
type inventory struct {
	Quantity json.RawMessage `json:"quantity"`
}

type envelope[T any] struct {
	Result *T `json:"result"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client reads products and inventory from the remote service.
type Client struct {
	baseURL string
	doer    HTTPDoer
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.doer = doer }
}

// WithLogger sets the logger used for not-found warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
// Zero leaves requests unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.doer = &http.Client{Timeout: timeout} }
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    http.DefaultClient,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProductURL returns the product endpoint for productID.
func (c *Client) ProductURL(productID string) string {
	return c.baseURL + "/products/" + url.PathEscape(productID)
}

// InventoryURL returns the inventory endpoint for a store/product pair.
func (c *Client) InventoryURL(storeID, productID string) string {
	return c.baseURL + "/stores/" + url.PathEscape(storeID) +
		"/products/" + url.PathEscape(productID) + "/inventory"
}

// FetchProduct returns the attributes of productID.
//
// A non-200 response logs a warning and returns an error wrapping
// ErrNotFound. The result field missing from a 200 response is treated the
// same way.
func (c *Client) FetchProduct(ctx context.Context, productID string) (*ProductAttributes, error) {
	u := c.ProductURL(productID)

	var body envelope[ProductAttributes]
	if err := c.get(ctx, u, &body); err != nil {
		return nil, err
	}
	if body.Result == nil {
		c.warnNotFound(u, http.StatusOK)
		return nil, &StatusError{URL: u, Status: http.StatusOK}
	}
	return body.Result, nil
}

// FetchStoreQuantity returns the on-hand quantity of productID at storeID.
//
// A non-200 response, a missing result or a quantity that is not a number
// logs a warning and yields 0 with a nil error; only transport failures and
// bodies that are not JSON are returned.
func (c *Client) FetchStoreQuantity(ctx context.Context, storeID, productID string) (int, error) {
	u := c.InventoryURL(storeID, productID)

	var body envelope[inventory]
	if err := c.get(ctx, u, &body); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if body.Result == nil {
		c.warnNotFound(u, http.StatusOK)
		return 0, nil
	}
	return c.quantity(u, body.Result.Quantity), nil
}

// quantity converts a raw quantity to an int, truncating fractions.
// An absent or null quantity is 0.
func (c *Client) quantity(u string, raw json.RawMessage) int {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	d, err := decimal.NewFromString(strings.Trim(string(raw), `"`))
	if err != nil {
		c.logger.Warn("inventory quantity is not a number, using 0",
			zap.String("url", u),
			zap.String("quantity", string(raw)))
		return 0
	}
	return int(d.IntPart())
}

// get issues a GET and decodes a 200 body into out.
func (c *Client) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrHTTPRequest, u, err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("GET", zap.String("url", u))

	resp, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrHTTPRequest, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		io.Copy(io.Discard, resp.Body)
		c.warnNotFound(u, resp.StatusCode)
		return &StatusError{URL: u, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: failed to decode body: %w", ErrHTTPResponse, u, err)
	}
	return nil
}

func (c *Client) warnNotFound(u string, status int) {
	c.logger.Warn("request didn't return anything useful, check the IDs",
		zap.String("url", u),
		zap.Int("status", status))
}
