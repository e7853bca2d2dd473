// Package hyp3 provides access to the HyP3 subscription catalog and the ASF
// search API used to refine product selections.
package hyp3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	internalhttp "github.com/example/go-hyp3/hyp3/internal/http"
	"github.com/example/go-hyp3/hyp3/model"
	"github.com/example/go-hyp3/hyp3/search"
)

const (
	defaultAPIURL    = "https://api.hyp3.asf.alaska.edu"
	defaultSearchURL = "https://api.daac.asf.alaska.edu"

	// productPageSize is the page size used when walking the products
	// endpoint. HyP3 caps pages at 100 entries.
	productPageSize = 100
)

var (
	// ErrNilClient is returned when methods are invoked on a nil Client pointer.
	ErrNilClient = errors.New("hyp3: nil client")
	// ErrNoSubscriptions indicates the account has no enabled subscriptions.
	ErrNoSubscriptions = errors.New("hyp3: no enabled subscriptions")
)

// Client provides access to HyP3 subscription, product, and granule search
// endpoints.
type Client struct {
	apiURL    string
	searchURL string
	session   *Session
	retry     internalhttp.RetryPolicy
	logger    *slog.Logger
}

// NewClient creates a Client with sensible defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		apiURL:    defaultAPIURL,
		searchURL: defaultSearchURL,
		session:   NewSession(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.session == nil {
		c.session = NewSession()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Subscriptions lists subscriptions registered with the HyP3 account. When
// enabledOnly is set, disabled subscriptions are filtered out server-side.
func (c *Client) Subscriptions(ctx context.Context, enabledOnly bool) ([]model.Subscription, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	endpoint, err := c.endpoint(c.apiURL, "subscriptions")
	if err != nil {
		return nil, err
	}
	if enabledOnly {
		q := url.Values{}
		q.Set("enabled", "true")
		endpoint.RawQuery = q.Encode()
	}

	var payload model.SubscriptionsResponse
	if err := c.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}
	return payload.Subscriptions, nil
}

// ProductPage fetches a single page of products for the given subscription.
// Pages are zero-based; an empty slice marks the end of the listing.
func (c *Client) ProductPage(ctx context.Context, subID, page, pageSize int) ([]model.Product, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	if pageSize <= 0 {
		pageSize = productPageSize
	}
	endpoint, err := c.endpoint(c.apiURL, "products")
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("sub_id", strconv.Itoa(subID))
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	endpoint.RawQuery = q.Encode()

	var payload model.ProductsResponse
	if err := c.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}
	return payload.Products, nil
}

// Products walks every product page for the subscription and returns the
// combined listing.
func (c *Client) Products(ctx context.Context, subID int) ([]model.Product, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	var products []model.Product
	for page := 0; ; page++ {
		batch, err := c.ProductPage(ctx, subID, page, productPageSize)
		if err != nil {
			return nil, fmt.Errorf("hyp3: products page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}
		products = append(products, batch...)
	}
	c.logger.Debug("listed products", "sub_id", subID, "count", len(products))
	return products, nil
}

// ProductIterator returns a streaming iterator over the subscription's
// product pages.
func (c *Client) ProductIterator(subID int) *ProductIterator {
	return newProductIterator(c, subID, productPageSize)
}

// GranuleSearch queries the ASF search API with the supplied parameters and
// returns the matching scenes. Filters use it to verify flight direction and
// relative orbit, which the HyP3 catalog does not expose directly.
func (c *Client) GranuleSearch(ctx context.Context, params search.Params) ([]search.Result, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	endpoint, err := c.endpoint(c.searchURL, "services/search/param")
	if err != nil {
		return nil, err
	}
	values, err := params.Encode()
	if err != nil {
		return nil, fmt.Errorf("hyp3: encode search params: %w", err)
	}
	endpoint.RawQuery = values.Encode()

	var payload search.Response
	if err := c.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// GranuleExists reports whether a granule matches the given search filters.
func (c *Client) GranuleExists(ctx context.Context, granule string, params search.Params) (bool, error) {
	params.GranuleList = []string{granule}
	results, err := c.GranuleSearch(ctx, params)
	if err != nil {
		return false, err
	}
	return len(results) > 0, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v interface{}) error {
	if c.session == nil {
		return fmt.Errorf("hyp3: client missing session")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("hyp3: create request: %w", err)
	}
	if c.session.authenticator != nil {
		if err := c.session.authenticator.Authenticate(req); err != nil {
			return fmt.Errorf("hyp3: authenticate request: %w", err)
		}
	}
	resp, err := internalhttp.Do(ctx, c.session.client, req, c.retry)
	if err != nil {
		return fmt.Errorf("hyp3: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hyp3: %w", internalhttp.HTTPError(resp))
	}
	if err := internalhttp.DecodeJSON(resp.Body, v); err != nil {
		return fmt.Errorf("hyp3: %w", err)
	}
	return nil
}

func (c *Client) endpoint(base string, elems ...string) (*url.URL, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("hyp3: invalid base URL: %w", err)
	}
	u.Path = joinURLPath(u.Path, elems...)
	return u, nil
}

func joinURLPath(basePath string, elems ...string) string {
	parts := make([]string, 0, len(elems)+1)
	trimmedBase := strings.Trim(basePath, "/")
	if trimmedBase != "" {
		parts = append(parts, trimmedBase)
	}
	for _, elem := range elems {
		trimmed := strings.Trim(elem, "/")
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return "/" + path.Join(parts...)
}
