package catalog

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

	"catalog-skill/internal/domain"
)

const defaultBaseURL = "https://app.salsify.com/api"

// HTTPStatusError captures catalog responses outside the accepted statuses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("catalog: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// searchResponse is the minimal response shape of the filter search endpoint.
// Each item carries only an identifier; the full record requires a follow-up
// by-id fetch.
type searchResponse struct {
	Products []searchItem `json:"products"`
}

type searchItem struct {
	ID flexibleID `json:"id"`
}

// flexibleID accepts catalog identifiers serialized as either JSON strings or
// numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("catalog: product id is neither string nor number: %s", data)
	}
	*f = flexibleID(n.String())
	return nil
}

// Client issues read-only queries against the product catalog API. Each call
// performs exactly one outbound request; there are no retries. The caller's
// access token is supplied per request, never held by the client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	return c
}

func productURL(baseURL, productID, accessToken string) string {
	return fmt.Sprintf("%s/v1/products/%s?access_token=%s",
		strings.TrimRight(baseURL, "/"), url.PathEscape(productID), url.QueryEscape(accessToken))
}

func searchURL(baseURL, query string) string {
	return strings.TrimRight(baseURL, "/") + "/products?" + query
}

// GetProduct fetches the full attribute record for one product id.
func (c *Client) GetProduct(ctx context.Context, productID, accessToken string) (domain.ProductRecord, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, errors.New("catalog: product id must not be empty")
	}

	raw, err := c.doGet(ctx, productURL(c.baseURL, productID, accessToken))
	if err != nil {
		return nil, err
	}

	var record domain.ProductRecord
	if decErr := json.Unmarshal(raw, &record); decErr != nil {
		return nil, fmt.Errorf("catalog: decode product response: %w", decErr)
	}
	return record, nil
}

// Search runs a filter query and returns candidate product ids in the order
// the catalog returned them. The query is the serialized filter expression
// built by the accumulator, token included.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("catalog: search query must not be empty")
	}

	raw, err := c.doGet(ctx, searchURL(c.baseURL, query))
	if err != nil {
		return nil, err
	}

	var payload searchResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return nil, fmt.Errorf("catalog: decode search response: %w", decErr)
	}

	ids := make([]string, 0, len(payload.Products))
	for _, item := range payload.Products {
		ids = append(ids, string(item.ID))
	}
	return ids, nil
}

func (c *Client) doGet(ctx context.Context, requestURL string) ([]byte, error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if reqErr != nil {
		return nil, fmt.Errorf("catalog: create request: %w", reqErr)
	}
	req.Header.Set("Accept", "application/json")

	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, fmt.Errorf("catalog: request failed: %w", doErr)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusNotModified {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        requestURL,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("catalog: read response body: %w", err)
	}
	return buf, nil
}

// resolvedHTTPClient returns the configured HTTP client, or a default with a
// 10s timeout if none was set.
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
