package dummyjson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/five82/shelf/internal/product"
)

// Catalog is the read side of the remote API used by the reconciler.
type Catalog interface {
	FetchProducts(ctx context.Context, query ProductQuery) ([]product.Product, error)
	FetchCategories(ctx context.Context) ([]product.Category, error)
	FetchProduct(ctx context.Context, id product.ID) (product.Product, error)
}

// ProductWriter is the remote mutation side of the API.
type ProductWriter interface {
	AddProduct(ctx context.Context, p product.Product) (product.Product, error)
	UpdateProduct(ctx context.Context, id product.ID, patch product.Patch) (product.Product, error)
	DeleteProduct(ctx context.Context, id product.ID) error
}

// Authenticator logs users in and lists known users.
type Authenticator interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	FetchUsers(ctx context.Context) ([]User, error)
}

// Ensure Client implements the interfaces at compile time.
var (
	_ Catalog       = (*Client)(nil)
	_ ProductWriter = (*Client)(nil)
	_ Authenticator = (*Client)(nil)
)

// Client talks to the remote catalog/auth HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
}

const (
	DefaultBaseURL   = "https://dummyjson.com"
	defaultUserAgent = "shelf/0.1"
	requestTimeout   = 10 * time.Second
)

// ErrDecode marks responses whose body could not be decoded.
var ErrDecode = errors.New("decode response")

// APIError is returned for non-2xx responses.
type APIError struct {
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
}

// IsTransport reports whether err is a network-level failure rather than a
// response the server actually sent.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	return !errors.As(err, &apiErr) && !errors.Is(err, ErrDecode)
}

// Option customizes a Client.
type Option func(*Client)

// WithRateLimit paces outgoing requests to rps with a burst of the same size.
// Zero or negative disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient builds a Client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ProductQuery selects a remote product listing.
type ProductQuery struct {
	Category string // "all" or empty lists everything
	SortBy   string
	Order    string // asc or desc
	Limit    int    // 0 asks for the full catalog
}

// FetchProducts lists products, letting the API filter by category and sort.
func (c *Client) FetchProducts(ctx context.Context, query ProductQuery) ([]product.Product, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("limit", strconv.Itoa(max(query.Limit, 0)))
	if sortBy := strings.TrimSpace(query.SortBy); sortBy != "" {
		values.Set("sortBy", sortBy)
		order := strings.ToLower(strings.TrimSpace(query.Order))
		if order != "desc" {
			order = "asc"
		}
		values.Set("order", order)
	}

	path := "/products"
	if category := strings.TrimSpace(query.Category); category != "" && category != product.AllCategories {
		path = "/products/category/" + url.PathEscape(category)
	}

	rel := &url.URL{Path: path, RawQuery: values.Encode()}
	var payload ProductListResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Products, nil
}

// SearchProducts runs the API's own full-text search.
func (c *Client) SearchProducts(ctx context.Context, q string) ([]product.Product, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("q", strings.TrimSpace(q))
	rel := &url.URL{Path: "/products/search", RawQuery: values.Encode()}
	var payload ProductListResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Products, nil
}

// FetchCategories retrieves the category list in either of its shapes.
func (c *Client) FetchCategories(ctx context.Context) ([]product.Category, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []product.Category
	if err := c.do(ctx, http.MethodGet, "/products/categories", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchProduct retrieves one remote product.
func (c *Client) FetchProduct(ctx context.Context, id product.ID) (product.Product, error) {
	if c == nil {
		return product.Product{}, fmt.Errorf("client is nil")
	}
	if _, ok := id.Number(); !ok {
		return product.Product{}, fmt.Errorf("remote product id required, got %q", id)
	}
	var payload product.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+id.String(), nil, &payload); err != nil {
		return product.Product{}, err
	}
	return payload, nil
}

// AddProduct posts a new product. The API echoes the created record.
func (c *Client) AddProduct(ctx context.Context, p product.Product) (product.Product, error) {
	if c == nil {
		return product.Product{}, fmt.Errorf("client is nil")
	}
	body := p
	body.ID = ""
	var payload product.Product
	if err := c.do(ctx, http.MethodPost, "/products/add", body, &payload); err != nil {
		return product.Product{}, err
	}
	return payload, nil
}

// UpdateProduct sends the changed fields of a remote product.
func (c *Client) UpdateProduct(ctx context.Context, id product.ID, patch product.Patch) (product.Product, error) {
	if c == nil {
		return product.Product{}, fmt.Errorf("client is nil")
	}
	if _, ok := id.Number(); !ok {
		return product.Product{}, fmt.Errorf("remote product id required, got %q", id)
	}
	var payload product.Product
	if err := c.do(ctx, http.MethodPut, "/products/"+id.String(), patch, &payload); err != nil {
		return product.Product{}, err
	}
	return payload, nil
}

// DeleteProduct asks the API to delete a remote product.
func (c *Client) DeleteProduct(ctx context.Context, id product.ID) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if _, ok := id.Number(); !ok {
		return fmt.Errorf("remote product id required, got %q", id)
	}
	return c.do(ctx, http.MethodDelete, "/products/"+id.String(), nil, nil)
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	if c == nil {
		return LoginResponse{}, fmt.Errorf("client is nil")
	}
	var payload LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &payload); err != nil {
		return LoginResponse{}, err
	}
	return payload, nil
}

// FetchUsers lists the users known to the API.
func (c *Client) FetchUsers(ctx context.Context) ([]User, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload UserListResponse
	if err := c.do(ctx, http.MethodGet, "/users", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Users, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	reqURL := *c.baseURL
	reqURL.Path = c.baseURL.Path + rel.Path
	reqURL.RawQuery = rel.RawQuery
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return &APIError{Path: rel.Path, Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64*1024))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base url %q: %w", raw, err)
	}
	// A path prefix such as a gateway mount stays in front of every endpoint.
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
