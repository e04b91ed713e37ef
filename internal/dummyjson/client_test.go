package dummyjson

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/shelf/internal/product"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL {
		t.Fatalf("url = %q, want %q", u.String(), DefaultBaseURL)
	}

	u, err = parseBaseURL("http://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "/path" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	u, err = parseBaseURL("https://gateway.local/api/dummy/")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "/api/dummy" {
		t.Fatalf("path = %q, want /api/dummy", u.Path)
	}

	u, err = parseBaseURL("catalog.local:8080")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Host != "catalog.local:8080" {
		t.Fatalf("url = %q, want https://catalog.local:8080", u.String())
	}
}

func TestClient_FetchesEndpointsAndEncodesQueries(t *testing.T) {
	t.Parallel()

	var gotListQuery, gotCategoryQuery, gotSearchQuery url.Values
	var gotUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/products":
			gotListQuery = r.URL.Query()
			_, _ = w.Write([]byte(`{"products":[{"id":1,"title":"Phone","price":9.99}],"total":1}`))
		case "/products/category/laptops":
			gotCategoryQuery = r.URL.Query()
			_, _ = w.Write([]byte(`{"products":[{"id":7,"title":"Laptop","category":"laptops"}]}`))
		case "/products/search":
			gotSearchQuery = r.URL.Query()
			_, _ = w.Write([]byte(`{"products":[]}`))
		case "/products/categories":
			_, _ = w.Write([]byte(`["beauty",{"slug":"home-decoration","name":"Home Decoration"}]`))
		case "/products/5":
			_, _ = w.Write([]byte(`{"id":5,"title":"Five"}`))
		case "/users":
			_ = json.NewEncoder(w).Encode(UserListResponse{Users: []User{{ID: 1, Username: "emilys"}}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	items, err := c.FetchProducts(ctx, ProductQuery{Category: "all", SortBy: "price", Order: "DESC"})
	if err != nil {
		t.Fatalf("FetchProducts returned error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "1" || items[0].Price != 9.99 {
		t.Fatalf("FetchProducts = %#v, want one product id=1", items)
	}
	if gotListQuery.Get("limit") != "0" || gotListQuery.Get("sortBy") != "price" || gotListQuery.Get("order") != "desc" {
		t.Fatalf("list query = %v, want limit=0 sortBy=price order=desc", gotListQuery)
	}

	items, err = c.FetchProducts(ctx, ProductQuery{Category: "laptops", Limit: 30})
	if err != nil {
		t.Fatalf("FetchProducts(category) returned error: %v", err)
	}
	if len(items) != 1 || items[0].Category != "laptops" {
		t.Fatalf("FetchProducts(category) = %#v", items)
	}
	if gotCategoryQuery.Get("limit") != "30" || gotCategoryQuery.Has("sortBy") {
		t.Fatalf("category query = %v, want limit=30 without sort", gotCategoryQuery)
	}

	if _, err := c.SearchProducts(ctx, "  phone "); err != nil {
		t.Fatalf("SearchProducts returned error: %v", err)
	}
	if gotSearchQuery.Get("q") != "phone" {
		t.Fatalf("search query = %v, want q=phone", gotSearchQuery)
	}

	cats, err := c.FetchCategories(ctx)
	if err != nil {
		t.Fatalf("FetchCategories returned error: %v", err)
	}
	if len(cats) != 2 || cats[0] != (product.Category{Slug: "beauty", Name: "Beauty"}) || cats[1].Slug != "home-decoration" {
		t.Fatalf("FetchCategories = %#v", cats)
	}

	p, err := c.FetchProduct(ctx, "5")
	if err != nil {
		t.Fatalf("FetchProduct returned error: %v", err)
	}
	if p.Title != "Five" {
		t.Fatalf("FetchProduct = %#v, want title Five", p)
	}

	users, err := c.FetchUsers(ctx)
	if err != nil {
		t.Fatalf("FetchUsers returned error: %v", err)
	}
	if len(users) != 1 || users[0].Username != "emilys" {
		t.Fatalf("FetchUsers = %#v", users)
	}

	if !strings.HasPrefix(gotUserAgent, "shelf/") {
		t.Fatalf("User-Agent = %q, want shelf/*", gotUserAgent)
	}
}

func TestClient_MutationsSendJSONBodies(t *testing.T) {
	t.Parallel()

	type seen struct {
		method string
		path   string
		body   map[string]any
	}
	var calls []seen

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &body)
		}
		calls = append(calls, seen{method: r.Method, path: r.URL.Path, body: body})
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			_, _ = w.Write([]byte(`{"id":195,"title":"Demo Product","price":200}`))
		case http.MethodPut:
			_, _ = w.Write([]byte(`{"id":5,"title":"Renamed"}`))
		case http.MethodDelete:
			_, _ = w.Write([]byte(`{"id":5,"isDeleted":true}`))
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	created, err := c.AddProduct(ctx, product.Product{ID: "my-x", Title: "Demo Product", Price: 200})
	if err != nil {
		t.Fatalf("AddProduct returned error: %v", err)
	}
	if created.ID != "195" {
		t.Fatalf("AddProduct id = %q, want 195", created.ID)
	}

	if _, err := c.UpdateProduct(ctx, "5", product.Patch{Title: product.String("Renamed")}); err != nil {
		t.Fatalf("UpdateProduct returned error: %v", err)
	}
	if err := c.DeleteProduct(ctx, "5"); err != nil {
		t.Fatalf("DeleteProduct returned error: %v", err)
	}

	if len(calls) != 3 {
		t.Fatalf("got %d calls, want 3", len(calls))
	}
	if calls[0].method != http.MethodPost || calls[0].path != "/products/add" || calls[0].body["title"] != "Demo Product" {
		t.Fatalf("add call = %#v", calls[0])
	}
	if calls[1].method != http.MethodPut || calls[1].path != "/products/5" || calls[1].body["title"] != "Renamed" {
		t.Fatalf("update call = %#v", calls[1])
	}
	if _, ok := calls[1].body["price"]; ok {
		t.Fatalf("update should only send changed fields, got %#v", calls[1].body)
	}
	if calls[2].method != http.MethodDelete || calls[2].path != "/products/5" {
		t.Fatalf("delete call = %#v", calls[2])
	}
}

func TestClient_LocalIDsNeverReachTheNetwork(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.FetchProduct(context.Background(), "my-abc"); err == nil {
		t.Fatalf("FetchProduct(local id) returned nil error")
	}
	if err := c.DeleteProduct(context.Background(), "my-abc"); err == nil {
		t.Fatalf("DeleteProduct(local id) returned nil error")
	}
}

func TestClient_LoginSuccessAndFailure(t *testing.T) {
	t.Parallel()

	var gotReq LoginRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		if gotReq.Username != "emilys" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":1,"username":"emilys","firstName":"Emily","accessToken":"tok","refreshToken":"ref"}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	resp, err := c.Login(context.Background(), LoginRequest{Username: "emilys", Password: "pw", ExpiresInMins: 30})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.ID != 1 || resp.SessionToken() != "tok" || resp.RefreshToken != "ref" {
		t.Fatalf("Login = %#v", resp)
	}
	if gotReq.ExpiresInMins != 30 {
		t.Fatalf("ExpiresInMins = %d, want 30", gotReq.ExpiresInMins)
	}

	_, err = c.Login(context.Background(), LoginRequest{Username: "baduser", Password: "badpass"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Login error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "Invalid credentials" {
		t.Fatalf("APIError = %#v", apiErr)
	}
	if IsTransport(err) {
		t.Fatalf("IsTransport(api error) = true, want false")
	}
}

func TestClient_HTTPErrorDecodeErrorAndTransport(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/categories":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/users":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchCategories(context.Background())
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("FetchCategories error = %v, want decode error", err)
	}

	_, err = c.FetchUsers(context.Background())
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("FetchUsers error = %v, want status 500 error", err)
	}

	offline, err := NewClient("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = offline.FetchUsers(context.Background())
	if !IsTransport(err) {
		t.Fatalf("IsTransport(%v) = false, want true", err)
	}
	if IsTransport(nil) {
		t.Fatalf("IsTransport(nil) = true")
	}
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"users":[]}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithRateLimit(0.001))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.FetchUsers(context.Background()); err != nil {
		t.Fatalf("first request should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.FetchUsers(ctx); err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Fatalf("second request error = %v, want rate limit error", err)
	}
}

func TestClient_KeepsBasePathPrefix(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path+"?"+r.URL.RawQuery)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/dummy/products"):
			_, _ = w.Write([]byte(`{"products":[],"total":0}`))
		case r.URL.Path == "/dummy/users":
			_, _ = w.Write([]byte(`{"users":[],"total":0}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL + "/dummy/")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	ctx := context.Background()
	if _, err := client.FetchProducts(ctx, ProductQuery{Category: "beauty"}); err != nil {
		t.Fatalf("FetchProducts: %v", err)
	}
	if _, err := client.FetchUsers(ctx); err != nil {
		t.Fatalf("FetchUsers: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"/dummy/products/category/beauty?limit=0", "/dummy/users?"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}
