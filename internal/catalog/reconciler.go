package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/shelf/internal/dummyjson"
	"github.com/five82/shelf/internal/product"
)

// ErrNotFound is returned when a product does not exist or is hidden.
var ErrNotFound = errors.New("product not found")

// Messages carried by failed LoadResults.
const (
	MsgUnreachable = "Unable to load products. Check your connection and try again."
	MsgFailed      = "Failed to load products."
	MsgSuperseded  = "A newer request replaced this one."
)

// Identity reports the signed-in user, zero when anonymous.
type Identity interface {
	UserID() int64
}

// LoadResult is the tagged outcome of Load.
type LoadResult struct {
	Success  bool
	Products []product.Product // merged and searched, all pages
	Message  string
	Stale    bool
}

// Reconciler produces the merged product view.
type Reconciler struct {
	remote     dummyjson.Catalog
	local      *LocalState
	identity   Identity
	log        zerolog.Logger
	fetchLimit int

	mu         sync.RWMutex
	issued     uint64
	applied    uint64
	requested  Query // latest query issued
	query      Query // query behind merged
	lastRemote []product.Product
	merged     []product.Product

	catMu      sync.Mutex
	categories []product.Category
}

// Options configure a Reconciler.
type Options struct {
	// FetchLimit is sent as the remote limit; zero asks for everything.
	FetchLimit int
}

// NewReconciler wires the remote catalog to the local state.
func NewReconciler(remote dummyjson.Catalog, local *LocalState, identity Identity, log zerolog.Logger, opts Options) *Reconciler {
	r := &Reconciler{
		remote:     remote,
		local:      local,
		identity:   identity,
		log:        log.With().Str("component", "catalog").Logger(),
		fetchLimit: max(opts.FetchLimit, 0),
		query:      NewQuery(DefaultPageSize),
	}
	r.requested = r.query
	r.merged = Merge(nil, local.Snapshot(), r.owner(), r.query.Category)
	return r
}

// Load fetches the remote listing for q and rebuilds the merged view.
// q becomes the requested query as soon as it is issued, so a Reload
// started while this fetch is in flight asks for q too. A response that
// arrives after a newer Load has been applied is dropped and reported as
// Stale. Failures keep the previous view.
func (r *Reconciler) Load(ctx context.Context, q Query) LoadResult {
	if strings.TrimSpace(q.Category) == "" {
		q.Category = product.AllCategories
	}

	r.mu.Lock()
	gen := r.issueLocked(q)
	r.mu.Unlock()

	return r.fetch(ctx, q, gen)
}

// Reload fetches the most recently requested query again.
func (r *Reconciler) Reload(ctx context.Context) LoadResult {
	r.mu.Lock()
	q := r.requested
	gen := r.issueLocked(q)
	r.mu.Unlock()

	return r.fetch(ctx, q, gen)
}

func (r *Reconciler) issueLocked(q Query) uint64 {
	r.issued++
	r.requested = q
	return r.issued
}

func (r *Reconciler) fetch(ctx context.Context, q Query, gen uint64) LoadResult {
	sortBy, order := q.Sort.Params()
	remote, err := r.remote.FetchProducts(ctx, dummyjson.ProductQuery{
		Category: q.Category,
		SortBy:   sortBy,
		Order:    order,
		Limit:    r.fetchLimit,
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen < r.applied {
		r.log.Debug().Uint64("generation", gen).Uint64("applied", r.applied).Msg("discarding stale catalog response")
		return LoadResult{Stale: true, Message: MsgSuperseded}
	}
	if err != nil {
		r.log.Warn().Err(err).Str("category", q.Category).Msg("catalog fetch failed")
		return LoadResult{Message: loadFailureMessage(err)}
	}

	r.applied = gen
	r.query = q
	r.lastRemote = remote
	r.merged = Merge(remote, r.local.Snapshot(), r.owner(), q.Category)
	r.log.Debug().
		Str("category", q.Category).
		Str("sort", string(q.Sort)).
		Int("remote", len(remote)).
		Int("merged", len(r.merged)).
		Msg("catalog merged")
	return LoadResult{Success: true, Products: cloneAll(Search(r.merged, q.Search))}
}

// Remerge rebuilds the merged view from the last remote fetch and the
// current local state. CRUD operations call it so readers never see a
// stale merge.
func (r *Reconciler) Remerge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merged = Merge(r.lastRemote, r.local.Snapshot(), r.owner(), r.query.Category)
}

// Products returns the merged view without search applied.
func (r *Reconciler) Products() []product.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.merged)
}

func cloneAll(items []product.Product) []product.Product {
	out := make([]product.Product, len(items))
	for i, p := range items {
		out[i] = p.Clone()
	}
	return out
}

// View searches the merged view with q.Search and returns page q.Page.
func (r *Reconciler) View(q Query) Page {
	return Paginate(Search(r.Products(), q.Search), q.Page, q.PageSize)
}

// Query returns the most recently requested query. It can run ahead of
// Applied while a fetch is in flight.
func (r *Reconciler) Query() Query {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.requested
}

// Applied returns the query behind the current merged view.
func (r *Reconciler) Applied() Query {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.query
}

// Categories returns the remote category list. The first successful fetch
// is cached for the life of the Reconciler.
func (r *Reconciler) Categories(ctx context.Context) ([]product.Category, error) {
	r.catMu.Lock()
	defer r.catMu.Unlock()
	if r.categories != nil {
		return append([]product.Category(nil), r.categories...), nil
	}
	cats, err := r.remote.FetchCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	cats = dedupeCategories(cats)
	r.categories = cats
	r.log.Debug().Int("categories", len(cats)).Msg("categories cached")
	return append([]product.Category(nil), cats...), nil
}

// Product resolves one product. Local ids never reach the network. Remote
// ids that are hidden return ErrNotFound; overrides are applied.
func (r *Reconciler) Product(ctx context.Context, id product.ID) (product.Product, error) {
	if id.IsLocal() {
		if p, ok := r.local.LocalProduct(id); ok {
			return p, nil
		}
		return product.Product{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if r.local.IsHidden(id) {
		return product.Product{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	p, err := r.remote.FetchProduct(ctx, id)
	if err != nil {
		var apiErr *dummyjson.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return product.Product{}, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return product.Product{}, fmt.Errorf("fetch product %s: %w", id, err)
	}
	if pt, ok := r.local.Override(id); ok {
		p = pt.Apply(p)
	}
	return p, nil
}

// Local exposes the local state for the CRUD gateway.
func (r *Reconciler) Local() *LocalState {
	return r.local
}

func (r *Reconciler) owner() int64 {
	if r.identity == nil {
		return 0
	}
	return r.identity.UserID()
}

func loadFailureMessage(err error) string {
	if dummyjson.IsTransport(err) {
		return MsgUnreachable
	}
	var apiErr *dummyjson.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return MsgFailed
}

func dedupeCategories(cats []product.Category) []product.Category {
	seen := make(map[string]bool, len(cats))
	out := make([]product.Category, 0, len(cats))
	for _, c := range cats {
		if c.Slug == "" || seen[c.Slug] {
			continue
		}
		seen[c.Slug] = true
		out = append(out, c)
	}
	return out
}
