package products

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/dummyjson"
	"github.com/five82/shelf/internal/product"
)

// Messages carried by failed Results.
const (
	MsgLoginRequired = "You must be logged in to manage products."
	MsgNotFound      = "Product not found."
	MsgEmptyUpdate   = "No changes to save."
	MsgMissingID     = "Product id is required."
	MsgNoOverride    = "Product has no local edits."
	MsgNotHidden     = "Product is not deleted."
)

// Identity reports the signed-in user, zero when anonymous.
type Identity interface {
	UserID() int64
}

// Result is the tagged outcome of a CRUD operation.
type Result struct {
	Success bool
	Product product.Product
	Message string
}

func failed(msg string) Result {
	return Result{Message: msg}
}

// Gateway performs product create, update and delete. Local state is
// authoritative; with an echo writer configured each change is also sent
// to the remote API, and a failed echo leaves the result unchanged.
type Gateway struct {
	reconciler *catalog.Reconciler
	local      *catalog.LocalState
	identity   Identity
	echo       dummyjson.ProductWriter
	log        zerolog.Logger
	now        func() time.Time
	newID      func() product.ID
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithRemoteEcho mirrors every change to w. Echo failures are logged only.
func WithRemoteEcho(w dummyjson.ProductWriter) Option {
	return func(g *Gateway) { g.echo = w }
}

// WithClock replaces time.Now for creation stamps.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGateway returns a Gateway that writes through the reconciler's local
// state.
func NewGateway(reconciler *catalog.Reconciler, identity Identity, log zerolog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		reconciler: reconciler,
		local:      reconciler.Local(),
		identity:   identity,
		log:        log.With().Str("component", "products").Logger(),
		now:        time.Now,
		newID:      NewLocalID,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewLocalID returns a fresh local-namespaced id.
func NewLocalID() product.ID {
	return product.ID(product.LocalIDPrefix + uuid.NewString())
}

// Create adds a product owned by the signed-in user to the front of the
// local product list. Fields are not validated here.
func (g *Gateway) Create(ctx context.Context, fields product.Product) Result {
	owner := g.userID()
	if owner == 0 {
		return failed(MsgLoginRequired)
	}
	p := fields.Clone()
	p.ID = g.newID()
	p.OwnerID = owner
	p.CreatedAt = g.now().UTC()
	p.Category = strings.TrimSpace(p.Category)

	g.local.AddLocal(p)
	g.reconciler.Remerge()
	g.log.Info().Str("id", p.ID.String()).Str("title", p.Title).Msg("product created")

	if g.echo != nil {
		if _, err := g.echo.AddProduct(ctx, p); err != nil {
			g.log.Warn().Err(err).Str("id", p.ID.String()).Msg("remote echo of create failed")
		}
	}
	return Result{Success: true, Product: p}
}

// Update edits a product. Local products change in place and only for
// their owner; remote products get an override layered over any earlier
// one.
func (g *Gateway) Update(ctx context.Context, id product.ID, patch product.Patch) Result {
	owner := g.userID()
	if owner == 0 {
		return failed(MsgLoginRequired)
	}
	if id == "" {
		return failed(MsgMissingID)
	}
	if patch.IsEmpty() {
		return failed(MsgEmptyUpdate)
	}

	if id.IsLocal() {
		if existing, ok := g.local.LocalProduct(id); !ok || existing.OwnerID != owner {
			return failed(MsgNotFound)
		}
		updated, ok := g.local.UpdateLocal(id, patch)
		if !ok {
			return failed(MsgNotFound)
		}
		g.reconciler.Remerge()
		g.log.Info().Str("id", id.String()).Msg("local product updated")
		return Result{Success: true, Product: updated}
	}

	if g.local.IsHidden(id) {
		return failed(MsgNotFound)
	}
	override := g.local.PutOverride(id, patch)
	g.reconciler.Remerge()
	g.log.Info().Str("id", id.String()).Msg("override saved")

	if g.echo != nil {
		if _, err := g.echo.UpdateProduct(ctx, id, patch); err != nil {
			g.log.Warn().Err(err).Str("id", id.String()).Msg("remote echo of update failed")
		}
	}
	return Result{Success: true, Product: g.current(id, override)}
}

// Delete removes a local product outright or hides a remote one and drops
// its override.
func (g *Gateway) Delete(ctx context.Context, id product.ID) Result {
	owner := g.userID()
	if owner == 0 {
		return failed(MsgLoginRequired)
	}
	if id == "" {
		return failed(MsgMissingID)
	}

	if id.IsLocal() {
		p, ok := g.local.LocalProduct(id)
		if !ok || p.OwnerID != owner || !g.local.RemoveLocal(id) {
			return failed(MsgNotFound)
		}
		g.reconciler.Remerge()
		g.log.Info().Str("id", id.String()).Msg("local product deleted")
		return Result{Success: true, Product: p}
	}

	p := g.current(id, product.Patch{})
	g.local.Hide(id)
	g.reconciler.Remerge()
	g.log.Info().Str("id", id.String()).Msg("remote product hidden")

	if g.echo != nil {
		if err := g.echo.DeleteProduct(ctx, id); err != nil {
			g.log.Warn().Err(err).Str("id", id.String()).Msg("remote echo of delete failed")
		}
	}
	return Result{Success: true, Product: p}
}

// Revert discards the local edits of a remote product so the remote
// record shows through again. Local products have nothing to revert.
func (g *Gateway) Revert(ctx context.Context, id product.ID) Result {
	if g.userID() == 0 {
		return failed(MsgLoginRequired)
	}
	if id == "" {
		return failed(MsgMissingID)
	}
	if id.IsLocal() || !g.local.DropOverride(id) {
		return failed(MsgNoOverride)
	}
	g.reconciler.Remerge()
	g.log.Info().Str("id", id.String()).Msg("override cleared")
	return Result{Success: true, Product: g.current(id, product.Patch{})}
}

// Restore brings back a remote product hidden by Delete. Its earlier
// edits were discarded on delete and stay gone.
func (g *Gateway) Restore(ctx context.Context, id product.ID) Result {
	if g.userID() == 0 {
		return failed(MsgLoginRequired)
	}
	if id == "" {
		return failed(MsgMissingID)
	}
	if id.IsLocal() || !g.local.Unhide(id) {
		return failed(MsgNotHidden)
	}
	g.reconciler.Remerge()
	g.log.Info().Str("id", id.String()).Msg("remote product restored")
	return Result{Success: true, Product: g.current(id, product.Patch{})}
}

// current finds id in the merged view, falling back to a bare record with
// the override applied when the product has not been fetched yet.
func (g *Gateway) current(id product.ID, override product.Patch) product.Product {
	for _, p := range g.reconciler.Products() {
		if p.ID == id {
			return p
		}
	}
	return override.Apply(product.Product{ID: id})
}

func (g *Gateway) userID() int64 {
	if g.identity == nil {
		return 0
	}
	return g.identity.UserID()
}
