package cart

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/five82/shelf/internal/kv"
	"github.com/five82/shelf/internal/product"
)

// ErrNotLoaded is returned by mutations attempted before Load.
var ErrNotLoaded = errors.New("cart not loaded")

// Entry is one cart line.
type Entry struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"qty"`
}

// Subtotal is price times quantity.
func (e Entry) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(e.Product.Price).Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Ledger holds the cart. It is safe for concurrent use.
type Ledger struct {
	store *kv.Store
	log   zerolog.Logger

	mu      sync.RWMutex
	loaded  bool
	entries []Entry
}

// New returns an unloaded Ledger backed by store.
func New(store *kv.Store, log zerolog.Logger) *Ledger {
	return &Ledger{
		store: store,
		log:   log.With().Str("component", "cart").Logger(),
	}
}

// Load reads the persisted cart. Missing or corrupt data yields an empty
// cart. Entries with a non-positive quantity or a repeated id are folded
// away so the in-memory ledger always satisfies its invariants.
func (l *Ledger) Load() {
	var stored []Entry
	l.store.Read(kv.KeyCart, &stored)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = sanitize(stored)
	l.loaded = true
	l.log.Debug().Int("entries", len(l.entries)).Msg("cart loaded")
}

// Loaded reports whether Load has completed.
func (l *Ledger) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Add puts one unit of p in the cart.
func (l *Ledger) Add(p product.Product) error {
	return l.AddN(p, 1)
}

// AddN puts n units of p in the cart with a single write. n <= 0 is a no-op.
func (l *Ledger) AddN(p product.Product, n int) error {
	if n <= 0 {
		return nil
	}
	return l.mutate(func(entries []Entry) []Entry {
		for i := range entries {
			if entries[i].Product.ID == p.ID {
				entries[i].Quantity += n
				return entries
			}
		}
		return append(entries, Entry{Product: p.Clone(), Quantity: n})
	})
}

// Remove drops the entry for id, if any.
func (l *Ledger) Remove(id product.ID) error {
	return l.mutate(func(entries []Entry) []Entry {
		return without(entries, id)
	})
}

// SetQuantity replaces the quantity for id. qty <= 0 removes the entry; an
// id not in the cart is ignored.
func (l *Ledger) SetQuantity(id product.ID, qty int) error {
	if qty <= 0 {
		return l.Remove(id)
	}
	return l.mutate(func(entries []Entry) []Entry {
		for i := range entries {
			if entries[i].Product.ID == id {
				entries[i].Quantity = qty
				break
			}
		}
		return entries
	})
}

// Clear empties the cart.
func (l *Ledger) Clear() error {
	return l.mutate(func([]Entry) []Entry { return []Entry{} })
}

// Total sums price times quantity across entries. Round with StringFixed(2)
// only when displaying.
func (l *Ledger) Total() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := decimal.Zero
	for _, e := range l.entries {
		total = total.Add(e.Subtotal())
	}
	return total
}

// Count sums quantities.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, e := range l.entries {
		n += e.Quantity
	}
	return n
}

// Quantity returns how many units of id are in the cart.
func (l *Ledger) Quantity(id product.ID) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.Product.ID == id {
			return e.Quantity
		}
	}
	return 0
}

// Entries returns a copy of the cart lines in insertion order.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneEntries(l.entries)
}

// mutate computes the next cart from a copy of the current one, swaps it in
// and persists the whole snapshot. A failed write only loses durability.
func (l *Ledger) mutate(fn func([]Entry) []Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.loaded {
		return ErrNotLoaded
	}
	next := fn(cloneEntries(l.entries))
	l.entries = next
	l.store.Persist(kv.KeyCart, next)
	return nil
}

// FormatMoney renders an amount the way the storefront displays prices.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func without(entries []Entry, id product.ID) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.Product.ID != id {
			out = append(out, e)
		}
	}
	return out
}

func sanitize(stored []Entry) []Entry {
	out := make([]Entry, 0, len(stored))
	index := make(map[product.ID]int, len(stored))
	for _, e := range stored {
		if e.Quantity <= 0 || e.Product.ID == "" {
			continue
		}
		if i, ok := index[e.Product.ID]; ok {
			out[i].Quantity += e.Quantity
			continue
		}
		index[e.Product.ID] = len(out)
		out = append(out, e)
	}
	return out
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Product: e.Product.Clone(), Quantity: e.Quantity}
	}
	return out
}
