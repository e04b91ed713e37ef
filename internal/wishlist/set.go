package wishlist

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/shelf/internal/kv"
	"github.com/five82/shelf/internal/product"
)

// ErrNotLoaded is returned by mutations attempted before Load.
var ErrNotLoaded = errors.New("wishlist not loaded")

// Set is the deduplicated list of saved products, kept in the order they
// were added. It is safe for concurrent use.
type Set struct {
	store *kv.Store
	log   zerolog.Logger

	mu     sync.RWMutex
	loaded bool
	items  []product.Product
}

// New returns an unloaded Set backed by store.
func New(store *kv.Store, log zerolog.Logger) *Set {
	return &Set{
		store: store,
		log:   log.With().Str("component", "wishlist").Logger(),
	}
}

// Load reads the persisted wishlist, dropping duplicates and id-less rows.
func (s *Set) Load() {
	var stored []product.Product
	s.store.Read(kv.KeyWishlist, &stored)

	seen := make(map[product.ID]bool, len(stored))
	items := make([]product.Product, 0, len(stored))
	for _, p := range stored {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		items = append(items, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.loaded = true
	s.log.Debug().Int("items", len(items)).Msg("wishlist loaded")
}

// Loaded reports whether Load has completed.
func (s *Set) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Add saves p. Adding a saved id again changes nothing.
func (s *Set) Add(p product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	if s.indexLocked(p.ID) < 0 {
		s.commitLocked(append(s.cloneLocked(), p.Clone()))
	}
	return nil
}

// Remove drops id if present.
func (s *Set) Remove(id product.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	if i := s.indexLocked(id); i >= 0 {
		s.removeLocked(i)
	}
	return nil
}

// Toggle removes p when saved and adds it otherwise. It reports whether p is
// saved afterwards.
func (s *Set) Toggle(p product.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, ErrNotLoaded
	}
	if i := s.indexLocked(p.ID); i >= 0 {
		s.removeLocked(i)
		return false, nil
	}
	s.commitLocked(append(s.cloneLocked(), p.Clone()))
	return true, nil
}

// Clear empties the wishlist.
func (s *Set) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	s.commitLocked([]product.Product{})
	return nil
}

// Contains reports whether id is saved.
func (s *Set) Contains(id product.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(id) >= 0
}

// Items returns a copy of the saved products.
func (s *Set) Items() []product.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloneLocked()
}

// Len returns the number of saved products.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Set) indexLocked(id product.ID) int {
	for i, p := range s.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Set) cloneLocked() []product.Product {
	out := make([]product.Product, len(s.items))
	for i, p := range s.items {
		out[i] = p.Clone()
	}
	return out
}

func (s *Set) removeLocked(i int) {
	next := s.cloneLocked()
	s.commitLocked(append(next[:i], next[i+1:]...))
}

func (s *Set) commitLocked(next []product.Product) {
	s.items = next
	s.store.Persist(kv.KeyWishlist, next)
}
