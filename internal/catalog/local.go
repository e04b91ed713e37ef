package catalog

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/shelf/internal/kv"
	"github.com/five82/shelf/internal/product"
)

// Snapshot is a point-in-time copy of the local catalog state.
type Snapshot struct {
	Overrides map[product.ID]product.Patch
	Deleted   map[product.ID]bool
	Local     []product.Product // most recent first
}

// LocalState owns the override set, the hidden remote ids and the
// locally created products. State is read from the store once at
// construction and written back after every change.
type LocalState struct {
	store *kv.Store
	log   zerolog.Logger

	mu        sync.RWMutex
	overrides map[product.ID]product.Patch
	deleted   []product.ID
	local     []product.Product
}

// NewLocalState loads the local catalog state from store.
func NewLocalState(store *kv.Store, log zerolog.Logger) *LocalState {
	s := &LocalState{
		store: store,
		log:   log.With().Str("component", "catalog-local").Logger(),
	}
	s.reload()
	return s
}

func (s *LocalState) reload() {
	overrides := map[product.ID]product.Patch{}
	s.store.Read(kv.KeyProducts, &overrides)
	if overrides == nil {
		overrides = map[product.ID]product.Patch{}
	}

	var deleted []product.ID
	s.store.Read(kv.KeyDeletedProducts, &deleted)
	deleted = slices.DeleteFunc(deleted, func(id product.ID) bool { return id == "" })
	slices.Sort(deleted)
	deleted = slices.Compact(deleted)

	var local []product.Product
	s.store.Read(kv.KeyMyProducts, &local)
	local = slices.DeleteFunc(local, func(p product.Product) bool { return !p.ID.IsLocal() })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = overrides
	s.deleted = deleted
	s.local = local
	s.log.Debug().
		Int("overrides", len(overrides)).
		Int("deleted", len(deleted)).
		Int("local", len(local)).
		Msg("local catalog state loaded")
}

// Snapshot copies the current state.
func (s *LocalState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Overrides: make(map[product.ID]product.Patch, len(s.overrides)),
		Deleted:   make(map[product.ID]bool, len(s.deleted)),
		Local:     make([]product.Product, len(s.local)),
	}
	for id, pt := range s.overrides {
		snap.Overrides[id] = pt
	}
	for _, id := range s.deleted {
		snap.Deleted[id] = true
	}
	for i, p := range s.local {
		snap.Local[i] = p.Clone()
	}
	return snap
}

// Override returns the stored override for a remote id.
func (s *LocalState) Override(id product.ID) (product.Patch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pt, ok := s.overrides[id]
	return pt, ok
}

// PutOverride layers patch over any existing override for id and returns
// the combined override.
func (s *LocalState) PutOverride(id product.ID, patch product.Patch) product.Patch {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.overrides[id].Merge(patch)
	s.overrides[id] = next
	s.persistOverridesLocked()
	return next
}

// DropOverride removes the override for id, reporting whether one existed.
func (s *LocalState) DropOverride(id product.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.overrides[id]; !ok {
		return false
	}
	delete(s.overrides, id)
	s.persistOverridesLocked()
	return true
}

// Hide adds a remote id to the deleted set and discards its override.
func (s *LocalState) Hide(id product.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := slices.BinarySearch(s.deleted, id); !found {
		s.deleted = append(s.deleted, id)
		slices.Sort(s.deleted)
		s.store.Persist(kv.KeyDeletedProducts, s.deleted)
	}
	if _, ok := s.overrides[id]; ok {
		delete(s.overrides, id)
		s.persistOverridesLocked()
	}
}

// Unhide removes a remote id from the deleted set.
func (s *LocalState) Unhide(id product.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, found := slices.BinarySearch(s.deleted, id)
	if !found {
		return false
	}
	s.deleted = slices.Delete(s.deleted, i, i+1)
	s.store.Persist(kv.KeyDeletedProducts, s.deleted)
	return true
}

// IsHidden reports whether id is in the deleted set.
func (s *LocalState) IsHidden(id product.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, found := slices.BinarySearch(s.deleted, id)
	return found
}

// AddLocal prepends a locally created product.
func (s *LocalState) AddLocal(p product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.local = slices.Insert(s.local, 0, p.Clone())
	s.store.Persist(kv.KeyMyProducts, s.local)
}

// UpdateLocal applies patch to the local product id in place.
func (s *LocalState) UpdateLocal(id product.ID, patch product.Patch) (product.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.localIndexLocked(id)
	if i < 0 {
		return product.Product{}, false
	}
	updated := patch.Apply(s.local[i])
	s.local[i] = updated
	s.store.Persist(kv.KeyMyProducts, s.local)
	return updated.Clone(), true
}

// RemoveLocal deletes the local product id.
func (s *LocalState) RemoveLocal(id product.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.localIndexLocked(id)
	if i < 0 {
		return false
	}
	s.local = slices.Delete(s.local, i, i+1)
	s.store.Persist(kv.KeyMyProducts, s.local)
	return true
}

// LocalProduct looks up a locally created product.
func (s *LocalState) LocalProduct(id product.ID) (product.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.localIndexLocked(id)
	if i < 0 {
		return product.Product{}, false
	}
	return s.local[i].Clone(), true
}

func (s *LocalState) localIndexLocked(id product.ID) int {
	return slices.IndexFunc(s.local, func(p product.Product) bool { return p.ID == id })
}

func (s *LocalState) persistOverridesLocked() {
	s.store.Persist(kv.KeyProducts, s.overrides)
}
