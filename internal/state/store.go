package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/shelf/internal/product"
)

// Snapshot represents the latest catalog data available to the UI.
type Snapshot struct {
	Products            []product.Product
	Categories          []product.Category
	HasCatalog          bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refresh failures
}

// IsOffline returns true when the API has been unreachable for multiple refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored products. When err is non-nil the previous data
// is kept but the error is recorded for visibility. Nil categories keep the
// previous list.
func (s *Store) Update(products []product.Product, categories []product.Category, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Products = cloneProducts(products)
	if categories != nil {
		s.snapshot.Categories = append([]product.Category(nil), categories...)
	}
	s.snapshot.HasCatalog = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Replace swaps in a locally recomputed product list without touching the
// refresh bookkeeping.
func (s *Store) Replace(products []product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Products = cloneProducts(products)
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Products = cloneProducts(s.snapshot.Products)
	snap.Categories = append([]product.Category(nil), s.snapshot.Categories...)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneProducts(items []product.Product) []product.Product {
	if len(items) == 0 {
		return nil
	}
	dup := make([]product.Product, len(items))
	for i, p := range items {
		dup[i] = p.Clone()
	}
	return dup
}
