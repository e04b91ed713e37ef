// Package state holds the catalog snapshot shared by the refresher and the UI.
//
// # Architecture
//
//	Producer (Refresher):            Consumer (UI):
//	┌──────────────────────┐        ┌────────────────────┐
//	│ reconciler.Load()    │        │                    │
//	│ reconciler.Categories│        │                    │
//	│        ↓             │        │                    │
//	│ store.Update()       │───────→│ store.Snapshot()   │
//	│        ↓             │ (mutex)│        ↓           │
//	│ wait for backoff     │        │ render product list│
//	└──────────────────────┘        └────────────────────┘
//
// CRUD calls made from the UI rebuild the merged view synchronously and
// push it with Replace, so the refresher's failure count is left alone.
//
// # Update Semantics
//
//	// Success: replace products (and categories when non-nil)
//	store.Update(products, categories, nil)
//
//	// Error: keep old data, record the error
//	store.Update(nil, nil, err)
//	→ snapshot.LastError = err
//	→ snapshot.ConsecutiveFailures++
//
// Two or more consecutive failures mark the snapshot offline.
//
// # Copies
//
// Snapshot deep-copies products (including their tag and image slices) and
// wraps the error, so readers can never mutate stored state.
//
// The zero Store is ready to use.
package state
