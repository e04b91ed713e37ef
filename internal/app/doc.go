// Package app is the composition root for shelf.
//
// # Overview
//
// Build turns a config.Config into a Services value holding every
// long-lived component. Each component is constructed exactly once and
// passed to its consumers by reference; nothing in the core packages is a
// package-level singleton. Run layers logging, the first catalog load, the
// background refresher and the UI on top of Build.
//
// # Startup Order
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()          config.toml + SHELF_API_URL
//	       ├─────> prefs.Load()           theme, page size, sort
//	       ├─────> logging.New()          <data_dir>/shelf.log
//	       ├─────> Build()
//	       │        ├─> kv.Open()         file | memory | redis | sqlite
//	       │        ├─> session.Restore()
//	       │        ├─> cart.Load(), wishlist.Load()
//	       │        └─> catalog + products gateway
//	       ├─────> Catalog.Load()         first merged view
//	       ├─────> StartRefresher()       background reloads
//	       └─────> ui.Run()               blocks until quit
//
// The cart and wishlist are loaded before any UI event can reach them, and
// both reject writes until loaded, so a fresh process never overwrites a
// saved cart with an empty one.
//
// # Refresh Behavior
//
// The refresher reloads the most recently requested query on a fixed interval
// (default 15 seconds) and publishes the merged view to state.Store. Each
// consecutive failure doubles the wait, up to two minutes. Responses that
// a newer query has superseded are dropped without counting as failures.
//
// # Errors
//
// Configuration, logging and storage setup errors are returned from Run.
// Catalog failures after startup are recorded in the snapshot and logged;
// the UI keeps showing the last good view.
package app
