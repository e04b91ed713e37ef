// Package ui implements the shelf terminal storefront with Bubble Tea.
//
// The UI is glue. It reads the merged catalog from a state.Store snapshot
// on every tick and calls the core components directly for user actions:
// cart.Ledger, wishlist.Set, session.Manager and products.Gateway. Anything
// that may touch the network (catalog loads, product details, login, CRUD
// with remote echo) runs in a tea.Cmd and reports back as a message.
//
// # Views
//
//   - Catalog: paginated product table with category, sort and search
//   - Cart: lines, quantities and the decimal total
//   - Wishlist: saved products
//   - Activity: the tail of the shelf log file
//
// Help, search, sign-in, the product editor and the detail panel are
// overlays drawn over the current view.
//
// Category and sort changes go through the reconciler; search text and page
// number are applied locally to the merged view.
package ui
