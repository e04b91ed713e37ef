// Package catalog merges the remote product listing with local edits.
//
// LocalState owns three persisted collections: overrides of remote
// products ("products"), hidden remote ids ("deletedProducts") and
// products created on this machine ("myProducts"). Reconciler fetches a
// listing, drops hidden ids, applies overrides field by field and puts the
// signed-in user's local products in front. Search and pagination run on
// the merged sequence and never reach the network.
//
// Each Load is stamped with a generation number; a response that arrives
// after a newer one has been applied is discarded.
package catalog
