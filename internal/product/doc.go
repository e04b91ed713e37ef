// Package product defines the storefront's product, patch and category types.
//
// Product ids come from two namespaces. The remote catalog assigns numeric
// ids; products created on this machine get string ids starting with
// LocalIDPrefix ("my-"). ID keeps both as a string internally and writes
// remote ids back out as JSON numbers so persisted data stays compatible
// with the catalog's own payloads.
//
// A Patch is a partial product: nil fields are unspecified and never
// overwrite anything when the patch is applied. Overrides of remote
// products and edits of local products are both expressed as patches.
package product
