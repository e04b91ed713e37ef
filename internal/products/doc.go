// Package products is the create, update and delete gateway for the
// storefront catalog.
//
// Products created here live only on this machine under "my-" ids and
// belong to the signed-in user. Edits to remote products are stored as
// overrides and deletes hide the remote id. Every successful call rebuilds
// the catalog's merged view before returning, and every call reports its
// outcome as a Result instead of an error.
package products
