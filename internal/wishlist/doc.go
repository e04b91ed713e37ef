// Package wishlist implements the saved-products set persisted under the
// "wishlist" key.
package wishlist
