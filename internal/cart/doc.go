// Package cart implements the shopping cart ledger.
//
// The ledger keeps at most one entry per product id with a quantity of at
// least one. Every mutation writes the full cart to the "cart" key; nothing
// is written until Load has run, so an empty startup state can never
// overwrite a saved cart.
package cart
