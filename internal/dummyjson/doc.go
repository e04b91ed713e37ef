// Package dummyjson provides an HTTP client for the remote catalog and auth API.
//
// # Endpoints
//
//   - GET /products?limit=N&sortBy=F&order=asc|desc: full catalog listing
//   - GET /products/category/{slug}: listing filtered by category
//   - GET /products/categories: category list (strings or {slug,name} objects)
//   - GET /products/search?q=TEXT: server-side search (not used by the merge path)
//   - GET /products/{id}: single product
//   - POST /products/add, PUT /products/{id}, DELETE /products/{id}: simulated mutations
//   - POST /auth/login: credentials to token exchange
//   - GET /users: user directory
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and User-Agent: shelf/0.1
//   - Have a 10-second timeout
//   - Optionally wait on a token-bucket limiter (WithRateLimit)
//
// # Error Handling
//
// Three failure classes are distinguishable by callers:
//
//   - *APIError: the server answered with a non-2xx status; Message carries
//     the server's "message" field when it sent one
//   - ErrDecode: the server answered 2xx but the body was not the expected JSON
//   - anything else: the request never completed (IsTransport reports true)
//
// Local product ids (the "my-" namespace) are rejected before any request
// is built so they never leak to the remote API.
package dummyjson
