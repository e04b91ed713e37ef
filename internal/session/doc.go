// Package session tracks who is signed in.
//
// A Manager moves from Uninitialized through Loading to either
// Authenticated or Anonymous. Restore reads the persisted profile and token
// without any network traffic; Login and Logout move between the two
// settled states. Login never returns an error: callers get a LoginResult
// whose Message is suitable for display.
package session
