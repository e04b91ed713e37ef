// Package kv is shelf's persistent key-value store.
//
// Store exposes typed Read/Write/Remove over string keys with JSON values.
// It never lets a corrupt value escape: a stored payload that is empty, the
// literal "null" or "undefined", not valid JSON, or not decodable into the
// caller's type reads as absent and is deleted on the spot.
//
// Backends are interchangeable:
//
//   - MemoryBackend: process-local map, used by tests and store.backend = "memory"
//   - FileBackend: one JSON file per key under the data directory (default)
//   - SQLiteBackend: a single kv table in a local SQLite database
//   - RedisBackend: plain string keys under a configurable prefix
//
// Write failures are returned wrapped in ErrUnavailable. Callers that treat
// durability as best effort use Persist, which logs the failure and moves on.
package kv
