package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Persisted key layout.
const (
	KeyProducts        = "products" // override set: id -> patch
	KeyCart            = "cart"
	KeyWishlist        = "wishlist"
	KeyUser            = "user"
	KeyToken           = "token"
	KeyRefreshToken    = "refreshToken"
	KeyMyProducts      = "myProducts"
	KeyDeletedProducts = "deletedProducts"
	KeyAllUsers        = "allUsers"
)

const probeKey = "__storage_test__"

// ErrUnavailable wraps every backend failure surfaced by Store.
var ErrUnavailable = errors.New("storage unavailable")

// Backend is raw string-keyed storage. Implementations must be safe for
// concurrent use.
type Backend interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
}

// Store layers JSON encoding and corruption recovery over a Backend.
type Store struct {
	backend Backend
	log     zerolog.Logger
}

// New wraps backend. A nil backend gets an in-memory one.
func New(backend Backend, log zerolog.Logger) *Store {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	return &Store{backend: backend, log: log.With().Str("component", "kv").Logger()}
}

// Read decodes the value stored under key into dest and reports whether a
// usable value was found. Missing keys, backend errors and corrupt payloads
// all read as absent; corrupt payloads are removed so they cannot break the
// next load as well.
func (s *Store) Read(key string, dest any) bool {
	raw, ok, err := s.backend.Get(key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("storage read failed")
		return false
	}
	if !ok {
		return false
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" || trimmed == "undefined" {
		s.purge(key, "empty value")
		return false
	}
	if err := json.Unmarshal([]byte(trimmed), dest); err != nil {
		s.purge(key, err.Error())
		return false
	}
	return true
}

// Write stores value as JSON under key.
func (s *Store) Write(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Set(key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w: %w", key, ErrUnavailable, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	if err := s.backend.Delete(key); err != nil {
		return fmt.Errorf("remove %s: %w: %w", key, ErrUnavailable, err)
	}
	return nil
}

// Clear removes every key owned by the store.
func (s *Store) Clear() error {
	if err := s.backend.Clear(); err != nil {
		return fmt.Errorf("clear: %w: %w", ErrUnavailable, err)
	}
	return nil
}

// Available probes the backend with a throwaway write.
func (s *Store) Available() bool {
	if err := s.backend.Set(probeKey, probeKey); err != nil {
		return false
	}
	return s.backend.Delete(probeKey) == nil
}

// Persist writes value and downgrades failures to a warning. It reports
// whether the write reached the backend.
func (s *Store) Persist(key string, value any) bool {
	if err := s.Write(key, value); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("persist failed; change kept in memory only")
		return false
	}
	return true
}

func (s *Store) purge(key, reason string) {
	s.log.Warn().Str("key", key).Str("reason", reason).Msg("discarding corrupt stored value")
	if err := s.backend.Delete(key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to purge corrupt value")
	}
}
