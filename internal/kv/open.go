package kv

import (
	"fmt"
	"io"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Options select and configure a backend.
type Options struct {
	Backend     string
	Dir         string
	RedisAddr   string
	RedisPrefix string
	SQLitePath  string
}

// Open builds the configured backend. The returned closer is never nil.
func Open(opts Options) (Backend, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		b, err := NewFileBackend(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		return b, nopCloser{}, nil
	case BackendMemory:
		return NewMemoryBackend(), nopCloser{}, nil
	case BackendRedis:
		b, err := NewRedisBackend(opts.RedisAddr, opts.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	case BackendSQLite:
		b, err := NewSQLiteBackend(opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
