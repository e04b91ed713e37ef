package kv

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string            `json:"name"`
	Count int               `json:"count"`
	Tags  []string          `json:"tags"`
	Meta  map[string]string `json:"meta"`
}

// backends returns one fresh instance of every backend, keyed by name.
func backends(t *testing.T) map[string]Backend {
	t.Helper()

	fileBackend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	sqliteBackend, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "shelf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteBackend.Close() })

	mr := miniredis.RunT(t)
	redisBackend := NewRedisBackendFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	t.Cleanup(func() { _ = redisBackend.Close() })

	return map[string]Backend{
		BackendMemory: NewMemoryBackend(),
		BackendFile:   fileBackend,
		BackendSQLite: sqliteBackend,
		BackendRedis:  redisBackend,
	}
}

func TestStore_RoundTripAcrossRestart(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			want := record{Name: "cart", Count: 3, Tags: []string{"a", "b"}, Meta: map[string]string{"k": "v"}}

			first := New(backend, zerolog.Nop())
			require.NoError(t, first.Write("thing", want))

			// A second Store over the same backend models a process restart.
			second := New(backend, zerolog.Nop())
			var got record
			require.True(t, second.Read("thing", &got))
			assert.Equal(t, want, got)
		})
	}
}

func TestStore_CorruptValuesReadAsAbsentAndArePurged(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(backend, zerolog.Nop())
			for _, raw := range []string{"undefined", "null", "{not-json", ""} {
				require.NoError(t, backend.Set("cart", raw))

				var got []record
				assert.False(t, s.Read("cart", &got), "raw %q should read as absent", raw)
				assert.Empty(t, got)

				_, ok, err := backend.Get("cart")
				require.NoError(t, err)
				assert.False(t, ok, "raw %q should be purged", raw)
			}
		})
	}
}

func TestStore_WrongShapeIsTreatedAsCorrupt(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Set(KeyWishlist, `{"id": 1}`))

	s := New(backend, zerolog.Nop())
	var list []record
	assert.False(t, s.Read(KeyWishlist, &list))

	_, ok, _ := backend.Get(KeyWishlist)
	assert.False(t, ok)
}

func TestStore_RemoveAndClear(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(backend, zerolog.Nop())
			require.NoError(t, s.Write(KeyUser, map[string]int{"id": 1}))
			require.NoError(t, s.Write(KeyToken, "abc"))

			require.NoError(t, s.Remove(KeyUser))
			require.NoError(t, s.Remove("never-written"))
			var v map[string]int
			assert.False(t, s.Read(KeyUser, &v))

			require.NoError(t, s.Clear())
			var token string
			assert.False(t, s.Read(KeyToken, &token))
			assert.True(t, s.Available())
		})
	}
}

type failingBackend struct{ *MemoryBackend }

var errQuota = errors.New("quota exceeded")

func (f *failingBackend) Set(string, string) error { return errQuota }

func TestStore_WriteFailureIsWrappedAndPersistDowngrades(t *testing.T) {
	s := New(&failingBackend{MemoryBackend: NewMemoryBackend()}, zerolog.Nop())

	err := s.Write(KeyCart, []int{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, errQuota)

	assert.False(t, s.Persist(KeyCart, []int{1}))
	assert.False(t, s.Available())
}

func TestOpen_SelectsBackends(t *testing.T) {
	b, closer, err := Open(Options{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)
	assert.NoError(t, closer.Close())

	b, closer, err = Open(Options{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)
	assert.NoError(t, closer.Close())

	b, closer, err = Open(Options{Backend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteBackend{}, b)
	assert.NoError(t, closer.Close())

	_, _, err = Open(Options{Backend: "etcd"})
	assert.Error(t, err)
}
