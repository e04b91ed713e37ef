package wishlist

import (
	"errors"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"github.com/five82/shelf/internal/kv"
	"github.com/five82/shelf/internal/product"
)

func newLoaded(t *testing.T) (*Set, *kv.Store) {
	t.Helper()
	store := kv.New(kv.NewMemoryBackend(), zerolog.Nop())
	s := New(store, zerolog.Nop())
	s.Load()
	return s, store
}

func item(id int64) product.Product {
	return product.Product{ID: product.RemoteID(id), Title: "saved"}
}

func TestAddIsIdempotent(t *testing.T) {
	s, _ := newLoaded(t)
	_ = s.Add(item(1))
	_ = s.Add(item(1))
	if s.Len() != 1 {
		t.Fatalf("expected 1 item, got %d", s.Len())
	}
	if !s.Contains(product.RemoteID(1)) {
		t.Fatal("expected item to be saved")
	}
}

func TestToggleTwiceRestoresState(t *testing.T) {
	s, _ := newLoaded(t)
	_ = s.Add(item(2))

	saved, err := s.Toggle(item(1))
	if err != nil || !saved {
		t.Fatalf("expected toggle to add, saved=%v err=%v", saved, err)
	}
	saved, err = s.Toggle(item(1))
	if err != nil || saved {
		t.Fatalf("expected toggle to remove, saved=%v err=%v", saved, err)
	}
	if s.Contains(product.RemoteID(1)) || s.Len() != 1 {
		t.Fatalf("unexpected items %+v", s.Items())
	}
}

func TestRemovePreservesOrder(t *testing.T) {
	s, _ := newLoaded(t)
	for _, id := range []int64{1, 2, 3} {
		_ = s.Add(item(id))
	}
	_ = s.Remove(product.RemoteID(2))
	_ = s.Remove(product.RemoteID(42))

	items := s.Items()
	if len(items) != 2 || items[0].ID != "1" || items[1].ID != "3" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestMutationsBeforeLoadAreRejected(t *testing.T) {
	store := kv.New(kv.NewMemoryBackend(), zerolog.Nop())
	_ = store.Write(kv.KeyWishlist, []product.Product{item(9)})
	s := New(store, zerolog.Nop())

	if err := s.Add(item(1)); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	if _, err := s.Toggle(item(1)); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}

	s.Load()
	if !s.Contains(product.RemoteID(9)) || s.Len() != 1 {
		t.Fatalf("expected saved wishlist intact, got %+v", s.Items())
	}
}

func TestPersistenceAndClear(t *testing.T) {
	s, store := newLoaded(t)
	_ = s.Add(item(1))
	_ = s.Add(product.Product{ID: "my-abc", Title: "local"})

	reloaded := New(store, zerolog.Nop())
	reloaded.Load()
	if reloaded.Len() != 2 || !reloaded.Contains("my-abc") {
		t.Fatalf("unexpected reloaded items %+v", reloaded.Items())
	}

	if err := reloaded.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	again := New(store, zerolog.Nop())
	again.Load()
	if again.Len() != 0 {
		t.Fatalf("expected empty wishlist, got %+v", again.Items())
	}
}

func TestLoadToleratesUndefined(t *testing.T) {
	backend := kv.NewMemoryBackend()
	_ = backend.Set(kv.KeyWishlist, "undefined")
	s := New(kv.New(backend, zerolog.Nop()), zerolog.Nop())
	s.Load()
	if s.Len() != 0 {
		t.Fatalf("expected empty wishlist, got %d", s.Len())
	}
	if _, ok, _ := backend.Get(kv.KeyWishlist); ok {
		t.Fatal("expected corrupt value purged")
	}
}

func TestWishlistDedupProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("ids are unique after any add/toggle/remove sequence", prop.ForAll(
		func(ops []int) bool {
			s, _ := newLoaded(t)
			for _, op := range ops {
				p := item(int64(op/3%6) + 1)
				switch op % 3 {
				case 0:
					_ = s.Add(p)
				case 1:
					_, _ = s.Toggle(p)
				default:
					_ = s.Remove(p.ID)
				}
			}
			seen := make(map[product.ID]bool)
			for _, p := range s.Items() {
				if seen[p.ID] {
					return false
				}
				seen[p.ID] = true
			}
			return len(seen) == s.Len()
		},
		gen.SliceOf(gen.IntRange(0, 17)),
	))

	properties.Property("toggle twice is the identity", prop.ForAll(
		func(seed []int, id int) bool {
			s, _ := newLoaded(t)
			for _, v := range seed {
				_ = s.Add(item(int64(v)))
			}
			before := s.Contains(product.RemoteID(int64(id)))
			_, _ = s.Toggle(item(int64(id)))
			_, _ = s.Toggle(item(int64(id)))
			return s.Contains(product.RemoteID(int64(id))) == before
		},
		gen.SliceOf(gen.IntRange(1, 8)),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}

func TestConcurrentTogglesSettleByParity(t *testing.T) {
	for _, n := range []int{50, 51} {
		s, _ := newLoaded(t)
		var wg sync.WaitGroup
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Toggle(item(1)); err != nil {
					t.Errorf("Toggle: %v", err)
				}
			}()
		}
		wg.Wait()

		wantSaved := n%2 == 1
		if s.Contains(product.RemoteID(1)) != wantSaved {
			t.Fatalf("after %d toggles saved = %v, want %v", n, !wantSaved, wantSaved)
		}
		if s.Len() > 1 {
			t.Fatalf("after %d toggles len = %d, want at most 1", n, s.Len())
		}
	}
}
