package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/shelf/internal/product"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	products := []product.Product{{ID: "1", Tags: []string{"a"}}, {ID: "2"}}
	categories := []product.Category{{Slug: "beauty", Name: "Beauty"}}

	before := time.Now()
	s.Update(products, categories, nil)

	snap := s.Snapshot()
	if !snap.HasCatalog || len(snap.Categories) != 1 {
		t.Fatalf("snapshot = %#v, want catalog with 1 category", snap)
	}
	if len(snap.Products) != 2 || snap.Products[0].ID != "1" {
		t.Fatalf("snapshot products = %#v, want 2 items", snap.Products)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Products[0].ID = "999"
	snap.Products[0].Tags[0] = "changed"
	snap2 := s.Snapshot()
	if snap2.Products[0].ID != "1" || snap2.Products[0].Tags[0] != "a" {
		t.Fatalf("Snapshot should clone products; got %#v", snap2.Products[0])
	}
}

func TestStore_NilCategoriesKeepPrevious(t *testing.T) {
	var s Store
	s.Update(nil, []product.Category{{Slug: "beauty"}}, nil)
	s.Update([]product.Product{{ID: "1"}}, nil, nil)

	snap := s.Snapshot()
	if len(snap.Categories) != 1 || len(snap.Products) != 1 {
		t.Fatalf("snapshot = %#v", snap)
	}
}

func TestStore_ReplaceKeepsBookkeeping(t *testing.T) {
	var s Store
	s.Update([]product.Product{{ID: "1"}}, nil, nil)
	s.Update(nil, nil, errors.New("offline"))
	s.Replace([]product.Product{{ID: "my-1"}, {ID: "1"}})

	snap := s.Snapshot()
	if len(snap.Products) != 2 || snap.ConsecutiveFailures != 1 || snap.LastError == nil {
		t.Fatalf("snapshot = %#v", snap)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update([]product.Product{{ID: "1"}}, []product.Category{{Slug: "x"}}, nil)
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.Update(nil, nil, origErr)

	snap := s.Snapshot()
	if snap.HasCatalog != prev.HasCatalog {
		t.Fatalf("HasCatalog changed on error")
	}
	if len(snap.Products) != 1 || snap.Products[0].ID != "1" {
		t.Fatalf("products changed on error: got %#v want %#v", snap.Products, prev.Products)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("fresh store should be online, got %#v", snap)
	}

	s.Update(nil, nil, errors.New("fail 1"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("one failure should not be offline, got %d", snap.ConsecutiveFailures)
	}

	s.Update(nil, nil, errors.New("fail 2"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("two failures should be offline, got %d", snap.ConsecutiveFailures)
	}

	s.Update([]product.Product{{ID: "1"}}, nil, nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("success should reset failures, got %d", snap.ConsecutiveFailures)
	}
}
