package ui

import (
	"testing"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/product"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"longer title", 8, "longe..."},
		{"abc", 2, "ab"},
		{"anything", 0, ""},
		{"crème brûlée", 6, "crè..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestNextCategory(t *testing.T) {
	cats := []product.Category{{Slug: "beauty"}, {Slug: "groceries"}}
	tests := []struct {
		current string
		step    int
		want    string
	}{
		{product.AllCategories, 1, "beauty"},
		{"groceries", 1, product.AllCategories},
		{product.AllCategories, -1, "groceries"},
		{"gone", 1, product.AllCategories},
	}
	for _, tt := range tests {
		if got := nextCategory(cats, tt.current, tt.step); got != tt.want {
			t.Errorf("nextCategory(%q, %d) = %q, want %q", tt.current, tt.step, got, tt.want)
		}
	}
}

func TestNextSortCycles(t *testing.T) {
	s := catalog.SortDefault
	for range catalog.SortPresets {
		s = nextSort(s)
	}
	if s != catalog.SortDefault {
		t.Fatalf("cycling every preset should return to default, got %q", s)
	}
}

func TestNextViewWraps(t *testing.T) {
	if got := nextView(ViewActivity, 1); got != ViewCatalog {
		t.Fatalf("nextView(activity, 1) = %v", got)
	}
	if got := nextView(ViewCatalog, -1); got != ViewActivity {
		t.Fatalf("nextView(catalog, -1) = %v", got)
	}
}
