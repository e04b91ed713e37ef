package catalog

import (
	"strings"

	"github.com/five82/shelf/internal/product"
)

// Sort names a sort preset.
type Sort string

const (
	SortDefault   Sort = "default"
	SortPriceLow  Sort = "price-low"
	SortPriceHigh Sort = "price-high"
	SortRating    Sort = "rating"
	SortTitle     Sort = "title"
)

// SortPresets lists the presets in display order.
var SortPresets = []Sort{SortDefault, SortPriceLow, SortPriceHigh, SortRating, SortTitle}

// ParseSort maps a preset name to a Sort, falling back to SortDefault.
func ParseSort(s string) Sort {
	v := Sort(strings.ToLower(strings.TrimSpace(s)))
	for _, preset := range SortPresets {
		if v == preset {
			return v
		}
	}
	return SortDefault
}

// Params returns the remote sortBy and order values for the preset.
// SortDefault sends neither and keeps the catalog's own order.
func (s Sort) Params() (sortBy, order string) {
	switch s {
	case SortPriceLow:
		return "price", "asc"
	case SortPriceHigh:
		return "price", "desc"
	case SortRating:
		return "rating", "desc"
	case SortTitle:
		return "title", "asc"
	default:
		return "", ""
	}
}

// Label is the human-readable name of the preset.
func (s Sort) Label() string {
	switch s {
	case SortPriceLow:
		return "Price: low to high"
	case SortPriceHigh:
		return "Price: high to low"
	case SortRating:
		return "Top rated"
	case SortTitle:
		return "Title"
	default:
		return "Featured"
	}
}

// Query is the full set of browse inputs. Category and Sort are resolved
// remotely; Search and Page are applied locally.
type Query struct {
	Category string
	Sort     Sort
	Search   string
	Page     int
	PageSize int
}

// NewQuery returns the first page of the whole catalog.
func NewQuery(pageSize int) Query {
	return Query{Category: product.AllCategories, Sort: SortDefault, Page: 1, PageSize: pageSize}
}

// WithCategory changes the category, returning to page 1 when it differs.
func (q Query) WithCategory(category string) Query {
	category = strings.TrimSpace(category)
	if category == "" {
		category = product.AllCategories
	}
	if category != q.Category {
		q.Category = category
		q.Page = 1
	}
	return q
}

// WithSort changes the sort preset, returning to page 1 when it differs.
func (q Query) WithSort(s Sort) Query {
	if s != q.Sort {
		q.Sort = s
		q.Page = 1
	}
	return q
}

// WithSearch changes the search text, returning to page 1 when it differs.
func (q Query) WithSearch(text string) Query {
	if text != q.Search {
		q.Search = text
		q.Page = 1
	}
	return q
}

// WithPage moves to page n. Values below 1 become 1.
func (q Query) WithPage(n int) Query {
	q.Page = max(n, 1)
	return q
}

// SameRemote reports whether two queries need the same remote fetch.
func (q Query) SameRemote(o Query) bool {
	return q.Category == o.Category && q.Sort == o.Sort
}
