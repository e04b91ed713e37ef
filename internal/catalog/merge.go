package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/five82/shelf/internal/product"
)

// Merge builds the merged view from one remote fetch and the local state.
//
// Remote products in snap.Deleted are dropped and overrides are applied to
// the rest. Local products owned by owner and matching category come
// first, skipping any whose id also appears in the remote fetch. Remote
// order is preserved and a repeated remote id keeps its first occurrence.
func Merge(remote []product.Product, snap Snapshot, owner int64, category string) []product.Product {
	remoteIDs := make(map[product.ID]bool, len(remote))
	for _, p := range remote {
		remoteIDs[p.ID] = true
	}

	out := make([]product.Product, 0, len(remote)+len(snap.Local))
	if owner != 0 {
		for _, p := range snap.Local {
			if p.OwnerID != owner || remoteIDs[p.ID] {
				continue
			}
			if !product.MatchesCategory(category, p.Category) {
				continue
			}
			out = append(out, p.Clone())
		}
	}

	seen := make(map[product.ID]bool, len(remote))
	for _, p := range remote {
		if snap.Deleted[p.ID] || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		if pt, ok := snap.Overrides[p.ID]; ok {
			out = append(out, pt.Apply(p))
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}

// Search keeps products whose title contains text, ignoring case. Blank
// text returns items unchanged.
func Search(items []product.Product, text string) []product.Product {
	text = strings.TrimSpace(text)
	if text == "" {
		return items
	}
	fold := cases.Fold()
	needle := fold.String(text)
	out := make([]product.Product, 0, len(items))
	for _, p := range items {
		if strings.Contains(fold.String(p.Title), needle) {
			out = append(out, p)
		}
	}
	return out
}

// DefaultPageSize is used when a page size is not positive.
const DefaultPageSize = 12

// Page is one slice of a product sequence.
type Page struct {
	Items      []product.Product
	Number     int
	Size       int
	TotalItems int
	TotalPages int
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// Paginate slices items into pages of size and returns page number. The
// page number is clamped into range; an empty sequence has one empty page.
func Paginate(items []product.Product, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := max((total+size-1)/size, 1)
	number = min(max(number, 1), pages)

	start := min((number-1)*size, total)
	end := min(start+size, total)
	return Page{
		Items:      items[start:end],
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: pages,
	}
}
