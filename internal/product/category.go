package product

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AllCategories is the filter value that disables category filtering.
const AllCategories = "all"

// Category describes one entry of the remote category list.
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts both a bare slug string and a {slug,name} object.
func (c *Category) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var slug string
		if err := json.Unmarshal(data, &slug); err != nil {
			return err
		}
		*c = NormalizeCategory(slug)
		return nil
	}
	var raw struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("category: %w", err)
	}
	c.Slug = strings.TrimSpace(raw.Slug)
	c.Name = strings.TrimSpace(raw.Name)
	if c.Name == "" {
		c.Name = titleCase(c.Slug)
	}
	return nil
}

// NormalizeCategory turns a bare slug into a descriptor with a display name.
func NormalizeCategory(slug string) Category {
	slug = strings.TrimSpace(slug)
	return Category{Slug: slug, Name: titleCase(slug)}
}

// MatchesCategory reports whether a product belongs under the given filter.
func MatchesCategory(filter, category string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == AllCategories {
		return true
	}
	return strings.EqualFold(filter, strings.TrimSpace(category))
}

func titleCase(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}
