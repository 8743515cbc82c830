// Package tag defines refinement suggestions returned with search results.
package tag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/furnsearch/internal/domain/catalog"
)

// Category is the kind of refinement a tag represents.
type Category string

// Tag categories.
const (
	CategoryCategory   Category = "category"
	CategoryMaterial   Category = "material"
	CategoryStyle      Category = "style"
	CategoryColor      Category = "color"
	CategoryPriceRange Category = "price_range"
)

// ParseCategory maps a raw type name onto a known category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryCategory, CategoryMaterial, CategoryStyle, CategoryColor, CategoryPriceRange:
		return c, nil
	default:
		return "", fmt.Errorf("unknown tag type %q", s)
	}
}

// CatalogDimension returns the catalog list a tag of this category is validated against.
func (c Category) CatalogDimension() catalog.Dimension {
	switch c {
	case CategoryCategory:
		return catalog.Categories
	case CategoryMaterial:
		return catalog.Materials
	case CategoryStyle:
		return catalog.Styles
	case CategoryColor:
		return catalog.Colors
	case CategoryPriceRange:
		return catalog.PriceRanges
	default:
		return ""
	}
}

// Tag is a suggested query refinement.
type Tag struct {
	Label     string   `json:"tag"`
	Category  Category `json:"type"`
	Relevance float64  `json:"relevance_score"`
}

// New creates a tag, clamping relevance into [0,1].
func New(label string, category Category, relevance float64) Tag {
	switch {
	case relevance < 0:
		relevance = 0
	case relevance > 1:
		relevance = 1
	}
	return Tag{Label: label, Category: category, Relevance: relevance}
}

// SortAndDedup drops repeated labels (case-insensitive, first occurrence wins),
// orders by relevance descending keeping input order on ties, and truncates to
// limit when limit > 0.
func SortAndDedup(tags []Tag, limit int) []Tag {
	seen := make(map[string]struct{}, len(tags))
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		key := strings.ToLower(t.Label)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Relevance > out[j].Relevance
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
