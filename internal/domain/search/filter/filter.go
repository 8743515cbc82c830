package filter

import (
	"fmt"

	"github.com/kailas-cloud/furnsearch/internal/domain/catalog"
)

// Set is the structured constraint set extracted from a query.
// Price bounds are hard constraints at retrieval time; every other
// dimension is a soft relevance boost. The zero value means "no constraints".
type Set struct {
	PriceMin   *float64 `json:"price_min,omitempty"`
	PriceMax   *float64 `json:"price_max,omitempty"`
	Colors     []string `json:"colors,omitempty"`
	Materials  []string `json:"materials,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Sizes      []string `json:"sizes,omitempty"`
	Styles     []string `json:"styles,omitempty"`
	Rooms      []string `json:"rooms,omitempty"`
	Features   []string `json:"features,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
}

// IsEmpty reports whether the set carries no constraints.
func (s Set) IsEmpty() bool {
	if s.HasPrice() {
		return false
	}
	for _, d := range catalog.FilterDimensions {
		if len(s.Values(d)) > 0 {
			return false
		}
	}
	return true
}

// HasPrice reports whether either price bound is present.
func (s Set) HasPrice() bool {
	return s.PriceMin != nil || s.PriceMax != nil
}

// Values returns the matched values for a catalog dimension.
func (s Set) Values(d catalog.Dimension) []string {
	switch d {
	case catalog.Colors:
		return s.Colors
	case catalog.Materials:
		return s.Materials
	case catalog.Categories:
		return s.Categories
	case catalog.Sizes:
		return s.Sizes
	case catalog.Styles:
		return s.Styles
	case catalog.Rooms:
		return s.Rooms
	case catalog.Features:
		return s.Features
	case catalog.Conditions:
		return s.Conditions
	default:
		return nil
	}
}

// SetValues assigns the matched values for a catalog dimension.
// Unknown dimensions are ignored.
func (s *Set) SetValues(d catalog.Dimension, values []string) {
	switch d {
	case catalog.Colors:
		s.Colors = values
	case catalog.Materials:
		s.Materials = values
	case catalog.Categories:
		s.Categories = values
	case catalog.Sizes:
		s.Sizes = values
	case catalog.Styles:
		s.Styles = values
	case catalog.Rooms:
		s.Rooms = values
	case catalog.Features:
		s.Features = values
	case catalog.Conditions:
		s.Conditions = values
	}
}

// Validate checks the price bounds: non-negative and min <= max.
func (s Set) Validate() error {
	if s.PriceMin != nil && *s.PriceMin < 0 {
		return fmt.Errorf("price_min must be non-negative, got %g", *s.PriceMin)
	}
	if s.PriceMax != nil && *s.PriceMax < 0 {
		return fmt.Errorf("price_max must be non-negative, got %g", *s.PriceMax)
	}
	if s.PriceMin != nil && s.PriceMax != nil && *s.PriceMin > *s.PriceMax {
		return fmt.Errorf("price_min %g exceeds price_max %g", *s.PriceMin, *s.PriceMax)
	}
	return nil
}
