// Package catalog holds the fixed set of valid product attribute values.
// It is the single source of truth for filter matching and tag validation.
package catalog

import "strings"

// Dimension names one attribute list of the catalog.
type Dimension string

// Catalog dimensions.
const (
	Colors      Dimension = "colors"
	Materials   Dimension = "materials"
	Categories  Dimension = "categories"
	Sizes       Dimension = "sizes"
	Styles      Dimension = "styles"
	Rooms       Dimension = "rooms"
	Features    Dimension = "features"
	Conditions  Dimension = "conditions"
	PriceRanges Dimension = "price_ranges"
)

// FilterDimensions lists the dimensions matched against raw queries, in extraction order.
var FilterDimensions = []Dimension{Colors, Materials, Categories, Sizes, Styles, Rooms, Features, Conditions}

// Catalog is the externally-maintained list of valid attribute values.
type Catalog struct {
	Colors      []string `yaml:"colors" json:"colors,omitempty"`
	Materials   []string `yaml:"materials" json:"materials,omitempty"`
	Categories  []string `yaml:"categories" json:"categories,omitempty"`
	Sizes       []string `yaml:"sizes" json:"sizes,omitempty"`
	Styles      []string `yaml:"styles" json:"styles,omitempty"`
	Rooms       []string `yaml:"rooms" json:"rooms,omitempty"`
	Features    []string `yaml:"features" json:"features,omitempty"`
	Conditions  []string `yaml:"conditions" json:"conditions,omitempty"`
	PriceRanges []string `yaml:"price_ranges" json:"price_ranges,omitempty"`
}

// Values returns the value list for a dimension (nil for unknown dimensions).
func (c Catalog) Values(d Dimension) []string {
	switch d {
	case Colors:
		return c.Colors
	case Materials:
		return c.Materials
	case Categories:
		return c.Categories
	case Sizes:
		return c.Sizes
	case Styles:
		return c.Styles
	case Rooms:
		return c.Rooms
	case Features:
		return c.Features
	case Conditions:
		return c.Conditions
	case PriceRanges:
		return c.PriceRanges
	default:
		return nil
	}
}

// Contains reports whether value is listed under d, ignoring case.
func (c Catalog) Contains(d Dimension, value string) bool {
	_, ok := c.Canonical(d, value)
	return ok
}

// Canonical returns the catalog spelling of value under d, ignoring case.
func (c Catalog) Canonical(d Dimension, value string) (string, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", false
	}
	for _, known := range c.Values(d) {
		if strings.EqualFold(known, v) {
			return known, true
		}
	}
	return "", false
}

// WithDefaults fills empty dimensions from legacy lists. Returns the names of
// the dimensions that were filled, so callers can log the deprecation.
func (c Catalog) WithDefaults(legacy map[Dimension][]string) (Catalog, []Dimension) {
	var filled []Dimension
	fill := func(d Dimension, dst *[]string) {
		if len(*dst) == 0 && len(legacy[d]) > 0 {
			*dst = append([]string(nil), legacy[d]...)
			filled = append(filled, d)
		}
	}
	fill(Colors, &c.Colors)
	fill(Materials, &c.Materials)
	fill(Categories, &c.Categories)
	fill(Sizes, &c.Sizes)
	fill(Styles, &c.Styles)
	fill(Rooms, &c.Rooms)
	fill(Features, &c.Features)
	fill(Conditions, &c.Conditions)
	fill(PriceRanges, &c.PriceRanges)
	return c, filled
}
