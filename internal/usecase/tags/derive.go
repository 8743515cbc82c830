package tags

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/furnsearch/internal/domain/search/candidate"
	"github.com/kailas-cloud/furnsearch/internal/domain/tag"
)

const (
	deriveWindow   = 10
	deriveMaxTags  = 10
	deriveFraction = 10.0
)

// FromResults derives tags from attribute frequencies of the top results.
// Used for image queries, which have no text to look up.
func FromResults(results []candidate.Candidate) []tag.Tag {
	if len(results) > deriveWindow {
		results = results[:deriveWindow]
	}
	if len(results) == 0 {
		return []tag.Tag{}
	}

	var categories, materials, colors []string
	var priceSum float64
	for _, r := range results {
		p := r.Product()
		categories = append(categories, p.FrontendCategory)
		materials = append(materials, p.Material)
		colors = append(colors, p.ColorTone)
		priceSum += p.Price
	}

	var out []tag.Tag
	out = append(out, frequent(categories, 3, tag.CategoryCategory, 0.9)...)
	out = append(out, frequent(materials, 2, tag.CategoryMaterial, 0.8)...)
	out = append(out, frequent(colors, 2, tag.CategoryColor, 0.7)...)
	out = append(out, tag.New("Modern", tag.CategoryStyle, 0.6))

	out = append(out, tag.New(priceLabel(priceSum/float64(len(results))), tag.CategoryPriceRange, 0.5))

	// A value shared by dimensions (e.g. Walnut as material and color) keeps its first, higher-ranked group.
	return tag.SortAndDedup(out, deriveMaxTags)
}

// frequent returns the n most common non-empty values, ties in first-seen
// order, with relevance min(ceiling, count/10).
func frequent(values []string, n int, category tag.Category, ceiling float64) []tag.Tag {
	type bucket struct {
		label string
		count int
	}

	index := make(map[string]int)
	var buckets []bucket
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if i, ok := index[v]; ok {
			buckets[i].count++
			continue
		}
		index[v] = len(buckets)
		buckets = append(buckets, bucket{label: v, count: 1})
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].count > buckets[j].count
	})

	out := make([]tag.Tag, 0, n)
	for _, b := range buckets[:min(n, len(buckets))] {
		out = append(out, tag.New(b.label, category, min(ceiling, float64(b.count)/deriveFraction)))
	}
	return out
}

func priceLabel(mean float64) string {
	switch {
	case mean < 1000:
		return "Under $1,000"
	case mean < 2000:
		return "Under $2,000"
	default:
		return "Premium"
	}
}
