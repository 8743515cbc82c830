package tags

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/kailas-cloud/furnsearch/internal/domain/catalog"
	"github.com/kailas-cloud/furnsearch/internal/domain/tag"
)

// Relevance scores of the pre-computed bundles.
const (
	relatedCategoryRelevance = 0.9
	materialRelevance        = 0.7
	styleRelevance           = 0.6
	priceRelevance           = 0.5
	patternTopRelevance      = 0.9
	patternRelevanceStep     = 0.1
	patternMinRelevance      = 0.1
)

var (
	defaultStyles     = []string{"Modern", "Traditional"}
	defaultMaterials  = []string{"Wood", "Fabric"}
	defaultPriceRange = "Under $1,000"
)

func genericTags() []tag.Tag {
	return []tag.Tag{
		tag.New("Modern", tag.CategoryStyle, 0.6),
		tag.New("Under $1,000", tag.CategoryPriceRange, 0.5),
		tag.New("Wood", tag.CategoryMaterial, 0.5),
		tag.New("Fabric", tag.CategoryMaterial, 0.5),
		tag.New("Leather", tag.CategoryMaterial, 0.5),
	}
}

// Index is the tier-1 pre-computed tag lookup. It is immutable after
// construction and safe for concurrent reads.
type Index struct {
	CategoryTags map[string][]tag.Tag `json:"category_tags"`
	PatternTags  map[string][]tag.Tag `json:"query_pattern_tags"`
	TermToTags   map[string][]string  `json:"term_to_tags"`
}

// BuildIndex pre-computes category bundles and query-pattern bundles.
func BuildIndex(cfg IndexConfig) *Index {
	related := cfg.RelatedCategories
	if related == nil {
		related = DefaultRelatedCategories
	}
	materials := cfg.CategoryMaterials
	if materials == nil {
		materials = DefaultCategoryMaterials
	}
	patterns := cfg.QueryPatterns
	if patterns == nil {
		patterns = DefaultQueryPatterns
	}

	idx := &Index{
		CategoryTags: make(map[string][]tag.Tag, len(cfg.Catalog.Categories)),
		PatternTags:  make(map[string][]tag.Tag, len(patterns)),
		TermToTags:   make(map[string][]string),
	}

	for _, c := range cfg.Catalog.Categories {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" {
			continue
		}
		idx.CategoryTags[key] = categoryBundle(c, related[key], materials[key])
	}

	for term, labels := range patterns {
		key := strings.ToLower(strings.TrimSpace(term))
		if key == "" {
			continue
		}
		bundle := make([]tag.Tag, 0, len(labels))
		for i, label := range labels {
			rel := max(patternTopRelevance-float64(i)*patternRelevanceStep, patternMinRelevance)
			bundle = append(bundle, tag.New(label, inferCategory(label, cfg.Catalog), rel))
		}
		idx.PatternTags[key] = bundle
	}

	idx.buildInverted()
	return idx
}

func categoryBundle(category string, related, materials []string) []tag.Tag {
	if len(related) == 0 {
		related = []string{category}
	}
	if len(materials) == 0 {
		materials = defaultMaterials
	}

	bundle := make([]tag.Tag, 0, 8)
	for _, c := range related[:min(3, len(related))] {
		bundle = append(bundle, tag.New(c, tag.CategoryCategory, relatedCategoryRelevance))
	}
	for _, m := range materials[:min(2, len(materials))] {
		bundle = append(bundle, tag.New(m, tag.CategoryMaterial, materialRelevance))
	}
	for _, s := range defaultStyles {
		bundle = append(bundle, tag.New(s, tag.CategoryStyle, styleRelevance))
	}
	bundle = append(bundle, tag.New(defaultPriceRange, tag.CategoryPriceRange, priceRelevance))
	return bundle
}

// inferCategory guesses a tag's type: price phrases first, then catalog
// membership, defaulting to category.
func inferCategory(label string, c catalog.Catalog) tag.Category {
	l := strings.ToLower(label)
	if strings.Contains(l, "under") || strings.Contains(l, "over") || strings.Contains(l, "$") {
		return tag.CategoryPriceRange
	}
	for _, cat := range []tag.Category{tag.CategoryCategory, tag.CategoryMaterial, tag.CategoryStyle, tag.CategoryColor} {
		if c.Contains(cat.CatalogDimension(), label) {
			return cat
		}
	}
	return tag.CategoryCategory
}

func (idx *Index) buildInverted() {
	add := func(term string, bundle []tag.Tag) {
		for _, t := range bundle {
			idx.TermToTags[term] = append(idx.TermToTags[term], t.Label)
		}
	}
	for term, bundle := range idx.CategoryTags {
		add(term, bundle)
	}
	for term, bundle := range idx.PatternTags {
		add(term, bundle)
	}
	for term, labels := range idx.TermToTags {
		sort.Strings(labels)
		idx.TermToTags[term] = compactStrings(labels)
	}
}

func compactStrings(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}

// tokenize lower-cases and splits on whitespace, trimming edge punctuation.
func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// HasTagsForQuery reports whether any query token hits the index.
func (idx *Index) HasTagsForQuery(query string) bool {
	for _, term := range tokenize(query) {
		if _, ok := idx.CategoryTags[term]; ok {
			return true
		}
		if _, ok := idx.PatternTags[term]; ok {
			return true
		}
	}
	return false
}

// ShouldUseLLM is the inverse of HasTagsForQuery.
func (idx *Index) ShouldUseLLM(query string) bool {
	return !idx.HasTagsForQuery(query)
}

// Lookup unions the bundles of every matching token (category bundles first,
// then pattern bundles), dedups by label, sorts by relevance and truncates.
// When nothing matches it returns the generic popular tags.
func (idx *Index) Lookup(query string, limit int) []tag.Tag {
	terms := tokenize(query)

	var all []tag.Tag
	for _, term := range terms {
		all = append(all, idx.CategoryTags[term]...)
	}
	for _, term := range terms {
		all = append(all, idx.PatternTags[term]...)
	}
	if len(all) == 0 {
		all = genericTags()
	}
	return tag.SortAndDedup(all, limit)
}

// Stats returns the number of indexed categories and query patterns.
func (idx *Index) Stats() (categories, patterns int) {
	return len(idx.CategoryTags), len(idx.PatternTags)
}

// Export writes the index as indented JSON.
func (idx *Index) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(idx); err != nil {
		return fmt.Errorf("encode tag index: %w", err)
	}
	return nil
}

// LoadIndex reads an index written by Export.
func LoadIndex(r io.Reader) (*Index, error) {
	var idx Index
	if err := json.NewDecoder(r).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decode tag index: %w", err)
	}
	if idx.CategoryTags == nil {
		idx.CategoryTags = map[string][]tag.Tag{}
	}
	if idx.PatternTags == nil {
		idx.PatternTags = map[string][]tag.Tag{}
	}
	if idx.TermToTags == nil {
		idx.TermToTags = map[string][]string{}
	}
	return &idx, nil
}
