// Package product retrieves catalog variants from the search indexes.
package product

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/furnsearch/internal/db"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/candidate"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/filter"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

const priceField = "price"

var returnFields = []string{
	"variant_id", "product_id", "product_name", "variant_name", "description",
	"price", "currency", "frontend_category", "frontend_subcategory",
	"backend_category", "product_type", "material", "color_tone", "collection",
	"variant_url", "stock_status", "review_rating", "review_count", "images",
}

var imageReturnFields = append(append([]string(nil), returnFields...),
	"image_url", "image_type", "image_position", "is_default")

// Repo implements usecase/search.Retriever.
type Repo struct {
	store store
	cfg   Config
}

// New creates a product repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg.withDefaults()}
}

// VectorSearch runs KNN against the text-embedding index. Only the price
// range pre-filters; KNN has no optional clauses to carry soft boosts.
func (r *Repo) VectorSearch(
	ctx context.Context, vector []float32, filters filter.Set, k int,
) ([]candidate.Candidate, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.cfg.TextIndex,
		VectorField:  r.cfg.VectorField,
		Vector:       vector,
		K:            k,
		Ranges:       priceRanges(filters),
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search %s: %w", r.cfg.TextIndex, err)
	}
	return parseResults(sr, r.cfg.KeyPrefix), nil
}

// LexicalSearch runs BM25 with price as a hard range and every categorical
// filter as an optional weighted clause.
func (r *Repo) LexicalSearch(
	ctx context.Context, text string, filters filter.Set, k int,
) ([]candidate.Candidate, error) {
	sr, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    r.cfg.TextIndex,
		Query:        text,
		TopK:         k,
		Ranges:       priceRanges(filters),
		Boosts:       r.boosts(filters),
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("lexical search %s: %w", r.cfg.TextIndex, err)
	}
	return parseResults(sr, r.cfg.KeyPrefix), nil
}

// ImageSearch runs KNN against the image-embedding index.
func (r *Repo) ImageSearch(ctx context.Context, vector []float32, k int) ([]candidate.Candidate, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.cfg.ImageIndex,
		VectorField:  r.cfg.ImageVectorField,
		Vector:       vector,
		K:            k,
		ReturnFields: imageReturnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("image search %s: %w", r.cfg.ImageIndex, err)
	}
	return parseResults(sr, r.cfg.ImageKeyPrefix), nil
}

func priceRanges(f filter.Set) []db.Range {
	if !f.HasPrice() {
		return nil
	}
	return []db.Range{{Field: priceField, Min: f.PriceMin, Max: f.PriceMax}}
}

// boosts maps categories, colors and materials onto weighted clauses.
// The remaining dimensions are already part of the query text.
func (r *Repo) boosts(f filter.Set) []db.Boost {
	w := r.cfg.Boosts
	var out []db.Boost
	names := func(terms []string) {
		out = append(out,
			db.Boost{Field: "variant_name", Terms: terms, Weight: w.VariantName},
			db.Boost{Field: "product_name", Terms: terms, Weight: w.ProductName},
		)
	}

	if len(f.Categories) > 0 {
		names(f.Categories)
		out = append(out,
			db.Boost{Field: "frontend_category", Terms: f.Categories, Weight: w.Category},
			db.Boost{Field: "frontend_subcategory", Terms: f.Categories, Weight: w.Category},
			db.Boost{Field: "product_type", Terms: f.Categories, Weight: w.Category * productTypeFactor},
		)
	}
	if len(f.Colors) > 0 {
		names(f.Colors)
		out = append(out, db.Boost{Field: "color_tone", Terms: f.Colors, Weight: w.Color})
	}
	if len(f.Materials) > 0 {
		names(f.Materials)
		out = append(out, db.Boost{Field: "material", Terms: f.Materials, Weight: w.Material})
	}
	return out
}

// parseResults converts db.SearchResult into candidates, keeping index order.
func parseResults(sr *db.SearchResult, prefix string) []candidate.Candidate {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	out := make([]candidate.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := entry.Fields["variant_id"]
		if id == "" {
			id = strings.TrimPrefix(entry.Key, prefix)
		}
		out = append(out, candidate.New(id, entry.Score, parseProduct(entry.Fields)))
	}
	return out
}

// parseProduct reads a product from flat hash fields. Malformed numerics read as zero.
func parseProduct(f map[string]string) candidate.Product {
	p := candidate.Product{
		ProductID:           f["product_id"],
		ProductName:         f["product_name"],
		VariantName:         f["variant_name"],
		Description:         f["description"],
		Price:               parseFloat(f["price"]),
		Currency:            f["currency"],
		FrontendCategory:    f["frontend_category"],
		FrontendSubcategory: f["frontend_subcategory"],
		BackendCategory:     f["backend_category"],
		ProductType:         f["product_type"],
		Material:            f["material"],
		ColorTone:           f["color_tone"],
		Collection:          f["collection"],
		VariantURL:          f["variant_url"],
		StockStatus:         f["stock_status"],
		ReviewRating:        parseFloat(f["review_rating"]),
		ReviewCount:         int(parseFloat(f["review_count"])),
		ImageURL:            f["image_url"],
		ImageType:           f["image_type"],
		ImagePosition:       int(parseFloat(f["image_position"])),
		IsDefault:           parseBool(f["is_default"]),
	}
	if raw := f["images"]; raw != "" {
		var images []candidate.Image
		if err := json.Unmarshal([]byte(raw), &images); err == nil {
			p.Images = images
		}
	}
	return p
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
