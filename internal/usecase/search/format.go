package search

import (
	"math"

	"github.com/kailas-cloud/furnsearch/internal/domain/search/candidate"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/response"
)

const maxTagResultNames = 5

func roundScore(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// formatResults turns ranked candidates into response rows with 1-based ranks.
// Image rows carry the matched image instead of the product's default image.
func formatResults(list []candidate.Candidate, currency string, image bool) []response.Result {
	out := make([]response.Result, 0, len(list))
	for i := range list {
		c := &list[i]
		p := c.Product()

		r := response.Result{
			Rank:                i + 1,
			Score:               roundScore(c.Score()),
			VariantID:           c.ID(),
			ProductID:           p.ProductID,
			ProductName:         p.ProductName,
			VariantName:         p.VariantName,
			Description:         p.Description,
			Price:               p.Price,
			Currency:            p.Currency,
			ImageURL:            p.DefaultImage(),
			FrontendCategory:    p.FrontendCategory,
			FrontendSubcategory: p.FrontendSubcategory,
			BackendCategory:     p.BackendCategory,
			ProductType:         p.ProductType,
			Material:            p.Material,
			ColorTone:           p.ColorTone,
			Collection:          p.Collection,
			VariantURL:          p.VariantURL,
			StockStatus:         p.StockStatus,
			ReviewRating:        p.ReviewRating,
			ReviewCount:         p.ReviewCount,
		}
		if r.Currency == "" {
			r.Currency = currency
		}
		if image {
			if p.ImageURL != "" {
				r.ImageURL = p.ImageURL
			}
			r.ImageType = p.ImageType
			r.ImagePosition = p.ImagePosition
			if r.ImagePosition == 0 {
				r.ImagePosition = 1
			}
			r.IsDefault = p.IsDefault
		}
		out = append(out, r)
	}
	return out
}

func resultNames(list []candidate.Candidate) []string {
	n := min(len(list), maxTagResultNames)
	names := make([]string, 0, n)
	for i := range n {
		if name := list[i].Product().ProductName; name != "" {
			names = append(names, name)
		}
	}
	return names
}
