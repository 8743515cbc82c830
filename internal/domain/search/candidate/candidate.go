package candidate

// Image is one product image reference.
type Image struct {
	URL       string `json:"url"`
	IsDefault bool   `json:"is_default,omitempty"`
}

// Product is the catalog payload attached to a retrieved item.
// The image index carries the per-image fields (ImageURL and friends).
type Product struct {
	ProductID           string  `json:"product_id"`
	ProductName         string  `json:"product_name"`
	VariantName         string  `json:"variant_name"`
	Description         string  `json:"description"`
	Price               float64 `json:"price"`
	Currency            string  `json:"currency"`
	FrontendCategory    string  `json:"frontend_category"`
	FrontendSubcategory string  `json:"frontend_subcategory"`
	BackendCategory     string  `json:"backend_category"`
	ProductType         string  `json:"product_type"`
	Material            string  `json:"material"`
	ColorTone           string  `json:"color_tone"`
	Collection          string  `json:"collection"`
	VariantURL          string  `json:"variant_url"`
	StockStatus         string  `json:"stock_status"`
	ReviewRating        float64 `json:"review_rating"`
	ReviewCount         int     `json:"review_count"`
	Images              []Image `json:"images,omitempty"`

	ImageURL      string `json:"image_url,omitempty"`
	ImageType     string `json:"image_type,omitempty"`
	ImagePosition int    `json:"image_position,omitempty"`
	IsDefault     bool   `json:"is_default,omitempty"`
}

// DefaultImage returns the image flagged as default, else the first one.
func (p Product) DefaultImage() string {
	for _, img := range p.Images {
		if img.IsDefault {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return p.ImageURL
}

// Candidate is one scored retrieval hit. The score scale depends on
// the signal that produced it (cosine similarity, BM25, RRF).
type Candidate struct {
	id      string
	score   float64
	product Product
}

// New creates a candidate keyed by variant id.
func New(id string, score float64, product Product) Candidate {
	return Candidate{id: id, score: score, product: product}
}

// ID returns the variant identifier.
func (c *Candidate) ID() string { return c.id }

// Score returns the signal-specific relevance score.
func (c *Candidate) Score() float64 { return c.score }

// Product returns the catalog payload.
func (c *Candidate) Product() Product { return c.product }

// WithScore returns a copy carrying a different score.
func (c Candidate) WithScore(score float64) Candidate {
	c.score = score
	return c
}

// TopScore returns the score of the first candidate, or 0 for an empty list.
func TopScore(list []Candidate) float64 {
	if len(list) == 0 {
		return 0
	}
	return list[0].Score()
}
