package product

// Default index layout.
const (
	DefaultTextIndex        = "furnsearch:products:idx"
	DefaultImageIndex       = "furnsearch:images:idx"
	DefaultKeyPrefix        = "furnsearch:variant:"
	DefaultImageKeyPrefix   = "furnsearch:image:"
	DefaultVectorField      = "text_embedding"
	DefaultImageVectorField = "image_embedding"
)

// FieldBoosts weights the soft filter clauses per matched field.
type FieldBoosts struct {
	VariantName float64 `yaml:"variant_name"`
	ProductName float64 `yaml:"product_name"`
	Category    float64 `yaml:"category"`
	Color       float64 `yaml:"color"`
	Material    float64 `yaml:"material"`
}

// DefaultFieldBoosts ranks name matches above attribute matches.
var DefaultFieldBoosts = FieldBoosts{
	VariantName: 4.0,
	ProductName: 3.5,
	Category:    3.0,
	Color:       2.5,
	Material:    2.5,
}

// productTypeFactor scales the category weight for product_type matches.
const productTypeFactor = 0.7

// Config names the indexes and fields the repository queries.
type Config struct {
	TextIndex        string
	ImageIndex       string
	KeyPrefix        string
	ImageKeyPrefix   string
	VectorField      string
	ImageVectorField string
	Boosts           FieldBoosts
}

func (c Config) withDefaults() Config {
	if c.TextIndex == "" {
		c.TextIndex = DefaultTextIndex
	}
	if c.ImageIndex == "" {
		c.ImageIndex = DefaultImageIndex
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	if c.ImageKeyPrefix == "" {
		c.ImageKeyPrefix = DefaultImageKeyPrefix
	}
	if c.VectorField == "" {
		c.VectorField = DefaultVectorField
	}
	if c.ImageVectorField == "" {
		c.ImageVectorField = DefaultImageVectorField
	}
	if c.Boosts == (FieldBoosts{}) {
		c.Boosts = DefaultFieldBoosts
	}
	return c
}
