package mode

// Mode is the text retrieval strategy.
type Mode string

// Search mode constants.
const (
	// Hybrid fuses vector and lexical rankings via RRF.
	Hybrid   Mode = "hybrid"
	Semantic Mode = "semantic"
	Keyword  Mode = "keyword"
	// Image is vector-only retrieval against the image index.
	Image Mode = "image_similarity"
)

// IsValid checks if the mode is a supported text retrieval mode.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Semantic || m == Keyword
}

// UsesVector reports whether the mode needs a query embedding.
func (m Mode) UsesVector() bool {
	return m == Hybrid || m == Semantic || m == Image
}

// UsesLexical reports whether the mode runs a BM25 query.
func (m Mode) UsesLexical() bool {
	return m == Hybrid || m == Keyword
}
