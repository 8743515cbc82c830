package db

// Range is a hard numeric constraint. Nil bounds are open.
type Range struct {
	Field string
	Min   *float64
	Max   *float64
}

// Boost is a soft relevance clause: documents whose Field matches any of
// Terms rank higher, documents without a match are still returned.
type Boost struct {
	Field  string
	Terms  []string
	Weight float64
}

// KNNQuery is the input for vector similarity search.
// Ranges pre-filter the candidate set.
type KNNQuery struct {
	IndexName    string
	VectorField  string
	Vector       []float32
	K            int
	Ranges       []Range
	ReturnFields []string
}

// TextQuery is the input for BM25 text search.
type TextQuery struct {
	IndexName    string
	Query        string
	TopK         int
	Ranges       []Range
	Boosts       []Boost
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
