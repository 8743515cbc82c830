// Package response defines the structured payload returned for every search.
package response

import (
	"github.com/kailas-cloud/furnsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/furnsearch/internal/domain/tag"
)

// Status is the top-level outcome.
type Status string

// Status values.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrorCode classifies a failed search.
type ErrorCode string

// Error codes.
const (
	CodeEmptyQuery    ErrorCode = "EMPTY_QUERY"
	CodeInvalidImage  ErrorCode = "INVALID_IMAGE"
	CodeNoResults     ErrorCode = "NO_RESULTS"
	CodeSearchFailed  ErrorCode = "SEARCH_FAILED"
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// Response is the payload returned by the search orchestrator.
type Response struct {
	Status       Status    `json:"status"`
	ErrorCode    ErrorCode `json:"error_code,omitempty"`
	Message      string    `json:"message,omitempty"`
	TotalResults int       `json:"total_results"`
	Results      []Result  `json:"results"`
	RelatedTags  []tag.Tag `json:"related_tags"`
	Metadata     *Metadata `json:"search_metadata,omitempty"`
}

// Metadata describes how the results were produced.
type Metadata struct {
	RequestID       string      `json:"request_id"`
	Query           string      `json:"query,omitempty"`
	SearchMode      string      `json:"search_mode,omitempty"`
	SearchType      string      `json:"search_type,omitempty"`
	FiltersApplied  *filter.Set `json:"filters_applied,omitempty"`
	LLMFallbackUsed bool        `json:"llm_fallback_used"`
	EnhancedQuery   *string     `json:"enhanced_query"`
	ResponseTimeMS  int64       `json:"response_time_ms"`
}

// Result is one formatted hit.
type Result struct {
	Rank                int     `json:"rank"`
	Score               float64 `json:"score"`
	VariantID           string  `json:"variant_id"`
	ProductID           string  `json:"product_id"`
	ProductName         string  `json:"product_name"`
	VariantName         string  `json:"variant_name"`
	Description         string  `json:"description"`
	Price               float64 `json:"price"`
	Currency            string  `json:"currency"`
	ImageURL            string  `json:"image_url"`
	ImageType           string  `json:"image_type,omitempty"`
	ImagePosition       int     `json:"image_position,omitempty"`
	IsDefault           bool    `json:"is_default,omitempty"`
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
}

// Failure builds an error response.
func Failure(code ErrorCode, message string) Response {
	return Response{Status: StatusError, ErrorCode: code, Message: message}
}

// IsSuccess reports whether the search produced results.
func (r Response) IsSuccess() bool { return r.Status == StatusSuccess }
