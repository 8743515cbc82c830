package response

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFailure(t *testing.T) {
	r := Failure(CodeNoResults, "no results found for query")
	if r.IsSuccess() {
		t.Error("failure must not be success")
	}
	if r.Status != StatusError || r.ErrorCode != CodeNoResults {
		t.Errorf("got %+v", r)
	}
}

func TestMetadata_EnhancedQueryAlwaysSerialized(t *testing.T) {
	b, err := json.Marshal(Metadata{RequestID: "r", Query: "sofa"})
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if !strings.Contains(s, `"enhanced_query":null`) {
		t.Errorf("enhanced_query should serialize as null: %s", s)
	}
	if !strings.Contains(s, `"llm_fallback_used":false`) {
		t.Errorf("llm_fallback_used missing: %s", s)
	}
	if strings.Contains(s, "filters_applied") {
		t.Errorf("empty filters should be omitted: %s", s)
	}
}

func TestResponse_ErrorOmitsMetadata(t *testing.T) {
	b, err := json.Marshal(Failure(CodeEmptyQuery, "empty search query"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "search_metadata") {
		t.Errorf("unexpected metadata: %s", b)
	}
	if !strings.Contains(string(b), `"error_code":"EMPTY_QUERY"`) {
		t.Errorf("missing code: %s", b)
	}
}
