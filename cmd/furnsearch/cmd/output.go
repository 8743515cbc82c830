package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/furnsearch/internal/domain/search/response"
)

const (
	formatJSON = "json"
	formatText = "text"
)

func validateFormat(format string) error {
	switch format {
	case formatJSON, formatText:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want json or text)", format)
	}
}

// writeResponse renders a search response. An error status is reported
// through the returned error so the process exits non-zero, except
// NO_RESULTS which is a valid outcome.
func writeResponse(w io.Writer, format string, resp response.Response) error {
	var err error
	if format == formatText {
		err = writeText(w, resp)
	} else {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(resp)
	}
	if err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	if !resp.IsSuccess() && resp.ErrorCode != response.CodeNoResults {
		return fmt.Errorf("%s: %s", resp.ErrorCode, resp.Message)
	}
	return nil
}

func writeText(w io.Writer, resp response.Response) error {
	var b strings.Builder
	if !resp.IsSuccess() {
		fmt.Fprintf(&b, "error %s: %s\n", resp.ErrorCode, resp.Message)
	}
	if m := resp.Metadata; m != nil {
		fmt.Fprintf(&b, "query %q  mode=%s  %dms", m.Query, m.SearchMode, m.ResponseTimeMS)
		if m.LLMFallbackUsed && m.EnhancedQuery != nil {
			fmt.Fprintf(&b, "  enhanced=%q", *m.EnhancedQuery)
		}
		b.WriteString("\n")
	}
	for _, r := range resp.Results {
		fmt.Fprintf(&b, "%3d. %-50s %10.2f %s  (score %.4f)\n",
			r.Rank, truncate(r.VariantName, 50), r.Price, r.Currency, r.Score)
	}
	if len(resp.RelatedTags) > 0 {
		labels := make([]string, len(resp.RelatedTags))
		for i, t := range resp.RelatedTags {
			labels[i] = fmt.Sprintf("%s [%s]", t.Label, t.Category)
		}
		fmt.Fprintf(&b, "related: %s\n", strings.Join(labels, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err //nolint:wrapcheck // wrapped by writeResponse
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func writeJSONLine(w io.Writer, v any) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
