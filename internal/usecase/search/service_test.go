package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/furnsearch/internal/domain"
	"github.com/kailas-cloud/furnsearch/internal/domain/catalog"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/candidate"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/response"
	"github.com/kailas-cloud/furnsearch/internal/domain/tag"
	"github.com/kailas-cloud/furnsearch/internal/usecase/extract"
	"github.com/kailas-cloud/furnsearch/internal/usecase/fallback"
)

// --- Mocks ---

type mockRetriever struct {
	mu sync.Mutex

	vecResults   map[string][]candidate.Candidate // keyed by first vector component
	lexResults   map[string][]candidate.Candidate // keyed by query text
	imageResults []candidate.Candidate
	vecErr       error
	lexErr       error
	imageErr     error

	vecCalls      int
	lexCalls      int
	imageCalls    int
	lexQueries    []string
	filtersSeen   []filter.Set
	lastK         int
	panicOnVector bool
}

func (m *mockRetriever) VectorSearch(_ context.Context, vector []float32, filters filter.Set, k int) ([]candidate.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicOnVector {
		panic("index exploded")
	}
	m.vecCalls++
	m.lastK = k
	m.filtersSeen = append(m.filtersSeen, filters)
	if m.vecErr != nil {
		return nil, m.vecErr
	}
	return m.vecResults[fmt.Sprint(vector[0])], nil
}

func (m *mockRetriever) LexicalSearch(_ context.Context, text string, filters filter.Set, k int) ([]candidate.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lexCalls++
	m.lastK = k
	m.lexQueries = append(m.lexQueries, text)
	m.filtersSeen = append(m.filtersSeen, filters)
	if m.lexErr != nil {
		return nil, m.lexErr
	}
	return m.lexResults[text], nil
}

func (m *mockRetriever) ImageSearch(_ context.Context, _ []float32, k int) ([]candidate.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageCalls++
	m.lastK = k
	return m.imageResults, m.imageErr
}

// mockEmbedder maps query text to a one-component vector so the retriever
// can key its canned results by query.
type mockEmbedder struct {
	mu      sync.Mutex
	vectors map[string]float32
	empty   bool
	err     error
	calls   int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	if m.empty {
		return domain.EmbeddingResult{}, nil
	}
	return domain.EmbeddingResult{Embedding: []float32{m.vectors[text]}}, nil
}

type mockImageEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockImageEmbedder) EmbedImage(_ context.Context, _ []byte) (domain.EmbeddingResult, error) {
	m.calls++
	return domain.EmbeddingResult{Embedding: m.vec}, m.err
}

type mockFallback struct {
	source   fallback.ScoreSource
	decision fallback.Decision
	scores   []float64
	calls    int
}

func (m *mockFallback) ScoreSource() fallback.ScoreSource { return m.source }

func (m *mockFallback) Decide(_ context.Context, q string, top float64) fallback.Decision {
	m.calls++
	m.scores = append(m.scores, top)
	d := m.decision
	if d.Query == "" {
		d.Query = q
	}
	return d
}

type mockTags struct {
	queries [][]string
	derived int
	calls   int
}

func (m *mockTags) Suggest(_ context.Context, q string, names []string) []tag.Tag {
	m.calls++
	m.queries = append(m.queries, append([]string{q}, names...))
	return []tag.Tag{tag.New("Sectionals", tag.CategoryCategory, 0.9)}
}

func (m *mockTags) FromResults(results []candidate.Candidate) []tag.Tag {
	m.derived++
	return []tag.Tag{tag.New("Modern", tag.CategoryStyle, 0.6)}
}

type mockCompleter struct {
	reply string
	err   error
	calls int
}

func (m *mockCompleter) Complete(context.Context, string, domain.CompletionOptions) (string, error) {
	m.calls++
	return m.reply, m.err
}

// --- Helpers ---

func cand(id string, score float64, name string) candidate.Candidate {
	return candidate.New(id, score, candidate.Product{ProductName: name, Price: 899})
}

var testCatalog = catalog.Catalog{
	Colors:     []string{"Grey", "Blue", "Gold"},
	Materials:  []string{"Fabric", "Leather", "Oak"},
	Categories: []string{"Sofa", "Dining Table", "Armchair"},
	Styles:     []string{"Modern", "Traditional"},
}

func newExtractor(t *testing.T) *extract.Extractor {
	t.Helper()
	ex, err := extract.New(extract.Config{Catalog: testCatalog}, zap.NewNop())
	if err != nil {
		t.Fatalf("extract.New: %v", err)
	}
	return ex
}

type fixture struct {
	svc      *Service
	repo     *mockRetriever
	embed    *mockEmbedder
	imgEmbed *mockImageEmbedder
	fb       *mockFallback
	tags     *mockTags
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		repo:     &mockRetriever{vecResults: map[string][]candidate.Candidate{}, lexResults: map[string][]candidate.Candidate{}},
		embed:    &mockEmbedder{vectors: map[string]float32{}},
		imgEmbed: &mockImageEmbedder{vec: []float32{0.5}},
		fb:       &mockFallback{source: fallback.ScoreVector},
		tags:     &mockTags{},
	}
	f.svc = New(cfg, Deps{
		Retriever:     f.repo,
		Embedder:      f.embed,
		ImageEmbedder: f.imgEmbed,
		Extractor:     newExtractor(t),
		Fallback:      f.fb,
		Tags:          f.tags,
	}, zap.NewNop())
	f.svc.newID = func() string { return "req-1" }
	return f
}

// seed registers canned results for q: vector hits at vector key v, lexical hits by text.
func (f *fixture) seed(q string, v float32, vec, lex []candidate.Candidate) {
	f.embed.vectors[q] = v
	f.repo.vecResults[fmt.Sprint(v)] = vec
	f.repo.lexResults[q] = lex
}

var (
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 64)...)
	pngBytes  = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
)

// --- Text ---

func TestText_EmptyQueryShortCircuits(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		f := newFixture(t, Config{})
		resp := f.svc.Text(context.Background(), q)

		if resp.Status != response.StatusError || resp.ErrorCode != response.CodeEmptyQuery {
			t.Errorf("%q: got %s/%s, want error/EMPTY_QUERY", q, resp.Status, resp.ErrorCode)
		}
		if f.embed.calls != 0 || f.repo.vecCalls != 0 || f.repo.lexCalls != 0 {
			t.Errorf("%q: collaborators called: embed=%d vec=%d lex=%d",
				q, f.embed.calls, f.repo.vecCalls, f.repo.lexCalls)
		}
		if f.fb.calls != 0 || f.tags.calls != 0 {
			t.Errorf("%q: fallback=%d tags=%d, want 0", q, f.fb.calls, f.tags.calls)
		}
	}
}

func TestText_HybridFusesBothSignals(t *testing.T) {
	f := newFixture(t, Config{})
	f.seed("sofa", 0.8,
		[]candidate.Candidate{cand("1", 0.9, "A"), cand("2", 0.8, "B"), cand("3", 0.7, "C")},
		[]candidate.Candidate{cand("2", 12, "B"), cand("4", 10, "D"), cand("1", 8, "A")},
	)

	resp := f.svc.Text(context.Background(), "sofa")
	if !resp.IsSuccess() {
		t.Fatalf("status = %s (%s)", resp.Status, resp.Message)
	}

	var ids []string
	for _, r := range resp.Results {
		ids = append(ids, r.VariantID)
	}
	if got := strings.Join(ids, ","); got != "2,1,4,3" {
		t.Errorf("order = %s, want 2,1,4,3", got)
	}
	if resp.TotalResults != 4 {
		t.Errorf("total = %d", resp.TotalResults)
	}
	if resp.Results[0].Rank != 1 || resp.Results[3].Rank != 4 {
		t.Error("ranks must be 1-based and sequential")
	}
	if f.repo.vecCalls != 1 || f.repo.lexCalls != 1 {
		t.Errorf("vec=%d lex=%d", f.repo.vecCalls, f.repo.lexCalls)
	}
	if resp.Metadata.SearchMode != "hybrid" || resp.Metadata.RequestID != "req-1" {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
	// The fallback sees the top vector similarity, not the RRF score.
	if len(f.fb.scores) != 1 || f.fb.scores[0] < 0.89 {
		t.Errorf("fallback scores = %v", f.fb.scores)
	}
}

func TestText_SemanticAndKeywordModes(t *testing.T) {
	tests := []struct {
		mode    mode.Mode
		wantVec int
		wantLex int
		wantTop string
	}{
		{mode.Semantic, 1, 0, "1"},
		{mode.Keyword, 0, 1, "2"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			f := newFixture(t, Config{Mode: tt.mode})
			f.seed("sofa", 0.8,
				[]candidate.Candidate{cand("1", 0.9, "A")},
				[]candidate.Candidate{cand("2", 12, "B")},
			)
			resp := f.svc.Text(context.Background(), "sofa")
			if !resp.IsSuccess() {
				t.Fatalf("status = %s", resp.ErrorCode)
			}
			if f.repo.vecCalls != tt.wantVec || f.repo.lexCalls != tt.wantLex {
				t.Errorf("vec=%d lex=%d", f.repo.vecCalls, f.repo.lexCalls)
			}
			if resp.Results[0].VariantID != tt.wantTop {
				t.Errorf("top = %s", resp.Results[0].VariantID)
			}
		})
	}
}

func TestText_KeywordModeScoresFallbackOnLexical(t *testing.T) {
	f := newFixture(t, Config{Mode: mode.Keyword})
	f.seed("sofa", 0, nil, []candidate.Candidate{cand("2", 7.5, "B")})

	f.svc.Text(context.Background(), "sofa")
	if len(f.fb.scores) != 1 || f.fb.scores[0] != 7.5 {
		t.Errorf("fallback scores = %v", f.fb.scores)
	}
}

func TestText_FusedScoreSource(t *testing.T) {
	f := newFixture(t, Config{})
	f.fb.source = fallback.ScoreFused
	f.seed("sofa", 0.8, []candidate.Candidate{cand("1", 0.9, "A")}, nil)

	f.svc.Text(context.Background(), "sofa")
	want := 1.0 / 61
	if len(f.fb.scores) != 1 || f.fb.scores[0] != want {
		t.Errorf("fallback scores = %v, want [%v]", f.fb.scores, want)
	}
}

func TestText_SameFiltersForBothSignals(t *testing.T) {
	f := newFixture(t, Config{})
	f.seed("blue armchair under $500", 0.4, []candidate.Candidate{cand("1", 0.9, "A")}, nil)

	f.svc.Text(context.Background(), "blue armchair under $500")
	if len(f.repo.filtersSeen) != 2 {
		t.Fatalf("filters seen = %d", len(f.repo.filtersSeen))
	}
	a, b := f.repo.filtersSeen[0], f.repo.filtersSeen[1]
	if *a.PriceMax != 500 || *b.PriceMax != 500 || a.Colors[0] != "Blue" || b.Categories[0] != "Armchair" {
		t.Errorf("filters differ or wrong: %+v / %+v", a, b)
	}
}

func TestText_EmptyEmbeddingSkipsVectorSignal(t *testing.T) {
	f := newFixture(t, Config{})
	f.embed.empty = true
	f.seed("sofa", 0, nil, []candidate.Candidate{cand("2", 5, "B")})

	resp := f.svc.Text(context.Background(), "sofa")
	if !resp.IsSuccess() || resp.TotalResults != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if f.repo.vecCalls != 0 {
		t.Errorf("vector search called %d times with no embedding", f.repo.vecCalls)
	}
}

func TestText_PrimaryFailuresAreSearchFailed(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
	}{
		{"embedding", func(f *fixture) { f.embed.err = fmt.Errorf("timeout: %w", domain.ErrEmbeddingProviderError) }},
		{"vector", func(f *fixture) { f.repo.vecErr = errors.New("index down") }},
		{"lexical", func(f *fixture) { f.repo.lexErr = errors.New("bad query") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{})
			tt.setup(f)
			resp := f.svc.Text(context.Background(), "sofa")
			if resp.ErrorCode != response.CodeSearchFailed {
				t.Errorf("code = %s, want SEARCH_FAILED", resp.ErrorCode)
			}
			if f.tags.calls != 0 {
				t.Error("tags must not run on failure")
			}
		})
	}
}

func TestText_PanicIsInternalError(t *testing.T) {
	f := newFixture(t, Config{Mode: mode.Semantic})
	f.repo.panicOnVector = true
	f.seed("sofa", 0.1, nil, nil)

	resp := f.svc.Text(context.Background(), "sofa")
	if resp.ErrorCode != response.CodeInternalError {
		t.Errorf("code = %s, want INTERNAL_ERROR", resp.ErrorCode)
	}
}

func TestText_NoResults(t *testing.T) {
	f := newFixture(t, Config{})
	f.fb.decision = fallback.Decision{State: fallback.Direct, Triggered: true}

	resp := f.svc.Text(context.Background(), "unicorn throne")
	if resp.Status != response.StatusError || resp.ErrorCode != response.CodeNoResults {
		t.Fatalf("got %s/%s", resp.Status, resp.ErrorCode)
	}
	if resp.Metadata == nil || resp.Metadata.LLMFallbackUsed {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
	if resp.Metadata.EnhancedQuery == nil || *resp.Metadata.EnhancedQuery != "unicorn throne" {
		t.Error("triggered fallback should report the enhanced query")
	}
	if f.tags.calls != 0 {
		t.Error("tags must not run without results")
	}
}

func TestText_FallbackReRetrievesWithEnhancedQuery(t *testing.T) {
	f := newFixture(t, Config{})
	f.seed("royal table", 0.1, []candidate.Candidate{cand("weak", 0.1, "Weak")}, nil)
	f.seed("ornate gold dining table", 0.9,
		[]candidate.Candidate{cand("good", 0.8, "Gilded Dining Table")},
		[]candidate.Candidate{cand("good", 9, "Gilded Dining Table")},
	)
	f.fb.decision = fallback.Decision{State: fallback.Enhanced, Triggered: true, Query: "ornate gold dining table"}

	resp := f.svc.Text(context.Background(), "royal table")
	if !resp.IsSuccess() {
		t.Fatalf("status = %s", resp.ErrorCode)
	}
	if resp.Results[0].VariantID != "good" {
		t.Errorf("top = %s", resp.Results[0].VariantID)
	}
	m := resp.Metadata
	if !m.LLMFallbackUsed || m.EnhancedQuery == nil || *m.EnhancedQuery != "ornate gold dining table" {
		t.Errorf("metadata = %+v", m)
	}
	if m.Query != "royal table" {
		t.Errorf("query = %q, want original", m.Query)
	}
	if m.FiltersApplied == nil || len(m.FiltersApplied.Colors) != 1 || m.FiltersApplied.Colors[0] != "Gold" {
		t.Errorf("filters = %+v, want those of the enhanced query", m.FiltersApplied)
	}
	if got := f.tags.queries[0][0]; got != "ornate gold dining table" {
		t.Errorf("tags ran for %q, want final query", got)
	}
	if f.repo.lexCalls != 2 {
		t.Errorf("lex calls = %d, want 2", f.repo.lexCalls)
	}
}

func TestText_EnhancedQueryWithNoResults(t *testing.T) {
	f := newFixture(t, Config{Mode: mode.Keyword})
	f.seed("royal table", 0, []candidate.Candidate{}, []candidate.Candidate{cand("weak", 0.1, "Weak")})
	f.fb.decision = fallback.Decision{State: fallback.Enhanced, Triggered: true, Query: "ornate table"}
	f.repo.lexResults["ornate table"] = nil

	resp := f.svc.Text(context.Background(), "royal table")
	if resp.ErrorCode != response.CodeNoResults || !resp.Metadata.LLMFallbackUsed {
		t.Errorf("resp = %+v", resp)
	}
}

func TestText_TruncatesAndPassesTopNamesToTags(t *testing.T) {
	f := newFixture(t, Config{MaxResults: 3, CandidateK: 20})
	var vec []candidate.Candidate
	for i := range 8 {
		vec = append(vec, cand(fmt.Sprintf("v%d", i), 0.9-float64(i)*0.01, fmt.Sprintf("Sofa %d", i)))
	}
	f.seed("sofa", 0.5, vec, nil)

	resp := f.svc.Text(context.Background(), "sofa")
	if resp.TotalResults != 3 {
		t.Errorf("total = %d, want 3", resp.TotalResults)
	}
	if f.repo.lastK != 20 {
		t.Errorf("k = %d, want 20", f.repo.lastK)
	}
	if got := f.tags.queries[0][1:]; len(got) != 3 {
		t.Errorf("names = %v", got)
	}
}

func TestText_FormatsResults(t *testing.T) {
	f := newFixture(t, Config{Mode: mode.Semantic})
	p := candidate.Product{
		ProductName: "Oslo Sofa",
		Price:       1299,
		Images: []candidate.Image{
			{URL: "https://img/1.jpg"},
			{URL: "https://img/2.jpg", IsDefault: true},
		},
	}
	f.seed("sofa", 0.3, []candidate.Candidate{candidate.New("v1", 0.876543, p)}, nil)

	r := f.svc.Text(context.Background(), "sofa").Results[0]
	if r.Score != 0.8765 {
		t.Errorf("score = %v", r.Score)
	}
	if r.Currency != "SGD" {
		t.Errorf("currency = %q", r.Currency)
	}
	if r.ImageURL != "https://img/2.jpg" {
		t.Errorf("image = %q", r.ImageURL)
	}
}

// --- End to end ---

func TestText_GreySofaUnder1000(t *testing.T) {
	llm := &mockCompleter{reply: `{"enhanced_query": "should not be used"}`}
	fb := fallback.New(fallback.Config{Enabled: true, Catalog: testCatalog}, llm, nil, nil, zap.NewNop())

	repo := &mockRetriever{
		vecResults: map[string][]candidate.Candidate{"0.7": {cand("grey-1", 0.82, "Grey Sofa"), cand("grey-2", 0.64, "Grey Loveseat")}},
		lexResults: map[string][]candidate.Candidate{"grey sofa under $1000": {cand("grey-1", 11, "Grey Sofa")}},
	}
	tags := &mockTags{}
	svc := New(Config{}, Deps{
		Retriever: repo,
		Embedder:  &mockEmbedder{vectors: map[string]float32{"grey sofa under $1000": 0.7}},
		Extractor: newExtractor(t),
		Fallback:  fb,
		Tags:      tags,
	}, zap.NewNop())

	resp := svc.Text(context.Background(), "grey sofa under $1000")
	if !resp.IsSuccess() {
		t.Fatalf("status = %s (%s)", resp.ErrorCode, resp.Message)
	}

	fs := resp.Metadata.FiltersApplied
	if fs == nil || fs.PriceMax == nil || *fs.PriceMax != 1000 || fs.PriceMin != nil {
		t.Fatalf("filters = %+v", fs)
	}
	if len(fs.Colors) != 1 || fs.Colors[0] != "Grey" || len(fs.Categories) != 1 || fs.Categories[0] != "Sofa" {
		t.Errorf("filters = %+v", fs)
	}
	if resp.Metadata.LLMFallbackUsed || resp.Metadata.EnhancedQuery != nil {
		t.Errorf("fallback used: %+v", resp.Metadata)
	}
	if llm.calls != 0 {
		t.Errorf("llm calls = %d", llm.calls)
	}
	if resp.Results[0].VariantID != "grey-1" || len(resp.RelatedTags) == 0 {
		t.Errorf("results = %+v tags = %+v", resp.Results, resp.RelatedTags)
	}
}

// --- Refine ---

func TestRefineQuery(t *testing.T) {
	tests := []struct {
		category tag.Category
		want     string
	}{
		{tag.CategoryCategory, "Armchair blue seat"},
		{tag.CategoryMaterial, "blue seat Armchair"},
		{tag.CategoryPriceRange, "blue seat Armchair"},
		{tag.CategoryStyle, "blue seat Armchair"},
	}
	for _, tt := range tests {
		if got := RefineQuery(" blue seat ", "Armchair", tt.category); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestRefine_RunsTextFlow(t *testing.T) {
	f := newFixture(t, Config{Mode: mode.Keyword})
	f.seed("Leather sofa", 0, nil, []candidate.Candidate{cand("1", 3, "Leather Sofa")})

	resp := f.svc.Refine(context.Background(), "sofa", "Leather", tag.CategoryCategory)
	if !resp.IsSuccess() || resp.Metadata.Query != "Leather sofa" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestRefine_EmptyEverything(t *testing.T) {
	f := newFixture(t, Config{})
	if resp := f.svc.Refine(context.Background(), " ", "", tag.CategoryColor); resp.ErrorCode != response.CodeEmptyQuery {
		t.Errorf("code = %s", resp.ErrorCode)
	}
}

// --- Image ---

func TestImage_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		max  int
	}{
		{"empty", nil, 0},
		{"gif", []byte("GIF89a....."), 0},
		{"oversized", jpegBytes, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{MaxImageBytes: tt.max})
			resp := f.svc.Image(context.Background(), tt.data)
			if resp.ErrorCode != response.CodeInvalidImage {
				t.Errorf("code = %s, want INVALID_IMAGE", resp.ErrorCode)
			}
			if f.imgEmbed.calls != 0 {
				t.Error("embedder must not be called")
			}
		})
	}
}

func TestImage_Success(t *testing.T) {
	for _, data := range [][]byte{jpegBytes, pngBytes} {
		f := newFixture(t, Config{})
		f.repo.imageResults = []candidate.Candidate{
			candidate.New("v1", 0.93, candidate.Product{
				ProductName: "Oslo", ImageURL: "https://img/side.jpg", ImageType: "lifestyle", IsDefault: false,
			}),
		}

		resp := f.svc.Image(context.Background(), data)
		if !resp.IsSuccess() {
			t.Fatalf("status = %s (%s)", resp.ErrorCode, resp.Message)
		}
		r := resp.Results[0]
		if r.ImageURL != "https://img/side.jpg" || r.ImageType != "lifestyle" || r.ImagePosition != 1 {
			t.Errorf("result = %+v", r)
		}
		if resp.Metadata.SearchType != "image_similarity" {
			t.Errorf("search_type = %q", resp.Metadata.SearchType)
		}
		if f.repo.vecCalls != 0 || f.repo.lexCalls != 0 || f.fb.calls != 0 {
			t.Error("image flow must not run text retrieval or fallback")
		}
		if f.tags.derived != 1 || f.tags.calls != 0 {
			t.Errorf("derived=%d suggest=%d", f.tags.derived, f.tags.calls)
		}
	}
}

func TestImage_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		want  response.ErrorCode
	}{
		{"embed error", func(f *fixture) { f.imgEmbed.err = domain.ErrEmbeddingProviderError }, response.CodeSearchFailed},
		{"empty embedding", func(f *fixture) { f.imgEmbed.vec = nil }, response.CodeNoResults},
		{"search error", func(f *fixture) { f.repo.imageErr = errors.New("down") }, response.CodeSearchFailed},
		{"no hits", func(*fixture) {}, response.CodeNoResults},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{})
			tt.setup(f)
			if resp := f.svc.Image(context.Background(), jpegBytes); resp.ErrorCode != tt.want {
				t.Errorf("code = %s, want %s", resp.ErrorCode, tt.want)
			}
		})
	}
}

func TestResponseTime(t *testing.T) {
	f := newFixture(t, Config{Mode: mode.Keyword})
	f.seed("sofa", 0, nil, []candidate.Candidate{cand("1", 3, "A")})
	base := time.Unix(0, 0)
	calls := 0
	f.svc.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 25 * time.Millisecond)
	}

	resp := f.svc.Text(context.Background(), "sofa")
	if resp.Metadata.ResponseTimeMS != 25 {
		t.Errorf("response_time_ms = %d, want 25", resp.Metadata.ResponseTimeMS)
	}
}
