package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/furnsearch/internal/domain"
	"github.com/kailas-cloud/furnsearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()
	os.Exit(m.Run())
}

type embeddingData struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// openaiEmbeddingResponse mirrors the OpenAI-compatible API embedding response.
type openaiEmbeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingData `json:"data"`
	Model  string          `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

func embeddingServer(t *testing.T, vec []float32, seen func(req embeddingRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if seen != nil {
			seen(req)
		}

		resp := openaiEmbeddingResponse{Object: "list", Model: req.Model}
		resp.Data = append(resp.Data, embeddingData{Object: "embedding", Embedding: vec})
		resp.Usage.PromptTokens = 10
		resp.Usage.TotalTokens = 10

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestEmbedder(url string, retries int) *Embedder {
	return NewEmbedder(&Config{
		APIKey:     "test-key",
		BaseURL:    url,
		Model:      "text-model",
		ImageModel: "image-model",
		Dimensions: 4,
		Provider:   "test",
		Retry:      RetryPolicy{Retries: retries, Base: time.Millisecond},
		Logger:     zap.NewNop(),
	})
}

func TestEmbedder_Embed(t *testing.T) {
	expectedVec := []float32{0.1, 0.2, 0.3, 0.4}
	var model string
	server := embeddingServer(t, expectedVec, func(req embeddingRequest) { model = req.Model })
	defer server.Close()

	result, err := newTestEmbedder(server.URL, 0).Embed(context.Background(), "grey sofa")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(result.Embedding) != len(expectedVec) {
		t.Fatalf("expected %d dimensions, got %d", len(expectedVec), len(result.Embedding))
	}
	for i, v := range result.Embedding {
		if v != expectedVec[i] {
			t.Errorf("vec[%d] = %f, expected %f", i, v, expectedVec[i])
		}
	}
	if result.PromptTokens != 10 || result.TotalTokens != 10 {
		t.Errorf("usage = %d/%d", result.PromptTokens, result.TotalTokens)
	}
	if model != "text-model" {
		t.Errorf("model = %q", model)
	}
}

func TestEmbedder_EmbedImageSendsDataURI(t *testing.T) {
	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, 1, 2, 3)
	var got embeddingRequest
	server := embeddingServer(t, []float32{0.5}, func(req embeddingRequest) { got = req })
	defer server.Close()

	res, err := newTestEmbedder(server.URL, 0).EmbedImage(context.Background(), png)
	if err != nil {
		t.Fatalf("EmbedImage failed: %v", err)
	}
	if len(res.Embedding) != 1 {
		t.Errorf("embedding = %v", res.Embedding)
	}
	if got.Model != "image-model" {
		t.Errorf("model = %q", got.Model)
	}
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	if len(got.Input) != 1 || got.Input[0] != want {
		t.Errorf("input = %v", got.Input)
	}
}

func TestEmbedder_EmbedImageRejectsUnknownFormat(t *testing.T) {
	_, err := newTestEmbedder("http://unused", 0).EmbedImage(context.Background(), []byte("GIF89a"))
	if !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("err = %v", err)
	}
}

func TestEmbedder_EmptyVectorPassesThrough(t *testing.T) {
	server := embeddingServer(t, []float32{}, nil)
	defer server.Close()

	res, err := newTestEmbedder(server.URL, 0).Embed(context.Background(), "grey sofa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsEmpty() {
		t.Errorf("embedding = %v, want empty", res.Embedding)
	}
}

func TestEmbedder_NoDataIsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer server.Close()

	_, err := newTestEmbedder(server.URL, 0).Embed(context.Background(), "x")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("err = %v", err)
	}
}

func TestEmbedder_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer server.Close()

	_, err := newTestEmbedder(server.URL, 0).Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error for 429 response, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status: %v", err)
	}
}

func TestEmbedder_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		resp := openaiEmbeddingResponse{Object: "list"}
		resp.Data = append(resp.Data, embeddingData{Object: "embedding", Embedding: []float32{1}})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	res, err := newTestEmbedder(server.URL, 3).Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 1 || calls.Load() != 3 {
		t.Errorf("calls = %d, embedding = %v", calls.Load(), res.Embedding)
	}
}

func TestEmbedder_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"input too long"}`))
	}))
	defer server.Close()

	_, err := newTestEmbedder(server.URL, 3).Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail":"bad model"}`)); got != "bad model" {
		t.Errorf("got %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("got %q", got)
	}
}
