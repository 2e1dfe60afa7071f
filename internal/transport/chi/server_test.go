package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shopmate-ai/shopmate/internal/domain"
	healthuc "github.com/shopmate-ai/shopmate/internal/usecase/health"
	"github.com/shopmate-ai/shopmate/internal/usecase/ranking"
	recommenduc "github.com/shopmate-ai/shopmate/internal/usecase/recommend"
)

// --- Mocks ---

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, query string) domain.QueryFilter {
	return domain.QueryFilter{Keywords: strings.Fields(query)}
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{0.1}}, nil
}

type stubRanker struct {
	candidates []ranking.Candidate
	fallback   bool
}

func (s stubRanker) Rank(
	_ domain.QueryFilter, _ []float32, _ []domain.Product, _ int,
) ([]ranking.Candidate, bool) {
	return s.candidates, s.fallback
}

type stubCatalog struct{}

func (stubCatalog) Products() []domain.Product {
	return []domain.Product{{ID: "1", Title: "UltraBook 14", Price: 1200, Rating: 4.5, ReviewCount: 300}}
}

type stubHistory struct {
	entries []domain.HistoryEntry
}

func (s *stubHistory) Append(_ context.Context, entry domain.HistoryEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubHistory) List(_ context.Context) ([]domain.HistoryEntry, error) {
	return s.entries, nil
}

func newTestRouter(ranker stubRanker, history *stubHistory) http.Handler {
	svc := recommenduc.New(stubExtractor{}, stubEmbedder{}, ranker, stubCatalog{}, history)
	server := NewServer(svc, healthuc.New(nil, nil, nil), zap.NewNop())

	r := chirouter.NewRouter()
	server.Routes(r)
	return r
}

// --- Tests ---

func TestHandleRecommend_OK(t *testing.T) {
	ranker := stubRanker{candidates: []ranking.Candidate{
		{Product: domain.Product{ID: "1", Title: "UltraBook 14", Price: 1200, Rating: 4.5, ReviewCount: 300}},
	}}
	router := newTestRouter(ranker, &stubHistory{})

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"query": "gaming laptop", "top_k": 3}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recommend", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Query    string                  `json:"query"`
		Results  []domain.ProductSummary `json:"results"`
		Fallback bool                    `json:"is_fallback"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Query != "gaming laptop" {
		t.Errorf("expected query echoed, got %q", resp.Query)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "1" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
	if resp.Fallback {
		t.Error("expected is_fallback=false")
	}
}

func TestHandleRecommend_EmptyQuery(t *testing.T) {
	router := newTestRouter(stubRanker{}, &stubHistory{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{"query": ""}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty query, got %d", rec.Code)
	}
}

func TestHandleRecommend_BadBody(t *testing.T) {
	router := newTestRouter(stubRanker{}, &stubHistory{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{"query":`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestHandleRecommend_TopKOutOfRange(t *testing.T) {
	router := newTestRouter(stubRanker{}, &stubHistory{})

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"query": "laptop", "top_k": 500}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recommend", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized top_k, got %d", rec.Code)
	}
}

func TestHandleHistory(t *testing.T) {
	history := &stubHistory{entries: []domain.HistoryEntry{{Query: "first"}, {Query: "second"}}}
	router := newTestRouter(stubRanker{}, history)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Entries []domain.HistoryEntry `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Entries) != 2 || resp.Entries[0].Query != "first" {
		t.Errorf("unexpected entries: %+v", resp.Entries)
	}
}

func TestHandleHistory_EmptyIsArray(t *testing.T) {
	router := newTestRouter(stubRanker{}, &stubHistory{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))

	if !strings.Contains(rec.Body.String(), `"entries":[]`) {
		t.Errorf("empty history must serialize as [], got %s", rec.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	router := newTestRouter(stubRanker{}, &stubHistory{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := BearerAuthMiddleware([]string{"secret"})
	handler := mw(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recommend", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing header: expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recommend", nil)
	req.Header.Set("Authorization", "Bearer secret")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/recommend", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("invalid key: expected 401, got %d", rec.Code)
	}

	// Health is exempt.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("exempt path: expected 200, got %d", rec.Code)
	}

	// Empty key list disables auth.
	open := BearerAuthMiddleware(nil)(inner)
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recommend", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("auth disabled: expected 200, got %d", rec.Code)
	}
}
