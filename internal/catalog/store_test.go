package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/shopmate-ai/shopmate/internal/domain"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoad_OK(t *testing.T) {
	path := writeCatalog(t, `[
		{"id":"1","title":"UltraBook 14","category":"laptop","price":1200,"rating":4.5,"review_count":300,"description":"Light laptop"},
		{"id":"2","title":"ProBook 16","category":"laptop","price":1800,"rating":4.8,"review_count":50,"description":"Workstation laptop"}
	]`)

	products, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].ID != "1" || products[1].ID != "2" {
		t.Errorf("insertion order must be preserved: %v, %v", products[0].ID, products[1].ID)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing dataset")
	}
}

func TestLoad_BadJSON(t *testing.T) {
	path := writeCatalog(t, `{"not":"an array"`)
	_, err := Load(path)
	if !errors.Is(err, domain.ErrCatalogInvalid) {
		t.Fatalf("expected ErrCatalogInvalid, got %v", err)
	}
}

func TestLoad_DuplicateID(t *testing.T) {
	path := writeCatalog(t, `[
		{"id":"1","title":"A","category":"x","price":1,"rating":4,"review_count":1,"description":"a"},
		{"id":"1","title":"B","category":"x","price":2,"rating":4,"review_count":1,"description":"b"}
	]`)
	_, err := Load(path)
	if !errors.Is(err, domain.ErrCatalogInvalid) {
		t.Fatalf("expected ErrCatalogInvalid for duplicate IDs, got %v", err)
	}
}

func TestLoad_OutOfRangeRating(t *testing.T) {
	path := writeCatalog(t, `[
		{"id":"1","title":"A","category":"x","price":1,"rating":7.5,"review_count":1,"description":"a"}
	]`)
	if _, err := Load(path); !errors.Is(err, domain.ErrCatalogInvalid) {
		t.Fatalf("expected ErrCatalogInvalid for rating out of range, got %v", err)
	}
}

func TestStore_MaxReviewCount(t *testing.T) {
	s := NewStore([]domain.Product{
		{ID: "1", Title: "A", ReviewCount: 300},
		{ID: "2", Title: "B", ReviewCount: 50},
	})
	if got := s.MaxReviewCount(); got != 300 {
		t.Errorf("expected max review count 300, got %d", got)
	}
}

func TestStore_PrecomputedEmbeddingKept(t *testing.T) {
	s := NewStore([]domain.Product{
		{ID: "1", Title: "A", Embedding: []float32{0.1, 0.2}},
	})
	vec, ok := s.Embedding("1")
	if !ok || len(vec) != 2 {
		t.Fatalf("expected precomputed embedding to be cached, got %v %v", vec, ok)
	}
}

type stubEmbedder struct {
	vec   []float32
	errOn string
	calls int
}

func (e *stubEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.calls++
	if e.errOn != "" && text == e.errOn {
		return domain.EmbeddingResult{}, errors.New("provider down")
	}
	return domain.EmbeddingResult{Embedding: e.vec}, nil
}

func TestStore_WarmEmbeddings(t *testing.T) {
	s := NewStore([]domain.Product{
		{ID: "1", Title: "A", Description: "first"},
		{ID: "2", Title: "B", Description: "second", Embedding: []float32{1}},
		{ID: "3", Title: "C", Description: "third"},
	})
	emb := &stubEmbedder{vec: []float32{0.5}, errOn: "C. third"}

	s.WarmEmbeddings(context.Background(), emb, zap.NewNop())

	if emb.calls != 2 {
		t.Errorf("precomputed products must be skipped, got %d embed calls", emb.calls)
	}
	if _, ok := s.Embedding("1"); !ok {
		t.Error("product 1 should have a warmed embedding")
	}
	if _, ok := s.Embedding("3"); ok {
		t.Error("failed warm-up must leave the product without an embedding")
	}
}
