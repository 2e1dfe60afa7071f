package ranking

import (
	"math"
	"testing"

	"github.com/shopmate-ai/shopmate/internal/domain"
)

func TestSimilarity_CosineNormalized(t *testing.T) {
	p := &domain.Product{ID: "1", Title: "A"}

	// Identical vectors: cos=1 -> (1+1)/2 = 1.
	got := Similarity([]float32{1, 0}, []float32{1, 0}, nil, p)
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors: expected 1, got %v", got)
	}

	// Opposite vectors: cos=-1 -> 0.
	got = Similarity([]float32{1, 0}, []float32{-1, 0}, nil, p)
	if math.Abs(got) > 1e-9 {
		t.Errorf("opposite vectors: expected 0, got %v", got)
	}

	// Orthogonal vectors: cos=0 -> 0.5.
	got = Similarity([]float32{1, 0}, []float32{0, 1}, nil, p)
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("orthogonal vectors: expected 0.5, got %v", got)
	}
}

func TestSimilarity_LexicalFallback(t *testing.T) {
	p := &domain.Product{Title: "Noise Cancelling Headphones", Description: "Wireless over-ear"}

	got := Similarity(nil, nil, []string{"headphones", "wireless", "cheap"}, p)
	want := 2.0 / 3.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected overlap %v, got %v", want, got)
	}
}

func TestSimilarity_CaseInsensitive(t *testing.T) {
	p := &domain.Product{Title: "GAMING Laptop"}
	if got := Similarity(nil, nil, []string{"gaming"}, p); got != 1 {
		t.Errorf("keyword match must be case-insensitive, got %v", got)
	}
}

func TestSimilarity_NoSignal(t *testing.T) {
	p := &domain.Product{Title: "A"}
	if got := Similarity(nil, nil, nil, p); got != 0 {
		t.Errorf("no vectors and no keywords: expected 0, got %v", got)
	}
}

func TestSimilarity_ZeroVectorFallsBackToLexical(t *testing.T) {
	p := &domain.Product{Title: "Trail running shoes"}
	got := Similarity([]float32{0, 0}, []float32{1, 0}, []string{"shoes"}, p)
	if got != 1 {
		t.Errorf("degenerate vector must fall back to lexical overlap, got %v", got)
	}
}

func TestCosine_MismatchedDims(t *testing.T) {
	if _, ok := cosine([]float32{1, 0}, []float32{1}); ok {
		t.Error("mismatched dimensions must not produce a cosine")
	}
}

func TestSimilarity_InRange(t *testing.T) {
	vecs := [][]float32{
		{0.3, -0.7, 0.2},
		{-0.1, 0.9, 0.4},
		{1, 1, 1},
	}
	p := &domain.Product{Title: "x"}
	for _, a := range vecs {
		for _, b := range vecs {
			got := Similarity(a, b, nil, p)
			if got < 0 || got > 1 {
				t.Errorf("similarity out of [0,1]: %v for %v x %v", got, a, b)
			}
		}
	}
}
