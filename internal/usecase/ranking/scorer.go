package ranking

import (
	"math"
	"strings"

	"github.com/shopmate-ai/shopmate/internal/domain"
)

// Similarity scores how well a product matches the query, in [0,1].
// With both vectors available it is cosine similarity normalized via
// (cos+1)/2. Without vectors it degrades to lexical overlap: the
// fraction of query keywords present in the product text. No signal at
// all scores 0, which keeps the composite ordering driven by rating and
// reviews. Deterministic for identical inputs.
func Similarity(queryVec, productVec []float32, keywords []string, p *domain.Product) float64 {
	if cos, ok := cosine(queryVec, productVec); ok {
		return (cos + 1) / 2
	}
	if len(keywords) > 0 {
		return lexicalOverlap(keywords, p.SearchText())
	}
	return 0
}

// cosine returns the cosine of the angle between a and b. ok is false
// when the vectors are missing, mismatched, or degenerate (zero norm).
func cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}

// lexicalOverlap returns the fraction of keywords occurring in the text,
// case-insensitive.
func lexicalOverlap(keywords []string, text string) float64 {
	lower := strings.ToLower(text)
	var hits, total int
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		total++
		if strings.Contains(lower, strings.ToLower(kw)) {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
