package ranking

// EmbeddingSource resolves the cached description vector for a product.
// The catalog store satisfies this.
type EmbeddingSource interface {
	Embedding(productID string) ([]float32, bool)
	MaxReviewCount() int
}

// Config holds the scoring weights and result-set policy. Weights must
// sum to 1 so the composite score stays in [0,1]; config validation
// enforces this upstream.
type Config struct {
	SimilarityWeight float64
	RatingWeight     float64
	ReviewWeight     float64
	TopK             int
	MinResults       int
}

// DefaultConfig returns the default ranking policy: similarity 0.60,
// rating 0.25, reviews 0.15, top 5 results, fallback below 1 survivor.
func DefaultConfig() Config {
	return Config{
		SimilarityWeight: 0.60,
		RatingWeight:     0.25,
		ReviewWeight:     0.15,
		TopK:             5,
		MinResults:       1,
	}
}
