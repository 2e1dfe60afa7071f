package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/shopmate-ai/shopmate/internal/domain"
)

// Store holds the loaded catalog and the per-product embedding cache.
// Products never change after construction; embeddings are computed once
// during warm-up, before the store serves queries.
type Store struct {
	products   []domain.Product
	embeddings map[string][]float32
	maxReviews int
}

// NewStore builds a store over validated products. Slice order is the
// catalog insertion order used as the final ranking tie-break.
func NewStore(products []domain.Product) *Store {
	s := &Store{
		products:   products,
		embeddings: make(map[string][]float32, len(products)),
	}
	for i := range products {
		p := &products[i]
		if p.ReviewCount > s.maxReviews {
			s.maxReviews = p.ReviewCount
		}
		// Datasets may ship precomputed vectors.
		if len(p.Embedding) > 0 {
			s.embeddings[p.ID] = p.Embedding
		}
	}
	return s
}

// Products returns the catalog in insertion order. Callers must not mutate.
func (s *Store) Products() []domain.Product {
	return s.products
}

// Len returns the catalog size.
func (s *Store) Len() int {
	return len(s.products)
}

// MaxReviewCount returns the largest review count in the catalog, used to
// normalize the log-review ranking term.
func (s *Store) MaxReviewCount() int {
	return s.maxReviews
}

// Embedding returns the cached description vector for a product.
func (s *Store) Embedding(id string) ([]float32, bool) {
	vec, ok := s.embeddings[id]
	return vec, ok
}

// WarmEmbeddings computes description vectors for products that do not
// already carry one. Per-product failures are logged and skipped: ranking
// degrades to lexical matching for those products, it does not fail.
func (s *Store) WarmEmbeddings(ctx context.Context, embedder domain.Embedder, logger *zap.Logger) {
	var warmed, failed int
	for i := range s.products {
		p := &s.products[i]
		if _, ok := s.embeddings[p.ID]; ok {
			continue
		}
		res, err := embedder.Embed(ctx, p.SearchText())
		if err != nil {
			failed++
			logger.Warn("Failed to embed product description",
				zap.String("product_id", p.ID),
				zap.Error(err),
			)
			continue
		}
		s.embeddings[p.ID] = res.Embedding
		warmed++
	}
	logger.Info("Catalog embeddings warmed",
		zap.Int("warmed", warmed),
		zap.Int("failed", failed),
		zap.Int("total", len(s.products)),
	)
}
