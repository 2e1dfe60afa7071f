// Package ranking turns a structured filter and a product catalog into a
// deterministic ordering: hard filters, then a weighted composite of
// semantic similarity, rating, and log-scaled review count, with a
// popularity fallback when the filtered set is too small.
package ranking

import (
	"math"
	"sort"

	"github.com/shopmate-ai/shopmate/internal/domain"
)

// Candidate is a product under ranking for one query. Transient: it
// exists only between filtering and response assembly.
type Candidate struct {
	Product    domain.Product
	Similarity float64
	Composite  float64

	pos int // catalog insertion order, final tie-break
}

// Engine ranks catalog products against a query filter.
type Engine struct {
	cfg  Config
	embs EmbeddingSource
}

// NewEngine creates a ranking engine over the given embedding source.
func NewEngine(cfg Config, embs EmbeddingSource) *Engine {
	return &Engine{cfg: cfg, embs: embs}
}

// Rank applies the filter's hard constraints, scores the survivors, and
// returns them ordered best-first, truncated to topK (<=0 means the
// configured default). When fewer than MinResults survive, the hard
// filters are discarded and the whole catalog is re-ranked by
// popularity-weighted composite score with fallback=true. An empty
// catalog yields an empty, fallback-tagged result; Rank never fails.
func (e *Engine) Rank(
	filter domain.QueryFilter, queryVec []float32, products []domain.Product, topK int,
) (results []Candidate, fallback bool) {
	if topK <= 0 {
		topK = e.cfg.TopK
	}
	if len(products) == 0 {
		return nil, true
	}

	candidates := make([]Candidate, 0, len(products))
	for i := range products {
		if !filter.Matches(products[i]) {
			continue
		}
		candidates = append(candidates, Candidate{Product: products[i], pos: i})
	}

	if len(candidates) < e.cfg.MinResults {
		// Cold start: no close match exists, serve the most popular
		// products instead of an empty answer.
		candidates = candidates[:0]
		for i := range products {
			candidates = append(candidates, Candidate{Product: products[i], pos: i})
		}
		fallback = true
	}

	weights := e.effectiveWeights(filter, queryVec)
	for i := range candidates {
		e.score(&candidates[i], filter, queryVec, weights)
	}

	sortCandidates(candidates)

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, fallback
}

// score fills in the similarity and composite score for one candidate.
func (e *Engine) score(c *Candidate, filter domain.QueryFilter, queryVec []float32, w Config) {
	productVec, _ := e.embs.Embedding(c.Product.ID)
	c.Similarity = Similarity(queryVec, productVec, filter.Keywords, &c.Product)

	ratingNorm := c.Product.Rating / 5
	c.Composite = w.SimilarityWeight*c.Similarity +
		w.RatingWeight*ratingNorm +
		w.ReviewWeight*e.reviewNorm(c.Product.ReviewCount)
}

// reviewNorm maps review count into [0,1] on a log scale so heavily
// reviewed products do not dominate linearly.
func (e *Engine) reviewNorm(reviews int) float64 {
	maxReviews := e.embs.MaxReviewCount()
	if maxReviews <= 0 || reviews <= 0 {
		return 0
	}
	return math.Log1p(float64(reviews)) / math.Log1p(float64(maxReviews))
}

// effectiveWeights returns the configured weights, except when there is
// no similarity signal at all (no query vector and no keywords): then the
// similarity weight is redistributed proportionally onto the rating and
// review terms so popularity alone drives the ordering.
func (e *Engine) effectiveWeights(filter domain.QueryFilter, queryVec []float32) Config {
	w := e.cfg
	if len(queryVec) > 0 || filter.HasKeywords() {
		return w
	}
	rest := w.RatingWeight + w.ReviewWeight
	if rest <= 0 {
		return w
	}
	w.RatingWeight += w.SimilarityWeight * (w.RatingWeight / rest)
	w.ReviewWeight += w.SimilarityWeight * (w.ReviewWeight / rest)
	w.SimilarityWeight = 0
	return w
}

// sortCandidates orders best-first: composite desc, then rating desc,
// review count desc, catalog insertion order. Fully deterministic.
func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Composite != b.Composite {
			return a.Composite > b.Composite
		}
		if a.Product.Rating != b.Product.Rating {
			return a.Product.Rating > b.Product.Rating
		}
		if a.Product.ReviewCount != b.Product.ReviewCount {
			return a.Product.ReviewCount > b.Product.ReviewCount
		}
		return a.pos < b.pos
	})
}
