// Package recommend orchestrates one query end to end: intent
// extraction, query embedding, ranking, and best-effort history
// recording. Backend failures along the way degrade the pipeline, they
// never fail the user-facing response.
package recommend

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shopmate-ai/shopmate/internal/domain"
	"github.com/shopmate-ai/shopmate/internal/logger"
	"github.com/shopmate-ai/shopmate/internal/metrics"
)

// Service handles recommendation queries and history reads.
type Service struct {
	extractor Extractor
	embedder  domain.Embedder
	ranker    Ranker
	catalog   Catalog
	history   HistoryRepository

	now func() time.Time
}

// New creates a recommendation service.
func New(
	extractor Extractor,
	embedder domain.Embedder,
	ranker Ranker,
	catalog Catalog,
	history HistoryRepository,
) *Service {
	return &Service{
		extractor: extractor,
		embedder:  embedder,
		ranker:    ranker,
		catalog:   catalog,
		history:   history,
		now:       time.Now,
	}
}

// Recommend runs the query-to-ranking pipeline. topK <= 0 uses the
// engine's configured default. The only error it returns is
// domain.ErrEmptyQuery; everything downstream degrades instead.
func (s *Service) Recommend(ctx context.Context, query string, topK int) (domain.Recommendation, error) {
	log := logger.FromContext(ctx)

	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Recommendation{}, domain.ErrEmptyQuery
	}

	filter := s.extractor.Extract(ctx, query)

	// Query embedding is best-effort: without it, ranking falls back to
	// lexical keyword matching.
	var queryVec []float32
	if res, err := s.embedder.Embed(ctx, query); err != nil {
		log.Warn("Query embedding failed, ranking lexically", zap.Error(err))
	} else {
		queryVec = res.Embedding
	}

	candidates, fallback := s.ranker.Rank(filter, queryVec, s.catalog.Products(), topK)

	results := make([]domain.ProductSummary, 0, len(candidates))
	ids := make([]string, 0, len(candidates))
	for i := range candidates {
		results = append(results, candidates[i].Product.Summary())
		ids = append(ids, candidates[i].Product.ID)
	}

	path := "ranked"
	if fallback {
		path = "fallback"
	}
	metrics.RecommendationsTotal.WithLabelValues(path).Inc()

	s.record(ctx, domain.HistoryEntry{
		Timestamp:  s.now().UTC(),
		Query:      query,
		Filter:     filter,
		ProductIDs: ids,
		Fallback:   fallback,
	})

	return domain.Recommendation{
		Results:  results,
		Fallback: fallback,
		Filter:   filter,
	}, nil
}

// History lists recorded queries, oldest first.
func (s *Service) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	return s.history.List(ctx)
}

// record appends the history entry. Persistence failures are logged and
// swallowed: the response must not depend on them.
func (s *Service) record(ctx context.Context, entry domain.HistoryEntry) {
	if err := s.history.Append(ctx, entry); err != nil {
		metrics.HistoryWriteFailuresTotal.Inc()
		logger.FromContext(ctx).Warn("Failed to record history entry",
			zap.String("query", entry.Query),
			zap.Error(err),
		)
	}
}
