package recommend

import (
	"context"

	"github.com/shopmate-ai/shopmate/internal/domain"
	"github.com/shopmate-ai/shopmate/internal/usecase/ranking"
)

// Extractor derives a structured filter from raw query text. It never
// fails; extraction errors degrade inside the extractor.
type Extractor interface {
	Extract(ctx context.Context, query string) domain.QueryFilter
}

// Ranker orders catalog products against a filter.
type Ranker interface {
	Rank(filter domain.QueryFilter, queryVec []float32, products []domain.Product, topK int) ([]ranking.Candidate, bool)
}

// Catalog exposes the loaded product set.
type Catalog interface {
	Products() []domain.Product
}

// HistoryRepository persists query/result records.
type HistoryRepository interface {
	Append(ctx context.Context, entry domain.HistoryEntry) error
	List(ctx context.Context) ([]domain.HistoryEntry, error)
}
