package domain

import "strings"

// QueryFilter is the structured intent extracted from a free-text query.
// Nil pointer fields mean "unconstrained". Built once per query, read-only after.
type QueryFilter struct {
	Category  *string  `json:"category,omitempty"`
	MaxPrice  *float64 `json:"max_price,omitempty"`
	MinRating float64  `json:"min_rating,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

// Matches reports whether the product satisfies the filter's hard
// constraints: category exact match (case-insensitive) when set,
// price <= max_price, rating >= min_rating. Keywords are a soft signal
// and do not participate here.
func (f QueryFilter) Matches(p Product) bool {
	if f.Category != nil && !strings.EqualFold(p.Category, *f.Category) {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if p.Rating < f.MinRating {
		return false
	}
	return true
}

// HasKeywords reports whether the filter carries at least one keyword.
func (f QueryFilter) HasKeywords() bool {
	return len(f.Keywords) > 0
}

// IsUnconstrained reports whether the filter has no hard constraints at all.
func (f QueryFilter) IsUnconstrained() bool {
	return f.Category == nil && f.MaxPrice == nil && f.MinRating == 0
}
