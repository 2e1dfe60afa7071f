package domain

// Recommendation is the response to a single query: the ranked products,
// whether the cold-start fallback produced them, and the filter that was
// extracted from the query text.
type Recommendation struct {
	Results  []ProductSummary `json:"results"`
	Fallback bool             `json:"is_fallback"`
	Filter   QueryFilter      `json:"filter"`
}
