package domain

import "time"

// HistoryEntry is one recorded query/result pair. Append-only: entries
// are never mutated or deleted once written, and listing preserves
// insertion order (oldest first).
type HistoryEntry struct {
	Timestamp  time.Time   `json:"timestamp"`
	Query      string      `json:"query"`
	Filter     QueryFilter `json:"filter"`
	ProductIDs []string    `json:"product_ids"`
	Fallback   bool        `json:"fallback"`
}
