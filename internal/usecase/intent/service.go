// Package intent turns free-text shopping queries into structured
// filters via a schema-constrained language-model call. Extraction never
// fails the request: provider errors and malformed responses degrade to
// keyword-only filtering.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shopmate-ai/shopmate/internal/domain"
	"github.com/shopmate-ai/shopmate/internal/logger"
	"github.com/shopmate-ai/shopmate/internal/metrics"
)

const systemPrompt = "You are a helpful shopping assistant."

const extractionPromptTemplate = `Extract structured shopping constraints from the user query.
Respond with a single JSON object and nothing else, using exactly these keys:
- "category": product category as a short lowercase noun (e.g. "laptop", "shoes"), or null if not mentioned
- "max_price": numeric price ceiling, or null if not mentioned
- "min_rating": minimum acceptable rating from 0 to 5, or null if not mentioned
- "keywords": array of lowercase feature keywords (e.g. ["waterproof", "lightweight", "gaming"])

User query: %q`

// Extractor derives a QueryFilter from raw query text.
type Extractor struct {
	completer Completer
	timeout   time.Duration
}

// New creates an intent extractor. timeout bounds the language-model
// call; past it the keyword-degradation path is taken instead of blocking.
func New(completer Completer, timeout time.Duration) *Extractor {
	return &Extractor{completer: completer, timeout: timeout}
}

// Extract returns the structured filter for the query. It never returns
// an error: any extraction failure yields a filter whose keywords are
// the raw query tokens, which downstream ranking handles lexically.
func (e *Extractor) Extract(ctx context.Context, query string) domain.QueryFilter {
	log := logger.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.completer.Complete(ctx, systemPrompt, fmt.Sprintf(extractionPromptTemplate, query))
	if err != nil {
		log.Warn("Intent extraction call failed, degrading to keywords", zap.Error(err))
		return e.degrade(query)
	}

	filter, err := parseFilter(raw)
	if err != nil {
		log.Warn("Intent extraction response unparseable, degrading to keywords",
			zap.String("response", truncate(raw, 200)),
			zap.Error(err),
		)
		return e.degrade(query)
	}

	metrics.IntentExtractionsTotal.WithLabelValues("structured").Inc()
	return filter
}

// degrade builds the keyword-only filter used when extraction fails.
func (e *Extractor) degrade(query string) domain.QueryFilter {
	metrics.IntentExtractionsTotal.WithLabelValues("degraded").Inc()
	return domain.QueryFilter{Keywords: Tokenize(query)}
}

// rawFilter is the lenient wire shape of the model's JSON answer. Models
// occasionally emit numbers as strings; RawMessage absorbs both.
type rawFilter struct {
	Category  *string         `json:"category"`
	MaxPrice  json.RawMessage `json:"max_price"`
	MinRating json.RawMessage `json:"min_rating"`
	Keywords  []string        `json:"keywords"`
}

// parseFilter validates the model output against the schema. A malformed
// individual field falls back to its unset default; only an unparseable
// response as a whole is an error.
func parseFilter(raw string) (domain.QueryFilter, error) {
	body, err := extractJSONObject(raw)
	if err != nil {
		return domain.QueryFilter{}, err
	}

	var rf rawFilter
	if err := json.Unmarshal([]byte(body), &rf); err != nil {
		return domain.QueryFilter{}, fmt.Errorf("unmarshal extraction response: %w", err)
	}

	var filter domain.QueryFilter

	if rf.Category != nil {
		cat := strings.ToLower(strings.TrimSpace(*rf.Category))
		if cat != "" && cat != "any" && cat != "null" && cat != "none" {
			filter.Category = &cat
		}
	}

	if price, ok := parseNumber(rf.MaxPrice); ok && price > 0 {
		filter.MaxPrice = &price
	}

	if rating, ok := parseNumber(rf.MinRating); ok {
		switch {
		case rating < 0:
			filter.MinRating = 0
		case rating > 5:
			filter.MinRating = 5
		default:
			filter.MinRating = rating
		}
	}

	seen := make(map[string]bool, len(rf.Keywords))
	for _, kw := range rf.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		filter.Keywords = append(filter.Keywords, kw)
	}

	return filter, nil
}

// extractJSONObject locates the JSON object in the model's answer,
// tolerating markdown code fences and surrounding prose.
func extractJSONObject(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in extraction response")
	}
	return raw[start : end+1], nil
}

// parseNumber reads a JSON number that may arrive bare, quoted, or null.
func parseNumber(raw json.RawMessage) (float64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
