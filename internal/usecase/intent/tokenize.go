package intent

import "strings"

// stopwords are query-filler terms dropped from degraded keyword sets.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "i": true, "me": true, "my": true,
	"am": true, "is": true, "are": true, "it": true, "for": true, "of": true,
	"to": true, "in": true, "on": true, "and": true, "or": true, "with": true,
	"need": true, "want": true, "looking": true, "buy": true, "find": true,
	"get": true, "some": true, "please": true, "under": true, "below": true,
	"around": true, "about": true,
}

// Tokenize lowercases the query and splits it into keyword tokens,
// dropping punctuation, stopwords, and duplicates. Order follows first
// occurrence so the result is deterministic.
func Tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !isWordRune(r)
	})

	seen := make(map[string]bool, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 && !isDigitToken(f) {
			continue
		}
		if stopwords[f] || seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r > 127
}

func isDigitToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
