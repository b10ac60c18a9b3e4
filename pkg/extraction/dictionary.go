package extraction

import (
	"context"
	"strings"
)

// knownEntities is the always-available dictionary of recognized terms and
// their types, grounded on the reference engine's regex entity list.
var knownEntities = map[string]string{
	"python":     "tech",
	"javascript": "tech",
	"typescript": "tech",
	"rust":       "tech",
	"golang":     "tech",
	"docker":     "tech",
	"kubernetes": "tech",
	"flask":      "tech",
	"fastapi":    "tech",
	"sqlite":     "tech",
	"postgresql": "tech",
	"redis":      "tech",
	"mcp":        "tech",
	"memory":     "concept",
	"graph":      "concept",
	"knowledge":  "concept",
	"embedding":  "concept",
}

// knownOrder fixes the scan order, and with it the order of Extract's
// output, across runs. Iterating knownEntities directly would scan in Go's
// randomized map order, so the declaration order is kept here explicitly
// instead.
var knownOrder = []string{
	"python", "javascript", "typescript", "rust", "golang", "docker",
	"kubernetes", "flask", "fastapi", "sqlite", "postgresql", "redis", "mcp",
	"memory", "graph", "knowledge", "embedding",
}

// DictionaryExtractor is the deterministic, always-available entity backend:
// a whole-word match against a fixed dictionary of known terms. It never
// fails and requires no external service.
type DictionaryExtractor struct{}

// NewDictionaryExtractor constructs the default, zero-configuration backend.
func NewDictionaryExtractor() *DictionaryExtractor {
	return &DictionaryExtractor{}
}

// Extract scans text for known dictionary terms, case-insensitively, and
// returns a deduplicated, noise-filtered list in dictionary order (the order
// of knownOrder, not the order the terms appear in text). Matches
// always report full confidence since they are exact dictionary hits.
func (d *DictionaryExtractor) Extract(_ context.Context, text string) ([]Entity, error) {
	if text == "" {
		return nil, nil
	}

	lower := strings.ToLower(text)
	var found []Entity
	for _, term := range knownOrder {
		if !containsWord(lower, term) {
			continue
		}
		if isNoise(term) {
			continue
		}
		found = append(found, Entity{
			Name:       term,
			Type:       normalizeType(knownEntities[term]),
			Confidence: 1.0,
		})
	}

	return dedupe(found), nil
}

// containsWord reports whether term occurs in text as a standalone word
// (not as a substring of a longer identifier).
func containsWord(text, term string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], term)
		if pos == -1 {
			return false
		}
		start := idx + pos
		end := start + len(term)
		beforeOK := start == 0 || !isWordChar(rune(text[start-1]))
		afterOK := end == len(text) || !isWordChar(rune(text[end]))
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

var _ Extractor = (*DictionaryExtractor)(nil)
