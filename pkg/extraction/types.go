// Package extraction implements the entity extractor (C2): a pure function
// from text to a deduplicated list of (name, type, confidence) entities.
package extraction

import "context"

// Entity is one named entity recognized in note text.
type Entity struct {
	Name       string
	Type       string
	Confidence float64
}

// Extractor is the C2 contract. Backends are pluggable: a deterministic
// dictionary/regex matcher is always available, and an optional statistical
// backend may be selected by configuration.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
}

// validTypes is the closed taxonomy every backend's output is mapped into,
// with "concept" as the fallback for anything unrecognized.
var validTypes = map[string]bool{
	"person":       true,
	"organization": true,
	"location":     true,
	"product":      true,
	"event":        true,
	"tech":         true,
	"concept":      true,
	"temporal":     true,
	"financial":    true,
	"measurement":  true,
}

// normalizeType maps a backend-reported type to the closed taxonomy,
// defaulting unrecognized values to "concept".
func normalizeType(t string) string {
	if validTypes[t] {
		return t
	}
	return "concept"
}
