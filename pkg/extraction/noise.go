package extraction

import (
	"strings"
	"unicode"
)

// stopwords are generic, ordinal, and demonstrative words that never carry
// entity meaning on their own; any candidate equal to one of these (after
// normalization) is dropped regardless of which backend produced it.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "this": true, "that": true,
	"these": true, "those": true, "it": true, "he": true, "she": true,
	"they": true, "we": true, "you": true, "first": true, "second": true,
	"third": true, "last": true, "next": true, "previous": true,
	"something": true, "someone": true, "anything": true, "anyone": true,
	"today": true, "yesterday": true, "tomorrow": true,
}

func isPureDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isNoise applies the noise filter from the entity-extraction contract:
// drops empty strings, single-char strings other than "I", pure digits, and
// the stopword set. "a" is dropped too, both as a single char and as a
// stopword.
func isNoise(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return true
	}
	if len([]rune(trimmed)) == 1 && trimmed != "I" {
		return true
	}
	if isPureDigits(trimmed) {
		return true
	}
	if stopwords[strings.ToLower(trimmed)] {
		return true
	}
	return false
}

// dedupe removes duplicate entities by lowercase name, keeping first-seen
// order and the highest-confidence occurrence.
func dedupe(entities []Entity) []Entity {
	seen := make(map[string]int)
	var out []Entity
	for _, e := range entities {
		key := strings.ToLower(strings.TrimSpace(e.Name))
		if idx, ok := seen[key]; ok {
			if e.Confidence > out[idx].Confidence {
				out[idx] = e
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, e)
	}
	return out
}
