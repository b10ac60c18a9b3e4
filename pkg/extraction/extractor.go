package extraction

import (
	"context"
	"log"

	"github.com/dsolli/memgraph/pkg/llm"
)

// combinedExtractor runs the dictionary backend and the statistical backend
// together, unioning their output deduplicated by name — the reference
// engine's spaCy backend does the same ("regex entities ∪ spaCy doc.ents").
// If the statistical backend fails, extraction falls back to the dictionary
// result alone rather than failing the ingestion.
type combinedExtractor struct {
	dictionary  *DictionaryExtractor
	statistical *StatisticalExtractor
}

func (c *combinedExtractor) Extract(ctx context.Context, text string) ([]Entity, error) {
	base, err := c.dictionary.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	extra, err := c.statistical.Extract(ctx, text)
	if err != nil {
		log.Printf("extraction: statistical backend failed, falling back to dictionary only: %v", err)
		return base, nil
	}

	return dedupe(append(base, extra...)), nil
}

// NewExtractor selects an extraction backend by the ENTITY_EXTRACTOR
// configuration value. "statistical" requires an llm.LLMClient and unions
// its output with the always-available dictionary backend; any other value
// (including empty) selects the dictionary backend alone.
func NewExtractor(kind string, statisticalClient llm.LLMClient) Extractor {
	dict := NewDictionaryExtractor()
	if kind != "statistical" || statisticalClient == nil {
		return dict
	}
	return &combinedExtractor{
		dictionary:  dict,
		statistical: NewStatisticalExtractor(statisticalClient),
	}
}
