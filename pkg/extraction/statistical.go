package extraction

import (
	"context"
	"fmt"
	"log"

	"github.com/dsolli/memgraph/pkg/llm"
)

// statisticalEntity is the wire shape an LLM-backed NER-style backend
// returns; it stands in for a statistical NER provider per the component's
// "optional statistical NER provider selected by configuration" contract.
type statisticalEntity struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

const statisticalExtractionPrompt = `Identify named entities in the following text.
For each entity, report:
- name: the entity's surface form
- type: one of [person, organization, location, product, event, tech, concept, temporal, financial, measurement]
- confidence: your confidence this is a genuine entity, from 0.0 to 1.0

Text:
---
%s
---

Return ONLY a valid JSON array: [{"name": "...", "type": "...", "confidence": 0.0}, ...]`

// StatisticalExtractor is the optional backend selected by
// ENTITY_EXTRACTOR=statistical. It delegates recognition to an LLM acting as
// a practical stand-in for a statistical NER model, reusing the same
// schema-constrained completion machinery the engine uses elsewhere.
type StatisticalExtractor struct {
	LLM llm.LLMClient
}

// NewStatisticalExtractor constructs the optional backend.
func NewStatisticalExtractor(client llm.LLMClient) *StatisticalExtractor {
	return &StatisticalExtractor{LLM: client}
}

// Extract asks the backend for entities, drops anything the noise filter or
// an NER "number" label would reject, normalizes types into the closed
// taxonomy, and deduplicates by name.
func (s *StatisticalExtractor) Extract(ctx context.Context, text string) ([]Entity, error) {
	if text == "" {
		return nil, nil
	}

	prompt := fmt.Sprintf(statisticalExtractionPrompt, text)

	var raw []statisticalEntity
	if err := s.LLM.CompleteWithSchema(ctx, prompt, &raw); err != nil {
		return nil, fmt.Errorf("statistical entity extraction failed: %w", err)
	}

	var entities []Entity
	for _, r := range raw {
		if r.Name == "" {
			continue
		}
		if r.Type == "number" {
			continue
		}
		if isNoise(r.Name) {
			continue
		}
		confidence := r.Confidence
		if confidence <= 0 {
			confidence = 0.5
		}
		if confidence > 1 {
			confidence = 1.0
		}

		normalized := normalizeType(r.Type)
		if normalized != r.Type && r.Type != "" {
			log.Printf("extraction: entity %q has unrecognized type %q, normalizing to concept", r.Name, r.Type)
		}

		entities = append(entities, Entity{Name: r.Name, Type: normalized, Confidence: confidence})
	}

	return dedupe(entities), nil
}

var _ Extractor = (*StatisticalExtractor)(nil)
