package usecase

import (
	"context"

	"calassist-service/pkg/nlp"
)

// SlotParser is the extraction strategy the assistant runs on every message.
// Implementations must always return a usable record; a parser that cannot
// extract falls back to defaults rather than erroring.
type SlotParser interface {
	Extract(ctx context.Context, text string, contextEvent *nlp.ContextEvent) nlp.SlotRecord
}

// RulesParser adapts the regex slot extractor to the SlotParser interface.
type RulesParser struct {
	extractor *nlp.SlotExtractor
}

// NewRulesParser creates a new rules-based parser
func NewRulesParser(extractor *nlp.SlotExtractor) *RulesParser {
	return &RulesParser{extractor: extractor}
}

// Extract runs the regex passes; the context is unused because extraction is
// purely local.
func (p *RulesParser) Extract(_ context.Context, text string, contextEvent *nlp.ContextEvent) nlp.SlotRecord {
	return p.extractor.Extract(text, contextEvent)
}
