// Package extract recovers normalized product records from marketplace pages,
// trying structured metadata first and DOM heuristics second.
package extract

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/shopsmart/shopsmart-cli/internal/model"
)

// Extractor attempts to build a product record from a parsed page.
// A nil product with a nil error means the strategy found nothing usable;
// the caller moves on to the next strategy.
type Extractor interface {
	Name() string
	Extract(doc *goquery.Document, pageURL *url.URL, source model.Source) (*model.Product, error)
}

// Chain tries extractors in priority order, returning the first product.
type Chain struct {
	extractors []Extractor
}

// NewChain creates a Chain. Extractors are tried in order.
func NewChain(extractors ...Extractor) *Chain {
	return &Chain{extractors: extractors}
}

// DefaultChain returns the standard extraction order: structured metadata
// first, DOM heuristics as the always-succeeding fallback.
func DefaultChain() *Chain {
	return NewChain(&StructuredData{}, &Heuristics{})
}

// Extract runs the chain. Strategy failures are logged and skipped; missing
// fields are represented as absent, never as errors.
func (c *Chain) Extract(doc *goquery.Document, pageURL *url.URL, source model.Source) *model.Product {
	for _, e := range c.extractors {
		p, err := e.Extract(doc, pageURL, source)
		if err != nil {
			zap.L().Debug("extract: strategy failed, trying next",
				zap.String("strategy", e.Name()),
				zap.String("url", pageURL.String()),
				zap.Error(err),
			)
			continue
		}
		if p != nil {
			return p
		}
	}
	return nil
}
