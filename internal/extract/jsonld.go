package extract

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/shopsmart/shopsmart-cli/internal/model"
)

// StructuredData extracts a product from schema.org JSON-LD blocks embedded
// in the page. Returns nil when no Product/ProductGroup block exists.
type StructuredData struct{}

// Name implements Extractor.
func (s *StructuredData) Name() string { return "jsonld" }

// Extract scans every ld+json script block, tolerating top-level arrays and
// @graph wrappers, and maps the first Product/ProductGroup block onto a
// normalized record. Numeric coercions that fail are treated as absent.
func (s *StructuredData) Extract(doc *goquery.Document, pageURL *url.URL, source model.Source) (*model.Product, error) {
	var block map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(sel.Text()), &raw); err != nil {
			// Malformed block: skip, keep scanning.
			return true
		}
		if found := findProductNode(raw); found != nil {
			block = found
			return false
		}
		return true
	})

	if block == nil {
		return nil, nil
	}

	base := baseURL(doc, pageURL)

	p := &model.Product{
		Title:    model.UnknownTitle,
		URL:      pageURL.String(),
		Currency: model.DefaultCurrency,
		Source:   source,
		Extra:    map[string]string{"jsonld": "true"},
	}

	if name, ok := block["name"].(string); ok && name != "" {
		p.Title = name
	}

	offers := firstOffer(block["offers"])
	if offers != nil {
		if v, ok := coerceFloat(offers["price"]); ok {
			p.Price = model.Float(v)
		}
		if cur, ok := offers["priceCurrency"].(string); ok && cur != "" {
			p.Currency = cur
		}
		if avail, ok := offers["availability"].(string); ok && avail != "" {
			// schema.org availability is a URI; keep the last path segment.
			parts := strings.Split(avail, "/")
			p.Availability = parts[len(parts)-1]
		}
	}

	if agg, ok := block["aggregateRating"].(map[string]any); ok {
		if v, ok := coerceFloat(agg["ratingValue"]); ok {
			p.Rating = model.Float(v)
		}
		if v, ok := coerceInt(agg["reviewCount"]); ok {
			p.ReviewCount = model.Int(v)
		}
	}

	p.Images = imageList(block["image"], base)

	return p, nil
}

// findProductNode locates the first Product/ProductGroup node in a decoded
// JSON-LD document, which may be an object, an array, or a @graph wrapper.
func findProductNode(raw any) map[string]any {
	switch node := raw.(type) {
	case map[string]any:
		if isProductType(node["@type"]) {
			return node
		}
		if graph, ok := node["@graph"].([]any); ok {
			return findProductNode(graph)
		}
	case []any:
		for _, item := range node {
			if found := findProductNode(item); found != nil {
				return found
			}
		}
	}
	return nil
}

// isProductType handles @type as a plain string or a list of types.
func isProductType(t any) bool {
	switch typ := t.(type) {
	case string:
		return typ == "Product" || typ == "ProductGroup"
	case []any:
		for _, item := range typ {
			if s, ok := item.(string); ok && (s == "Product" || s == "ProductGroup") {
				return true
			}
		}
	}
	return false
}

// firstOffer returns the offers object, taking the first element when the
// page declares a list of offers.
func firstOffer(v any) map[string]any {
	switch offers := v.(type) {
	case map[string]any:
		return offers
	case []any:
		if len(offers) > 0 {
			if m, ok := offers[0].(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}

// imageList normalizes the schema.org image field: a string, a list of
// strings, or a list of {url: ...} objects. Relative URLs are resolved
// against the page base.
func imageList(v any, base *url.URL) []string {
	var out []string
	add := func(raw string) {
		if raw == "" {
			return
		}
		if resolved := resolveURL(base, raw); resolved != "" {
			out = append(out, resolved)
		}
	}

	switch images := v.(type) {
	case string:
		add(images)
	case []any:
		for _, item := range images {
			switch im := item.(type) {
			case string:
				add(im)
			case map[string]any:
				if u, ok := im["url"].(string); ok {
					add(u)
				}
			}
		}
	}
	return out
}

// baseURL returns the document's <base href> resolved against the page URL,
// or the page URL itself.
func baseURL(doc *goquery.Document, pageURL *url.URL) *url.URL {
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok || href == "" {
		return pageURL
	}
	base, err := pageURL.Parse(href)
	if err != nil {
		return pageURL
	}
	return base
}

func resolveURL(base *url.URL, raw string) string {
	u, err := base.Parse(raw)
	if err != nil {
		return ""
	}
	return u.String()
}

func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		if n == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func coerceInt(v any) (int, bool) {
	if f, ok := coerceFloat(v); ok {
		return int(f), true
	}
	return 0, false
}
