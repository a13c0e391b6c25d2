package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/shopsmart/shopsmart-cli/internal/model"
	"github.com/shopsmart/shopsmart-cli/internal/price"
)

// maxImages caps how many page images are kept on a DOM-extracted record.
const maxImages = 5

// priceSelectors are tried in order across all marketplaces. The list mixes
// Amazon, Jumia and generic storefront conventions; the first selector whose
// content parses as a number wins.
var priceSelectors = []string{
	"[data-asin-price]",
	"#priceblock_ourprice",
	"#priceblock_dealprice",
	"[data-old-price]",
	".price ._price",
	".-fs24",
	".price-number",
	".product-price",
	"meta[itemprop='price']",
	"span[data-price]",
	"span.price",
	"div.price",
}

// ratingSelectors are tried in order; the first numeric token found wins.
var ratingSelectors = []string{
	"i[data-hook='average-star-rating'] span",
	"span[data-hook='rating-out-of-text']",
	".rating-stars",
	".rating .-fs16",
	"span.rating__value",
}

// Heuristics scans the rendered document with prioritized selector lists.
// It always produces a record; fields it cannot recover stay absent.
type Heuristics struct{}

// Name implements Extractor.
func (h *Heuristics) Name() string { return "dom" }

// Extract implements Extractor. It never returns an error.
func (h *Heuristics) Extract(doc *goquery.Document, pageURL *url.URL, source model.Source) (*model.Product, error) {
	p := &model.Product{
		Title:    h.title(doc),
		URL:      pageURL.String(),
		Currency: model.DefaultCurrency,
		Source:   source,
		Extra:    map[string]string{"jsonld": "false"},
	}

	for _, sel := range priceSelectors {
		text, ok := selectorContent(doc, sel)
		if !ok {
			continue
		}
		if v, parsed := price.ParseNumber(text); parsed {
			p.Price = model.Float(v)
			break
		}
	}

	for _, sel := range ratingSelectors {
		text, ok := selectorContent(doc, sel)
		if !ok {
			continue
		}
		if v, parsed := price.ParseNumber(text); parsed {
			p.Rating = model.Float(v)
			break
		}
	}

	p.Images = h.images(doc)

	return p, nil
}

func (h *Heuristics) title(doc *goquery.Document) string {
	if og, ok := doc.Find("meta[property='og:title']").First().Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return model.UnknownTitle
}

// images collects src/data-src of image elements with absolute http URLs,
// in document order, truncated to maxImages.
func (h *Heuristics) images(doc *goquery.Document) []string {
	var images []string
	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, ok := sel.Attr("src")
		if !ok || src == "" {
			src, _ = sel.Attr("data-src")
		}
		if strings.HasPrefix(src, "http") {
			images = append(images, src)
		}
		return len(images) < maxImages
	})
	return images
}

// selectorContent returns the content attribute of the first match when
// present, else its text. False when the selector matches nothing.
func selectorContent(doc *goquery.Document, selector string) (string, bool) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	if content, ok := sel.Attr("content"); ok {
		return content, true
	}
	return strings.TrimSpace(sel.Text()), true
}
