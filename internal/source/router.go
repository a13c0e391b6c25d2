// Package source classifies marketplace URLs and dispatches extraction.
package source

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shopsmart/shopsmart-cli/internal/extract"
	"github.com/shopsmart/shopsmart-cli/internal/model"
)

// ErrUnsupportedDomain is returned for URLs outside the marketplace allowlist.
var ErrUnsupportedDomain = eris.New("source: unsupported domain")

// ErrMissingEgyptPath is returned for noon.com URLs that are not Egypt
// storefront pages.
var ErrMissingEgyptPath = eris.New("source: noon url outside egypt storefront")

var amazonHosts = map[string]struct{}{
	"amazon.eg":     {},
	"www.amazon.eg": {},
}

var jumiaHosts = map[string]struct{}{
	"jumia.com.eg":     {},
	"www.jumia.com.eg": {},
}

var noonHosts = map[string]struct{}{
	"noon.com":     {},
	"www.noon.com": {},
}

// egyptPathMarkers identify noon.com Egypt storefront pages.
var egyptPathMarkers = []string{"/egypt-en", "/egypt_en", "/egypt-"}

// Fetcher retrieves a raw document for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Router classifies URLs against the marketplace allowlist and runs the
// extraction chain over accepted pages.
type Router struct {
	fetcher Fetcher
	chain   *extract.Chain
}

// NewRouter creates a Router. A nil chain uses the default extraction order.
func NewRouter(fetcher Fetcher, chain *extract.Chain) *Router {
	if chain == nil {
		chain = extract.DefaultChain()
	}
	return &Router{fetcher: fetcher, chain: chain}
}

// Classify maps a URL to its marketplace source without touching the
// network. Host matching is case-insensitive; noon.com additionally
// requires an Egypt path marker.
func Classify(rawURL string) (model.Source, *url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, eris.Wrapf(ErrUnsupportedDomain, "source: parse url %q", rawURL)
	}
	host := strings.ToLower(u.Hostname())

	if _, ok := amazonHosts[host]; ok {
		return model.SourceAmazonEG, u, nil
	}
	if _, ok := jumiaHosts[host]; ok {
		return model.SourceJumiaEG, u, nil
	}
	if _, ok := noonHosts[host]; ok {
		if !hasEgyptMarker(u.Path) {
			return "", nil, ErrMissingEgyptPath
		}
		return model.SourceNoonEG, u, nil
	}
	return "", nil, ErrUnsupportedDomain
}

func hasEgyptMarker(path string) bool {
	path = strings.ToLower(path)
	for _, marker := range egyptPathMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	// A bare /egypt segment also counts.
	return strings.Contains(path, "/egypt/") || strings.HasSuffix(path, "/egypt")
}

// Route classifies a URL, fetches the page once, and runs the extraction
// chain. Returns an error for rejected URLs (no fetch performed) and for
// fetch or parse failures.
func (r *Router) Route(ctx context.Context, rawURL string) (*model.Product, error) {
	source, u, err := Classify(rawURL)
	if err != nil {
		return nil, err
	}

	html, err := r.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "source: fetch page")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "source: parse document")
	}

	p := r.chain.Extract(doc, u, source)
	if p == nil {
		return nil, eris.Errorf("source: no extractor produced a record for %s", rawURL)
	}
	return p, nil
}

// ExtractAll routes a batch of URLs with bounded concurrency. Per-URL
// failures are logged and dropped; the returned slice preserves input
// order regardless of completion order.
func (r *Router) ExtractAll(ctx context.Context, urls []string, maxConcurrent int) []model.Product {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	results := make([]*model.Product, len(urls))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, u := range urls {
		g.Go(func() error {
			p, err := r.Route(gCtx, u)
			if err != nil {
				zap.L().Debug("source: url skipped",
					zap.String("url", u),
					zap.Error(err),
				)
				return nil
			}
			results[i] = p
			return nil
		})
	}

	_ = g.Wait()

	products := make([]model.Product, 0, len(urls))
	for _, p := range results {
		if p != nil {
			products = append(products, *p)
		}
	}
	return products
}
