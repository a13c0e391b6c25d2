// Package pipeline orchestrates one research run: plan, search, extract,
// rank, summarize, recommend.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shopsmart/shopsmart-cli/internal/config"
	"github.com/shopsmart/shopsmart-cli/internal/model"
	"github.com/shopsmart/shopsmart-cli/internal/rank"
	"github.com/shopsmart/shopsmart-cli/internal/source"
	"github.com/shopsmart/shopsmart-cli/pkg/llm"
	"github.com/shopsmart/shopsmart-cli/pkg/tavily"
)

// ErrMissingSearchKey is returned when the Tavily credential is absent.
// This is the only fatal configuration condition of a run.
var ErrMissingSearchKey = eris.New("pipeline: tavily api key missing")

// searchDomains restricts the search to the supported marketplace families.
var searchDomains = []string{
	"www.amazon.eg", "amazon.eg",
	"www.jumia.com.eg", "jumia.com.eg",
	"www.noon.com", "noon.com",
}

// Extractor routes a batch of URLs through extraction.
type Extractor interface {
	ExtractAll(ctx context.Context, urls []string, maxConcurrent int) []model.Product
}

// Pipeline runs the end-to-end research flow. Each run is independent and
// stateless apart from the injected configuration.
type Pipeline struct {
	search    tavily.Client
	llm       llm.Client
	extractor Extractor
	cfg       config.PipelineConfig
	searchKey string
	depth     string
	currency  string
}

// New creates a Pipeline with its collaborators.
func New(cfg *config.Config, search tavily.Client, lm llm.Client, extractor Extractor) *Pipeline {
	currency := cfg.Pipeline.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}
	return &Pipeline{
		search:    search,
		llm:       lm,
		extractor: extractor,
		cfg:       cfg.Pipeline,
		searchKey: cfg.Tavily.Key,
		depth:     cfg.Tavily.Depth,
		currency:  currency,
	}
}

// Run executes one research pass for a free-text shopping request.
// Zero extracted products still yields a well-formed (empty) result; only
// the missing search credential is fatal.
func (p *Pipeline) Run(ctx context.Context, userInput string) (*model.ResearchResult, error) {
	if p.searchKey == "" {
		return nil, ErrMissingSearchKey
	}

	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))

	plan := p.plan(ctx, userInput)
	log.Info("pipeline: plan ready",
		zap.String("query", plan.Query),
		zap.String("brand", plan.Brand),
	)

	urls, err := p.searchURLs(ctx, plan.Query)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: search")
	}
	log.Info("pipeline: search complete", zap.Int("urls", len(urls)))

	products := p.extractor.ExtractAll(ctx, urls, p.cfg.MaxConcurrent)
	log.Info("pipeline: extraction complete",
		zap.Int("attempted", len(urls)),
		zap.Int("extracted", len(products)),
	)

	ranked := rank.Rank(products, plan)
	topN := p.cfg.TopN
	if topN <= 0 {
		topN = 5
	}
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	result := &model.ResearchResult{
		RunID:    runID,
		Plan:     plan,
		URLs:     urls,
		Products: products,
		Top5:     ranked,
	}

	if len(ranked) == 0 {
		log.Warn("pipeline: no products extracted, skipping summarization")
		return result, nil
	}

	shortlist := p.shortlistContext(ranked)
	result.Summary = p.complete(ctx, log, "summary",
		fmt.Sprintf("Summarize pros/cons and who it's for across these products:\n%s\nBe concise.", shortlist))

	reasoning := p.complete(ctx, log, "recommendation",
		fmt.Sprintf("Pick the best product for: brand=%s, max_price=%s, min_rating=%s, features=%s.\nCandidates:\n%s\nExplain decision in 3-5 sentences.",
			orUnset(plan.Brand), floatOrUnset(plan.MaxPrice), floatOrUnset(plan.MinRating),
			strings.Join(plan.Features, ", "), shortlist))

	best := ranked[0]
	runnersUp := ranked[1:min(3, len(ranked))]
	result.Recommendation = model.Recommendation{
		Best:      &best,
		RunnersUp: runnersUp,
		Reasoning: reasoning,
	}

	return result, nil
}

// plan asks the LLM for a SearchPlan JSON object. Any failure degrades to a
// minimal plan carrying only the raw query.
func (p *Pipeline) plan(ctx context.Context, userInput string) model.SearchPlan {
	fallback := model.SearchPlan{Query: userInput}

	raw, err := p.llm.Complete(ctx, fmt.Sprintf(
		"User input: %s\nReturn JSON for SearchPlan with keys query, brand, max_price, min_rating, features. Prefer EGP and Egypt-specific terms. Keep query short and specific.",
		userInput))
	if err != nil {
		zap.L().Warn("pipeline: plan completion failed, using raw query", zap.Error(err))
		return fallback
	}

	span, ok := jsonSpan(raw)
	if !ok {
		return fallback
	}
	var plan model.SearchPlan
	if err := json.Unmarshal([]byte(span), &plan); err != nil || plan.Query == "" {
		return fallback
	}
	return plan
}

// searchURLs queries the search collaborator restricted to the marketplace
// domains, re-filters noon to its Egypt storefront, and dedupes preserving
// order.
func (p *Pipeline) searchURLs(ctx context.Context, query string) ([]string, error) {
	maxResults := p.cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 12
	}

	resp, err := p.search.Search(ctx, query,
		tavily.WithMaxResults(maxResults),
		tavily.WithSearchDepth(p.depth),
		tavily.WithIncludeDomains(searchDomains...),
	)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var urls []string
	for _, item := range resp.Results {
		u := item.URL
		if u == "" {
			continue
		}
		// The search API constrains by domain, but the Egypt sub-path rule
		// for noon is re-applied here.
		if strings.Contains(u, "noon.com") {
			if _, _, err := source.Classify(u); err != nil {
				continue
			}
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
		if len(urls) == maxResults {
			break
		}
	}
	return urls, nil
}

// shortlistContext renders the ranked shortlist for the LLM prompts.
func (p *Pipeline) shortlistContext(products []model.Product) string {
	lines := make([]string, len(products))
	for i, prod := range products {
		priceText := "unknown"
		if prod.Price != nil {
			priceText = fmt.Sprintf("%g", *prod.Price)
		}
		lines[i] = fmt.Sprintf("- %s | %s %s | %s", prod.Title, priceText, p.currency, prod.Source)
	}
	return strings.Join(lines, "\n")
}

// complete runs one LLM call; failures degrade to an empty string so a
// finished extraction run is never thrown away over a summarization error.
func (p *Pipeline) complete(ctx context.Context, log *zap.Logger, phase, prompt string) string {
	out, err := p.llm.Complete(ctx, prompt)
	if err != nil {
		log.Warn("pipeline: completion failed",
			zap.String("phase", phase),
			zap.Error(err),
		)
		return ""
	}
	return out
}

// jsonSpan extracts the first {...} span of a completion, tolerating prose
// around the JSON object.
func jsonSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func orUnset(s string) string {
	if s == "" {
		return "unset"
	}
	return s
}

func floatOrUnset(v *float64) string {
	if v == nil {
		return "unset"
	}
	return fmt.Sprintf("%g", *v)
}
