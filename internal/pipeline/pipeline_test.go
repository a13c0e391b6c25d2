package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsmart/shopsmart-cli/internal/config"
	"github.com/shopsmart/shopsmart-cli/internal/model"
	"github.com/shopsmart/shopsmart-cli/pkg/tavily"
)

// mockSearch implements tavily.Client.
type mockSearch struct {
	resp *tavily.SearchResponse
	err  error
}

func (m *mockSearch) Search(context.Context, string, ...tavily.SearchOption) (*tavily.SearchResponse, error) {
	return m.resp, m.err
}

// mockLLM returns canned completions keyed by prompt substring.
type mockLLM struct {
	responses map[string]string
	err       error
}

func (m *mockLLM) Complete(_ context.Context, prompt string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	for key, resp := range m.responses {
		if strings.Contains(prompt, key) {
			return resp, nil
		}
	}
	return "", nil
}

// mockExtractor returns canned products.
type mockExtractor struct {
	products []model.Product
	gotURLs  []string
}

func (m *mockExtractor) ExtractAll(_ context.Context, urls []string, _ int) []model.Product {
	m.gotURLs = urls
	return m.products
}

func testConfig() *config.Config {
	return &config.Config{
		Tavily:   config.TavilyConfig{Key: "tvly-test", Depth: "advanced"},
		Pipeline: config.PipelineConfig{MaxResults: 12, TopN: 5, MaxConcurrent: 4, Currency: "EGP"},
	}
}

func TestRun_MissingSearchKeyFatal(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Tavily.Key = ""
	p := New(cfg, &mockSearch{}, &mockLLM{}, &mockExtractor{})

	_, err := p.Run(context.Background(), "earbuds")
	assert.ErrorIs(t, err, ErrMissingSearchKey)
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	search := &mockSearch{resp: &tavily.SearchResponse{Results: []tavily.SearchResult{
		{URL: "https://www.amazon.eg/dp/A"},
		{URL: "https://www.jumia.com.eg/b.html"},
		{URL: "https://www.amazon.eg/dp/A"},      // duplicate, dropped
		{URL: "https://www.noon.com/uae-en/c"},   // wrong storefront, dropped
		{URL: "https://www.noon.com/egypt-en/d"}, // kept
	}}}
	lm := &mockLLM{responses: map[string]string{
		"Return JSON for SearchPlan": `Here you go: {"query":"anc earbuds","brand":"anker","max_price":2000,"min_rating":3.5}`,
		"Summarize pros/cons":        "Concise summary.",
		"Pick the best product":      "Reasoned pick.",
	}}
	extractor := &mockExtractor{products: []model.Product{
		{Title: "Over Budget", URL: "https://www.amazon.eg/dp/A", Price: model.Float(3000), Rating: model.Float(4.0)},
		{Title: "Anker In Budget", URL: "https://www.jumia.com.eg/b.html", Price: model.Float(1500), Rating: model.Float(3.0)},
	}}

	result, err := New(testConfig(), search, lm, extractor).Run(context.Background(), "wireless earbuds under 2000 EGP")

	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "anc earbuds", result.Plan.Query)
	assert.Equal(t, "anker", result.Plan.Brand)

	assert.Equal(t, []string{
		"https://www.amazon.eg/dp/A",
		"https://www.jumia.com.eg/b.html",
		"https://www.noon.com/egypt-en/d",
	}, result.URLs)
	assert.Equal(t, result.URLs, extractor.gotURLs)

	// In-budget brand match outranks the over-budget record.
	require.Len(t, result.Top5, 2)
	assert.Equal(t, "Anker In Budget", result.Top5[0].Title)

	assert.Equal(t, "Concise summary.", result.Summary)
	require.NotNil(t, result.Recommendation.Best)
	assert.Equal(t, "Anker In Budget", result.Recommendation.Best.Title)
	require.Len(t, result.Recommendation.RunnersUp, 1)
	assert.Equal(t, "Over Budget", result.Recommendation.RunnersUp[0].Title)
	assert.Equal(t, "Reasoned pick.", result.Recommendation.Reasoning)
}

func TestRun_PlanParseFailureFallsBack(t *testing.T) {
	t.Parallel()

	search := &mockSearch{resp: &tavily.SearchResponse{}}
	lm := &mockLLM{responses: map[string]string{
		"Return JSON for SearchPlan": "I could not produce JSON, sorry.",
	}}

	result, err := New(testConfig(), search, lm, &mockExtractor{}).Run(context.Background(), "raw query text")

	require.NoError(t, err)
	assert.Equal(t, "raw query text", result.Plan.Query)
	assert.Empty(t, result.Plan.Brand)
}

func TestRun_PlanCompletionErrorFallsBack(t *testing.T) {
	t.Parallel()

	search := &mockSearch{resp: &tavily.SearchResponse{}}
	lm := &mockLLM{err: eris.New("provider down")}

	result, err := New(testConfig(), search, lm, &mockExtractor{}).Run(context.Background(), "raw query")

	require.NoError(t, err)
	assert.Equal(t, "raw query", result.Plan.Query)
}

func TestRun_ZeroProductsWellFormed(t *testing.T) {
	t.Parallel()

	search := &mockSearch{resp: &tavily.SearchResponse{Results: []tavily.SearchResult{
		{URL: "https://www.amazon.eg/dp/A"},
	}}}
	lm := &mockLLM{responses: map[string]string{}}

	result, err := New(testConfig(), search, lm, &mockExtractor{}).Run(context.Background(), "earbuds")

	require.NoError(t, err)
	assert.Len(t, result.URLs, 1)
	assert.Empty(t, result.Products)
	assert.Empty(t, result.Top5)
	assert.Empty(t, result.Summary)
	assert.Nil(t, result.Recommendation.Best)
}

func TestRun_SearchErrorPropagates(t *testing.T) {
	t.Parallel()

	search := &mockSearch{err: eris.New("tavily: status 500")}
	_, err := New(testConfig(), search, &mockLLM{}, &mockExtractor{}).Run(context.Background(), "earbuds")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search")
}

func TestJSONSpan(t *testing.T) {
	t.Parallel()

	span, ok := jsonSpan(`prose {"a":1} trailing`)
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, span)

	_, ok = jsonSpan("no braces here")
	assert.False(t, ok)
}
