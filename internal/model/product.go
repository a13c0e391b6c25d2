// Package model defines the core types shared across the research pipeline.
package model

// Source identifies one of the supported marketplace domain families.
type Source string

const (
	SourceAmazonEG Source = "amazon.eg"
	SourceJumiaEG  Source = "jumia.com.eg"
	SourceNoonEG   Source = "noon.com/egypt-en"
)

// AllSources returns the supported marketplace identifiers.
func AllSources() []Source {
	return []Source{SourceAmazonEG, SourceJumiaEG, SourceNoonEG}
}

// Product is a normalized shopping candidate extracted from a marketplace page.
// Optional numeric fields are pointers; nil means the value could not be
// recovered from the page.
type Product struct {
	Title        string            `json:"title"`
	URL          string            `json:"url"`
	Price        *float64          `json:"price,omitempty"`
	Currency     string            `json:"currency"`
	Rating       *float64          `json:"rating,omitempty"`
	ReviewCount  *int              `json:"review_count,omitempty"`
	Availability string            `json:"availability,omitempty"`
	Images       []string          `json:"images,omitempty"`
	Source       Source            `json:"source,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// UnknownTitle is the sentinel used when no title can be recovered.
const UnknownTitle = "Unknown"

// DefaultCurrency is assumed when a page does not declare one.
const DefaultCurrency = "EGP"

// SearchPlan is the user's shopping intent normalized for search and ranking.
// Produced once per pipeline run and immutable thereafter.
type SearchPlan struct {
	Query     string   `json:"query"`
	Brand     string   `json:"brand,omitempty"`
	MaxPrice  *float64 `json:"max_price,omitempty"`
	MinRating *float64 `json:"min_rating,omitempty"`
	Features  []string `json:"features,omitempty"`
}

// Recommendation is the final pick plus reasoning.
type Recommendation struct {
	Best      *Product  `json:"best"`
	RunnersUp []Product `json:"runners_up"`
	Reasoning string    `json:"reasoning"`
}

// ResearchResult is the bundle returned by one pipeline run.
type ResearchResult struct {
	RunID          string         `json:"run_id"`
	Plan           SearchPlan     `json:"plan"`
	URLs           []string       `json:"urls"`
	Products       []Product      `json:"products"`
	Top5           []Product      `json:"top5"`
	Summary        string         `json:"summary"`
	Recommendation Recommendation `json:"recommendation"`
}

// Float returns a pointer to v. Convenience for literals and tests.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
