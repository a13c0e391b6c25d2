// Package rank scores and orders product records against the user's
// constraints. Constraints are soft preferences: records that miss the
// budget or rating threshold are demoted, never removed.
package rank

import (
	"math"
	"sort"
	"strings"

	"github.com/shopsmart/shopsmart-cli/internal/model"
)

// Score computes the additive preference score for a single product.
//
// Price: within budget +3.0; known but no budget given or over budget +1.0;
// unknown +0. Rating: linear rating/5*3.0 capped at 3.0, plus +1.0 when the
// minimum-rating threshold is met. Brand: +2.0 on a case-insensitive
// substring match against the title.
func Score(p model.Product, plan model.SearchPlan) float64 {
	score := 0.0

	if p.Price != nil {
		if plan.MaxPrice != nil && *p.Price <= *plan.MaxPrice {
			score += 3.0
		} else {
			score += 1.0 // price known but above budget
		}
	}

	if p.Rating != nil {
		score += math.Min(*p.Rating/5.0*3.0, 3.0)
		if plan.MinRating != nil && *p.Rating >= *plan.MinRating {
			score += 1.0
		}
	}

	if plan.Brand != "" && strings.Contains(strings.ToLower(p.Title), strings.ToLower(plan.Brand)) {
		score += 2.0
	}

	return score
}

// Rank returns products ordered by descending score. The sort is stable:
// equal scores keep their extraction order. The input slice is not modified.
func Rank(products []model.Product, plan model.SearchPlan) []model.Product {
	ranked := make([]model.Product, len(products))
	copy(ranked, products)

	scores := make([]float64, len(ranked))
	for i, p := range ranked {
		scores[i] = Score(p, plan)
	}

	idx := make([]int, len(ranked))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	out := make([]model.Product, len(ranked))
	for i, j := range idx {
		out[i] = ranked[j]
	}
	return out
}
