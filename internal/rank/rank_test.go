package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsmart/shopsmart-cli/internal/model"
)

func TestScore_PriceComponent(t *testing.T) {
	t.Parallel()

	budget := model.SearchPlan{MaxPrice: model.Float(2000)}

	inBudget := model.Product{Price: model.Float(1500)}
	overBudget := model.Product{Price: model.Float(3000)}
	unknown := model.Product{}

	assert.InDelta(t, 3.0, Score(inBudget, budget), 0.001)
	assert.InDelta(t, 1.0, Score(overBudget, budget), 0.001)
	assert.InDelta(t, 0.0, Score(unknown, budget), 0.001)

	// A record within budget scores 2.0 higher than an identical one over it.
	assert.InDelta(t, 2.0, Score(inBudget, budget)-Score(overBudget, budget), 0.001)

	// Known price without any budget still earns the base point.
	assert.InDelta(t, 1.0, Score(inBudget, model.SearchPlan{}), 0.001)
}

func TestScore_RatingCappedAtThree(t *testing.T) {
	t.Parallel()

	plan := model.SearchPlan{}

	five := model.Product{Rating: model.Float(5.0)}
	absurd := model.Product{Rating: model.Float(10.0)}

	assert.InDelta(t, 3.0, Score(five, plan), 0.001)
	assert.InDelta(t, Score(five, plan), Score(absurd, plan), 0.001)
}

func TestScore_RatingThresholdBonus(t *testing.T) {
	t.Parallel()

	plan := model.SearchPlan{MinRating: model.Float(4.0)}

	meets := model.Product{Rating: model.Float(4.0)}
	misses := model.Product{Rating: model.Float(3.9)}

	// 4.0/5*3 + 1.0 bonus vs 3.9/5*3 with no bonus.
	assert.InDelta(t, 3.4, Score(meets, plan), 0.001)
	assert.InDelta(t, 2.34, Score(misses, plan), 0.001)
}

func TestScore_BrandMatchCaseInsensitive(t *testing.T) {
	t.Parallel()

	plan := model.SearchPlan{Brand: "anker"}

	match := model.Product{Title: "Anker Soundcore Life P2"}
	noMatch := model.Product{Title: "JBL Tune 510BT"}

	assert.InDelta(t, 2.0, Score(match, plan), 0.001)
	assert.InDelta(t, 0.0, Score(noMatch, plan), 0.001)
}

func TestRank_BudgetBeatsRating(t *testing.T) {
	t.Parallel()

	// Over-budget high-rating record loses to in-budget lower-rating record.
	plan := model.SearchPlan{MaxPrice: model.Float(2000), MinRating: model.Float(3.5)}
	products := []model.Product{
		{Title: "A", Price: model.Float(3000), Rating: model.Float(4.0)}, // 1.0 + 2.4 = 3.4
		{Title: "B", Price: model.Float(1500), Rating: model.Float(3.0)}, // 3.0 + 1.8 = 4.8
	}

	ranked := Rank(products, plan)

	require.Len(t, ranked, 2)
	assert.Equal(t, "B", ranked[0].Title)
	assert.Equal(t, "A", ranked[1].Title)
}

func TestRank_StableOnTies(t *testing.T) {
	t.Parallel()

	plan := model.SearchPlan{}
	products := []model.Product{
		{Title: "First", Price: model.Float(100)},
		{Title: "Second", Price: model.Float(200)},
		{Title: "Third", Price: model.Float(300)},
	}

	ranked := Rank(products, plan)

	// All score 1.0; extraction order is preserved.
	require.Len(t, ranked, 3)
	assert.Equal(t, "First", ranked[0].Title)
	assert.Equal(t, "Second", ranked[1].Title)
	assert.Equal(t, "Third", ranked[2].Title)
}

func TestRank_DoesNotFilter(t *testing.T) {
	t.Parallel()

	plan := model.SearchPlan{MaxPrice: model.Float(500), MinRating: model.Float(4.5)}
	products := []model.Product{
		{Title: "Over budget, low rating", Price: model.Float(9000), Rating: model.Float(1.0)},
	}

	ranked := Rank(products, plan)
	assert.Len(t, ranked, 1)
}

func TestRank_InputUntouched(t *testing.T) {
	t.Parallel()

	plan := model.SearchPlan{MaxPrice: model.Float(2000)}
	products := []model.Product{
		{Title: "Over", Price: model.Float(3000)},
		{Title: "In", Price: model.Float(1000)},
	}

	_ = Rank(products, plan)

	assert.Equal(t, "Over", products[0].Title)
	assert.Equal(t, "In", products[1].Title)
}
