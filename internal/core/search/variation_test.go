package search

import (
	"testing"

	"recipe-discovery/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextVariationRotation(t *testing.T) {
	expected := []string{
		VariationSimilar,
		VariationRelated,
		VariationDifferent,
		VariationSurprise,
		VariationSimilar, // 繞回第一個
	}
	for count, name := range expected {
		assert.Equal(t, name, NextVariation(count).Name, "count=%d", count)
	}
}

func TestVariationSimilarPages(t *testing.T) {
	p := Params{Query: "pasta", Offset: 0, Number: 12}

	out := NextVariation(0).Apply(p, nil)

	assert.Equal(t, 12, out.Offset)
	assert.Equal(t, p.Query, out.Query)
}

func TestVariationRelatedDropsHardFilters(t *testing.T) {
	p := Params{
		Query:              "curry",
		IncludeIngredients: []string{"chicken"},
		Cuisine:            "thai",
		Diets:              []string{"vegan"},
		MaxReadyTime:       intPtr(30),
		Offset:             24,
		Number:             12,
	}

	out := NextVariation(1).Apply(p, nil)

	assert.Empty(t, out.IncludeIngredients)
	assert.Nil(t, out.MaxReadyTime)
	assert.Zero(t, out.Offset)
	// 菜系與飲食法保留
	assert.Equal(t, "thai", out.Cuisine)
	assert.Equal(t, []string{"vegan"}, out.Diets)
}

func TestVariationDifferentSwitchesCuisine(t *testing.T) {
	p := Params{Query: "green curry chicken", Cuisine: "thai", Number: 12}
	it := &common.Intent{
		Cuisine: common.CuisinePreference{
			Requested:    "Thai",
			Alternatives: []string{"Vietnamese", "Indian"},
		},
	}

	out := NextVariation(2).Apply(p, it)

	assert.Equal(t, "vietnamese", out.Cuisine)
	assert.Equal(t, "green", out.Query)

	// 沒有替代菜系就保持原樣
	out = NextVariation(2).Apply(p, &common.Intent{})
	assert.Equal(t, "thai", out.Cuisine)
}

func TestVariationSurpriseKeepsSafety(t *testing.T) {
	p := Params{
		Query:              "noodles",
		Cuisine:            "thai",
		Intolerances:       []string{"peanut"},
		Diets:              []string{"vegan"},
		ExcludeIngredients: []string{"cilantro"},
		MaxReadyTime:       intPtr(30),
		Number:             12,
	}

	out := NextVariation(3).Apply(p, nil)

	// 安全層與高優先層保留，其他全放
	assert.Equal(t, []string{"peanut"}, out.Intolerances)
	assert.Equal(t, []string{"vegan"}, out.Diets)
	assert.Equal(t, []string{"cilantro"}, out.ExcludeIngredients)
	assert.Empty(t, out.Query)
	assert.Empty(t, out.Cuisine)
	assert.Nil(t, out.MaxReadyTime)
	assert.Equal(t, SortRandom, out.Sort)
}

func makeRecipes(ids ...int) []common.RecipeSummary {
	out := make([]common.RecipeSummary, len(ids))
	for i, id := range ids {
		out[i] = common.RecipeSummary{ID: id}
	}
	return out
}

func TestFilterShownSmallBatchUntouched(t *testing.T) {
	// 原始結果不超過 10 筆，原樣回傳
	results := makeRecipes(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	shown := map[int]bool{1: true, 2: true}

	assert.Equal(t, results, FilterShown(results, shown))
}

func TestFilterShownRemovesSeen(t *testing.T) {
	results := makeRecipes(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)
	shown := map[int]bool{1: true, 2: true, 3: true}

	fresh := FilterShown(results, shown)

	require.Len(t, fresh, 9)
	for _, r := range fresh {
		assert.False(t, shown[r.ID])
	}
}

func TestFilterShownKeepsMinimumBatch(t *testing.T) {
	// 去重後剩不到 5 筆，寧可重複也不要太少
	results := makeRecipes(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)
	shown := map[int]bool{
		1: true, 2: true, 3: true, 4: true,
		5: true, 6: true, 7: true, 8: true,
	}

	assert.Equal(t, results, FilterShown(results, shown))
}

func TestFilterShownEmptySession(t *testing.T) {
	results := makeRecipes(1, 2, 3)
	assert.Equal(t, results, FilterShown(results, nil))
}
