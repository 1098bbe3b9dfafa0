package search

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"recipe-discovery/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher 以腳本決定每次呼叫的回傳
type fakeSearcher struct {
	calls     []Params
	responses []fakeResponse
}

type fakeResponse struct {
	result *Result
	err    error
}

func (f *fakeSearcher) Search(ctx context.Context, p Params) (*Result, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, p)
	if idx >= len(f.responses) {
		return &Result{Recipes: []common.RecipeSummary{}}, nil
	}
	r := f.responses[idx]
	return r.result, r.err
}

func emptyResult() fakeResponse {
	return fakeResponse{result: &Result{Recipes: []common.RecipeSummary{}}}
}

func resultOf(n int) fakeResponse {
	recipes := make([]common.RecipeSummary, n)
	for i := range recipes {
		recipes[i] = common.RecipeSummary{ID: i + 1, Title: "recipe"}
	}
	return fakeResponse{result: &Result{Recipes: recipes, Total: n}}
}

func TestResolveFirstStrategyHit(t *testing.T) {
	searcher := &fakeSearcher{responses: []fakeResponse{resultOf(3)}}
	resolver := NewResolver(searcher)

	res, err := resolver.Resolve(context.Background(), Params{Query: "pasta", Number: 12})

	require.NoError(t, err)
	assert.Equal(t, StrategyFull, res.StrategyUsed)
	assert.Equal(t, 1, res.Attempts)
	assert.Len(t, res.Recipes, 3)
	assert.Len(t, searcher.calls, 1)
}

func TestResolveRelaxesUntilHit(t *testing.T) {
	// 泰式蔬食麵：前兩層全空，拿掉菜系後才有結果
	searcher := &fakeSearcher{responses: []fakeResponse{
		emptyResult(),
		emptyResult(),
		resultOf(5),
	}}
	resolver := NewResolver(searcher)

	params := BuildParams(&common.Intent{
		Query:   "spicy noodles",
		Cuisine: common.CuisinePreference{Requested: "Thai"},
		Filters: common.TieredFilters{
			Allergies: []string{"peanut"},
			Diets:     []string{"vegetarian"},
		},
	}, MapOptions{})

	res, err := resolver.Resolve(context.Background(), params)

	require.NoError(t, err)
	assert.Equal(t, StrategyNoCuisine, res.StrategyUsed)
	assert.Equal(t, 3, res.Attempts)
	assert.Len(t, res.Recipes, 5)

	// 失敗的前兩層也必須帶著安全層與飲食法
	for _, call := range searcher.calls[:2] {
		assert.Equal(t, []string{"peanut"}, call.Intolerances)
		assert.Equal(t, []string{"vegetarian"}, call.Diets)
	}
	// 第三層丟掉菜系，其他不動
	assert.Empty(t, searcher.calls[2].Cuisine)
	assert.Equal(t, []string{"peanut"}, searcher.calls[2].Intolerances)
}

func TestResolveSafetyNeverDropped(t *testing.T) {
	// 全部八層都空，檢查每一次呼叫的安全層
	searcher := &fakeSearcher{}
	resolver := NewResolver(searcher)

	params := BuildParams(&common.Intent{
		Query: "breakfast",
		Filters: common.TieredFilters{
			Allergies:    []string{"shellfish"},
			Intolerances: []string{"gluten"},
		},
	}, MapOptions{})

	res, err := resolver.Resolve(context.Background(), params)

	require.NoError(t, err)
	assert.Empty(t, res.Recipes)
	assert.Len(t, searcher.calls, 8)

	// 八層當中沒有任何一層可以丟掉安全層
	for i, call := range searcher.calls {
		assert.Equal(t, []string{"gluten", "shellfish"}, call.Intolerances,
			"strategy %d dropped safety filters", i+1)
	}
}

func TestResolveSafetyInvariantRandomized(t *testing.T) {
	// 隨機意圖灌進全空的階梯，任何一層都不可丟掉安全層
	rng := rand.New(rand.NewSource(20260824))

	ingredients := []string{"chicken breast", "jasmine rice", "tofu", "salmon fillet", "broccoli"}
	cuisines := []string{"", "Thai", "Italian", "Japanese"}
	allergens := []string{"peanut", "dairy", "shellfish", "gluten", "egg"}
	diets := []string{"vegan", "vegetarian", "keto", "pescatarian"}

	for i := 0; i < 50; i++ {
		it := &common.Intent{
			Query:   "dinner idea",
			Cuisine: common.CuisinePreference{Requested: cuisines[rng.Intn(len(cuisines))]},
		}
		for j := 0; j < rng.Intn(3); j++ {
			it.PrimaryIngredients = append(it.PrimaryIngredients, ingredients[rng.Intn(len(ingredients))])
		}
		for j := 0; j < 1+rng.Intn(3); j++ {
			it.Filters.Allergies = append(it.Filters.Allergies, allergens[rng.Intn(len(allergens))])
		}
		if rng.Intn(2) == 0 {
			it.Filters.Diets = append(it.Filters.Diets, diets[rng.Intn(len(diets))])
		}
		if rng.Intn(2) == 0 {
			it.TimeHint = "quick"
		}

		params := BuildParams(it, MapOptions{})
		require.True(t, params.HasSafetyFilters())

		searcher := &fakeSearcher{}
		_, err := NewResolver(searcher).Resolve(context.Background(), params)
		require.NoError(t, err)

		for rung, call := range searcher.calls {
			assert.Equal(t, params.Intolerances, call.Intolerances,
				"intent %d rung %d dropped safety filters", i, rung+1)
		}
	}
}

func TestResolveLadderMonotonicOmission(t *testing.T) {
	// 每一層相對前一層只做省略：非空欄位集合必須是前一層的子集
	searcher := &fakeSearcher{}
	resolver := NewResolver(searcher)

	params := BuildParams(&common.Intent{
		Query:                 "thai green curry chicken",
		PrimaryIngredients:    []string{"chicken breast"},
		Cuisine:               common.CuisinePreference{Requested: "Thai"},
		MealType:              "dinner",
		MaxCookingTimeMinutes: intPtr(40),
		Nutrition:             &common.NutritionTargets{MaxCalories: intPtr(600)},
		Filters: common.TieredFilters{
			Allergies:          []string{"peanut"},
			Diets:              []string{"keto"},
			ExcludeIngredients: []string{"cilantro"},
		},
	}, MapOptions{})

	_, err := resolver.Resolve(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, searcher.calls, 8)

	for i := 1; i < len(searcher.calls); i++ {
		prev, cur := searcher.calls[i-1], searcher.calls[i]
		assert.Subset(t, prev.Intolerances, cur.Intolerances)
		assert.Subset(t, prev.Diets, cur.Diets)
		assert.Subset(t, prev.IncludeIngredients, cur.IncludeIngredients)
		assert.Subset(t, prev.ExcludeIngredients, cur.ExcludeIngredients)
		if prev.Cuisine == "" {
			assert.Empty(t, cur.Cuisine)
		}
		if prev.MaxReadyTime == nil {
			assert.Nil(t, cur.MaxReadyTime)
		}
		if prev.MaxCalories == nil {
			assert.Nil(t, cur.MaxCalories)
		}
	}

	// 最後一層只剩安全層
	last := searcher.calls[7]
	assert.Equal(t, []string{"peanut"}, last.Intolerances)
	assert.Empty(t, last.Diets)
	assert.Empty(t, last.ExcludeIngredients)
	assert.Empty(t, last.Query)
	assert.Empty(t, last.Cuisine)
}

func TestResolveAllCallsFailed(t *testing.T) {
	callErr := errors.New("connection refused")
	responses := make([]fakeResponse, 8)
	for i := range responses {
		responses[i] = fakeResponse{err: callErr}
	}
	searcher := &fakeSearcher{responses: responses}
	resolver := NewResolver(searcher)

	_, err := resolver.Resolve(context.Background(), Params{Query: "pasta", Number: 12})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCatalogUnavailable)
	assert.Len(t, searcher.calls, 8)
}

func TestResolveMixedFailureAndEmpty(t *testing.T) {
	// 部分層失敗、部分層成功但空：不是目錄不可用，回空結果
	searcher := &fakeSearcher{responses: []fakeResponse{
		{err: errors.New("timeout")},
		emptyResult(),
	}}
	resolver := NewResolver(searcher)

	res, err := resolver.Resolve(context.Background(), Params{Query: "pasta", Number: 12})

	require.NoError(t, err)
	assert.Empty(t, res.Recipes)
	assert.Equal(t, StrategyFallback, res.StrategyUsed)
}

func TestResolveContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	searcher := &fakeSearcher{responses: []fakeResponse{
		{err: context.Canceled},
	}}
	resolver := NewResolver(searcher)

	cancel()
	_, err := resolver.Resolve(ctx, Params{Query: "pasta"})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	// 取消後不再嘗試後續層
	assert.Len(t, searcher.calls, 1)
}

func TestLadderFallbackKeepsSafety(t *testing.T) {
	ladder := Ladder()
	require.Len(t, ladder, 8)
	assert.Equal(t, StrategyFallback, ladder[7].Name)

	p := ladder[7].Apply(Params{
		Query:        "anything",
		Cuisine:      "thai",
		Diets:        []string{"vegan"},
		Intolerances: []string{"peanut"},
		Number:       12,
	})

	// 最後手段也不放手安全層
	assert.Equal(t, []string{"peanut"}, p.Intolerances)
	assert.Empty(t, p.Query)
	assert.Empty(t, p.Cuisine)
	assert.Empty(t, p.Diets)
	assert.Equal(t, SortRandom, p.Sort)
}
