package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-discovery/internal/pkg/common"
)

// Searcher 目錄搜尋黑盒；由 catalog.Client 實作，測試用替身替換
type Searcher interface {
	Search(ctx context.Context, p Params) (*Result, error)
}

// Result 單次目錄搜尋回傳
type Result struct {
	Recipes []common.RecipeSummary
	Total   int
}

// Resolution 放寬解析的最終結果
type Resolution struct {
	Recipes      []common.RecipeSummary
	Total        int
	StrategyUsed string
	Attempts     int
}

// Strategy 放寬階梯的一層：具名的參數轉換，只做省略不做回填。
// 安全層（intolerances）在 1~7 層結構上不可能被丟掉；
// 第 8 層也只在安全層本來就是空的時候才會真的無過濾。
type Strategy struct {
	Name  string
	Apply func(Params) Params
}

// 階梯層名
const (
	StrategyFull          = "full"
	StrategyNoNutrition   = "no-nutrition"
	StrategyNoCuisine     = "no-cuisine"
	StrategyNoTime        = "no-time"
	StrategyBroad         = "broad"
	StrategyNoQueryRandom = "no-query-random"
	StrategySafetyOnly    = "safety-only"
	StrategyFallback      = "fallback"
)

// Ladder 回傳固定順序的八層放寬階梯。
// 每層以前一層的輸出為輸入，逐層只做省略，保持可追溯。
func Ladder() []Strategy {
	return []Strategy{
		{Name: StrategyFull, Apply: func(p Params) Params {
			return p
		}},
		{Name: StrategyNoNutrition, Apply: func(p Params) Params {
			// 營養上限最容易把召回歸零，而且與安全無關，最先放掉
			p.MaxCalories = nil
			p.MinProtein = nil
			p.MaxCarbs = nil
			return p
		}},
		{Name: StrategyNoCuisine, Apply: func(p Params) Params {
			p.Cuisine = ""
			return p
		}},
		{Name: StrategyNoTime, Apply: func(p Params) Params {
			p.MaxReadyTime = nil
			return p
		}},
		{Name: StrategyBroad, Apply: func(p Params) Params {
			// 只留安全層 + 高優先層；query 收斂到前兩個詞
			p.IncludeIngredients = nil
			p.MealType = ""
			if words := strings.Fields(p.Query); len(words) > 2 {
				p.Query = strings.Join(words[:2], " ")
			}
			p.Sort = SortPopularity
			return p
		}},
		{Name: StrategyNoQueryRandom, Apply: func(p Params) Params {
			p.Query = ""
			p.Sort = SortRandom
			return p
		}},
		{Name: StrategySafetyOnly, Apply: func(p Params) Params {
			p.Diets = nil
			p.ExcludeIngredients = nil
			p.Sort = SortPopularity
			return p
		}},
		{Name: StrategyFallback, Apply: func(p Params) Params {
			// 無條件的最後手段：除了安全層以外全部放掉。
			// 過敏與不耐永遠不放手——寧可回報目錄不可用，
			// 也不端出可能致敏的結果。
			return Params{
				Intolerances: p.Intolerances,
				Sort:         SortRandom,
				Number:       p.Number,
			}
		}},
	}
}

// Resolver 依序執行放寬階梯，停在第一個有結果的層
type Resolver struct {
	searcher Searcher
}

// NewResolver 創建放寬解析器
func NewResolver(searcher Searcher) *Resolver {
	return &Resolver{searcher: searcher}
}

// Resolve 逐層放寬直到拿到至少一筆結果。
// 單層空結果不是錯誤，是前進訊號；
// 只有每一層的呼叫都失敗（網路或非 2xx）才回報 ErrCatalogUnavailable。
func (r *Resolver) Resolve(ctx context.Context, params Params) (*Resolution, error) {
	var lastErr error
	allFailed := true
	attempts := 0
	p := params

	for _, strategy := range Ladder() {
		p = strategy.Apply(p)
		attempts++

		start := time.Now()
		result, err := r.searcher.Search(ctx, p)
		common.LogCatalogCall(strategy.Name, time.Since(start), resultCount(result), err)

		if err != nil {
			// 呼叫端取消就直接丟棄整次解析
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		allFailed = false
		if len(result.Recipes) > 0 {
			return &Resolution{
				Recipes:      result.Recipes,
				Total:        result.Total,
				StrategyUsed: strategy.Name,
				Attempts:     attempts,
			}, nil
		}
	}

	if allFailed {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, lastErr)
	}

	// 每層都成功但全空：回傳空結果，呼叫端自行決定訊息
	return &Resolution{
		Recipes:      []common.RecipeSummary{},
		StrategyUsed: StrategyFallback,
		Attempts:     attempts,
	}, nil
}

func resultCount(r *Result) int {
	if r == nil {
		return 0
	}
	return len(r.Recipes)
}
