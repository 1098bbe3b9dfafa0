package search

import (
	"strings"

	"recipe-discovery/internal/pkg/common"
)

const (
	// dedupMinRawResults 原始結果要超過這個數量才做去重
	dedupMinRawResults = 10

	// dedupMinRemaining 去重後至少要剩這個數量，否則寧可重複也不要太少
	dedupMinRemaining = 5
)

// Variation 重生（regenerate）時套用的具名參數轉換。
// 與放寬階梯彼此獨立：變化改的是「搜什麼」，放寬改的是「搜多嚴」。
type Variation struct {
	Name  string
	Apply func(p Params, intent *common.Intent) Params
}

// 變化策略名
const (
	VariationSimilar   = "similar"
	VariationRelated   = "related"
	VariationDifferent = "different"
	VariationSurprise  = "surprise"
)

// NextVariation 以重生次數輪替四種變化策略
func NextVariation(count int) Variation {
	rotation := []Variation{
		{Name: VariationSimilar, Apply: applySimilar},
		{Name: VariationRelated, Apply: applyRelated},
		{Name: VariationDifferent, Apply: applyDifferent},
		{Name: VariationSurprise, Apply: applySurprise},
	}
	return rotation[count%len(rotation)]
}

// applySimilar 同參數翻頁：在同一個結果空間往後取
func applySimilar(p Params, _ *common.Intent) Params {
	p.Offset += p.Number
	return p
}

// applyRelated 同菜系同飲食法，放掉食材硬過濾與時間上限
func applyRelated(p Params, _ *common.Intent) Params {
	p.IncludeIngredients = nil
	p.MaxReadyTime = nil
	p.Sort = SortPopularity
	p.Offset = 0
	return p
}

// applyDifferent 換成第一個替代菜系，query 收斂到一個詞
func applyDifferent(p Params, intent *common.Intent) Params {
	if intent != nil && len(intent.Cuisine.Alternatives) > 0 {
		p.Cuisine = strings.ToLower(strings.TrimSpace(intent.Cuisine.Alternatives[0]))
	}
	if words := strings.Fields(p.Query); len(words) > 1 {
		p.Query = words[0]
	}
	p.Sort = SortMetaScore
	p.Offset = 0
	return p
}

// applySurprise 只留安全層與飲食法／排除過濾，其他全放，隨機排序
func applySurprise(p Params, _ *common.Intent) Params {
	return Params{
		Intolerances:       p.Intolerances,
		Diets:              p.Diets,
		ExcludeIngredients: p.ExcludeIngredients,
		Sort:               SortRandom,
		Number:             p.Number,
	}
}

// FilterShown 去掉本次工作階段已經顯示過的結果。
// 原始結果不超過 10 筆、或去重後會剩不到 5 筆時，整批原樣回傳。
func FilterShown(results []common.RecipeSummary, shown map[int]bool) []common.RecipeSummary {
	if len(shown) == 0 || len(results) <= dedupMinRawResults {
		return results
	}

	fresh := make([]common.RecipeSummary, 0, len(results))
	for _, r := range results {
		if !shown[r.ID] {
			fresh = append(fresh, r)
		}
	}

	if len(fresh) < dedupMinRemaining {
		return results
	}
	return fresh
}
