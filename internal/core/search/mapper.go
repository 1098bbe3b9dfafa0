package search

import (
	"sort"
	"strings"

	"recipe-discovery/internal/pkg/common"
)

const (
	// defaultPageSize 每頁結果數
	defaultPageSize = 12

	// maxIncludeIngredients 最多取前幾個主要食材當硬性過濾；
	// 其餘食材只進 query 文字提示，避免把目錄查詢綁死
	maxIncludeIngredients = 2
)

// timeHintCeilings 模糊時間字詞對應的分鐘上限；
// 目錄只吃數字欄位，字詞必須在這裡換算
var timeHintCeilings = map[string]int{
	"quick":     30,
	"fast":      30,
	"moderate":  60,
	"elaborate": 120,
	"slow":      120,
}

// MapOptions 建構查詢時的附加選項
type MapOptions struct {
	Offset      int
	PageSize    int
	ForceRandom bool
}

// BuildParams 把分層 Intent 轉成 canonical 目錄查詢參數。
// 純函數：輸出只取決於 intent、opts 與靜態詞彙表。
func BuildParams(intent *common.Intent, opts MapOptions) Params {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	p := Params{
		Offset: opts.Offset,
		Number: pageSize,
	}

	// 主要食材過簡化表；前 2 個進硬性過濾，其餘與輔助食材留作文字提示
	var queryHints []string
	for i, ing := range common.NormalizeList(intent.PrimaryIngredients) {
		simplified := SimplifyIngredient(ing)
		if i < maxIncludeIngredients {
			p.IncludeIngredients = append(p.IncludeIngredients, simplified)
		} else {
			queryHints = append(queryHints, simplified)
		}
	}
	queryHints = append(queryHints, common.NormalizeList(intent.SupportingIngredients)...)

	query := strings.ToLower(strings.TrimSpace(intent.Query))
	if len(queryHints) > 0 {
		if query != "" {
			query += " "
		}
		query += strings.Join(queryHints, " ")
	}
	p.Query = query

	// 高優先層：飲食法與排除食材
	for _, d := range common.NormalizeList(intent.Filters.Diets) {
		p.Diets = append(p.Diets, NormalizeDiet(d))
	}
	p.ExcludeIngredients = common.NormalizeList(intent.Filters.ExcludeIngredients)

	// 安全層：allergies 與 intolerances 正規化後合併進 intolerances 過濾
	safety := make([]string, 0, len(intent.Filters.Allergies)+len(intent.Filters.Intolerances))
	for _, a := range common.NormalizeList(intent.Filters.Allergies) {
		safety = append(safety, NormalizeAllergy(a))
	}
	for _, a := range common.NormalizeList(intent.Filters.Intolerances) {
		safety = append(safety, NormalizeAllergy(a))
	}
	p.Intolerances = dedupSorted(safety)
	p.Diets = dedupSorted(p.Diets)

	// 菜系：明確要求優先，否則取第一個偏好菜系
	if c := strings.ToLower(strings.TrimSpace(intent.Cuisine.Requested)); c != "" {
		p.Cuisine = c
	} else if preferred := common.NormalizeList(intent.Filters.PreferredCuisines); len(preferred) > 0 {
		p.Cuisine = preferred[0]
	}

	p.MealType = strings.ToLower(strings.TrimSpace(intent.MealType))

	// 時間上限：明確數字直接用；模糊字詞查換算表；換算不了就整個省略
	if intent.MaxCookingTimeMinutes != nil && *intent.MaxCookingTimeMinutes > 0 {
		p.MaxReadyTime = intPtr(*intent.MaxCookingTimeMinutes)
	} else if hint := strings.ToLower(strings.TrimSpace(intent.TimeHint)); hint != "" {
		if ceiling, ok := timeHintCeilings[hint]; ok {
			p.MaxReadyTime = intPtr(ceiling)
		}
	}

	// 營養目標：只有使用者給了明確數字才會出現
	if intent.Nutrition != nil {
		p.MaxCalories = copyIntPtr(intent.Nutrition.MaxCalories)
		p.MinProtein = copyIntPtr(intent.Nutrition.MinProtein)
		p.MaxCarbs = copyIntPtr(intent.Nutrition.MaxCarbs)
	}

	p.Sort = chooseSort(intent, p, opts.ForceRandom)

	return p
}

// chooseSort 排序優先序：隨機要求 > 健康目標 > 快速目標 > 明確菜系 > 人氣
func chooseSort(intent *common.Intent, p Params, forceRandom bool) string {
	if forceRandom {
		return SortRandom
	}

	goals := common.NormalizeList(intent.Filters.Goals)
	for _, g := range goals {
		if g == "weight loss" || g == "balanced diet" {
			return SortHealthiness
		}
	}
	for _, g := range goals {
		if g == "quick meals" {
			return SortTime
		}
	}
	if strings.ToLower(strings.TrimSpace(intent.TimeHint)) == "quick" {
		return SortTime
	}
	if strings.TrimSpace(intent.Cuisine.Requested) != "" {
		return SortMetaScore
	}
	return SortPopularity
}

func dedupSorted(values []string) []string {
	out := common.NormalizeList(values)
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func intPtr(v int) *int {
	return &v
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
