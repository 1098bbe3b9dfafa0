package search

import (
	"fmt"
	"sort"
	"strings"
)

// 排序方式，對應目錄 API 的 sort 受控詞彙
const (
	SortPopularity  = "popularity"
	SortHealthiness = "healthiness"
	SortTime        = "time"
	SortMetaScore   = "meta-score"
	SortRandom      = "random"
)

// Params 目錄查詢參數。
// 由 Intent 經 BuildParams 產出後即為 canonical 形式：
// 清單欄位已小寫、去重、排序，等價的 Intent 必定產生相同的快取鍵。
type Params struct {
	Query              string
	IncludeIngredients []string
	ExcludeIngredients []string
	Cuisine            string
	Diets              []string
	Intolerances       []string // 安全層：allergies + intolerances 正規化後合併
	MealType           string
	MaxReadyTime       *int
	MaxCalories        *int
	MinProtein         *int
	MaxCarbs           *int
	Sort               string
	Offset             int
	Number             int
}

// HasSafetyFilters 安全層是否有內容
func (p Params) HasSafetyFilters() bool {
	return len(p.Intolerances) > 0
}

// CacheKey 欄位順序固定的 canonical 序列化；
// 兩個邏輯等價的查詢不論建構路徑為何都會得到同一把鍵
func (p Params) CacheKey() string {
	parts := []string{
		"q=" + strings.ToLower(strings.TrimSpace(p.Query)),
		"inc=" + joinSorted(p.IncludeIngredients),
		"exc=" + joinSorted(p.ExcludeIngredients),
		"cuisine=" + strings.ToLower(p.Cuisine),
		"diet=" + joinSorted(p.Diets),
		"intol=" + joinSorted(p.Intolerances),
		"type=" + strings.ToLower(p.MealType),
		"time=" + intPtrKey(p.MaxReadyTime),
		"kcal=" + intPtrKey(p.MaxCalories),
		"prot=" + intPtrKey(p.MinProtein),
		"carb=" + intPtrKey(p.MaxCarbs),
		"sort=" + p.Sort,
		fmt.Sprintf("off=%d", p.Offset),
		fmt.Sprintf("n=%d", p.Number),
	}
	return strings.Join(parts, "|")
}

func joinSorted(values []string) string {
	if len(values) == 0 {
		return ""
	}
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func intPtrKey(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}
