package common

import (
	"strings"
)

// CuisinePreference 菜系偏好
type CuisinePreference struct {
	Requested    string   `json:"requested"`    // 使用者明確要求的菜系
	Alternatives []string `json:"alternatives"` // 可接受的替代菜系
}

// NutritionTargets 營養目標，只有使用者給出明確數字時才會出現
type NutritionTargets struct {
	MaxCalories *int `json:"max_calories,omitempty"`
	MinProtein  *int `json:"min_protein,omitempty"`
	MaxCarbs    *int `json:"max_carbs,omitempty"`
}

// TieredFilters 分層過濾條件，優先級由高到低
type TieredFilters struct {
	// 安全層（critical）：任何放寬都不可丟棄
	Allergies    []string `json:"allergies"`
	Intolerances []string `json:"intolerances"`

	// 高優先層
	Diets              []string `json:"diets"`
	ExcludeIngredients []string `json:"exclude_ingredients"`

	// 中優先層
	PreferredCuisines []string `json:"preferred_cuisines"`
	Goals             []string `json:"goals"`

	// 低優先層
	SkillLevel  string `json:"skill_level"`
	ServingSize string `json:"serving_size"`
}

// Intent 上游分析產出的結構化需求描述；本子系統的不可變輸入
type Intent struct {
	Query                 string            `json:"query"`
	PrimaryIngredients    []string          `json:"primary_ingredients"`
	SupportingIngredients []string          `json:"supporting_ingredients"`
	Cuisine               CuisinePreference `json:"cuisine"`
	MealType              string            `json:"meal_type"`
	MaxCookingTimeMinutes *int              `json:"max_cooking_time_minutes,omitempty"`
	TimeHint              string            `json:"time_hint,omitempty"` // quick / moderate / elaborate 等模糊字詞
	Nutrition             *NutritionTargets `json:"nutrition,omitempty"`
	Filters               TieredFilters     `json:"filters"`
}

// HasSafetyFilters 安全層是否有內容
func (i *Intent) HasSafetyFilters() bool {
	return len(i.Filters.Allergies) > 0 || len(i.Filters.Intolerances) > 0
}

// FallbackIntent 低信心回退 Intent：分析結果無法解析時使用
func FallbackIntent() *Intent {
	return &Intent{
		Query: "popular recipes",
	}
}

// RecipeSummary 目錄搜尋回傳的摘要項目
type RecipeSummary struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Image          string `json:"image,omitempty"`
	ReadyInMinutes int    `json:"ready_in_minutes,omitempty"`
	Servings       int    `json:"servings,omitempty"`
}

// RecipeDetail 完整食譜內容，由詳情端點使用
type RecipeDetail struct {
	ID             int                `json:"id"`
	Title          string             `json:"title"`
	Image          string             `json:"image,omitempty"`
	Summary        string             `json:"summary,omitempty"`
	ReadyInMinutes int                `json:"ready_in_minutes"`
	Servings       int                `json:"servings"`
	Cuisines       []string           `json:"cuisines,omitempty"`
	Diets          []string           `json:"diets,omitempty"`
	Ingredients    []DetailIngredient `json:"ingredients"`
	Steps          []DetailStep       `json:"steps"`
	Nutrition      []Nutrient         `json:"nutrition,omitempty"`
}

// DetailIngredient 詳情中的食材
type DetailIngredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// DetailStep 詳情中的步驟
type DetailStep struct {
	Number      int    `json:"number"`
	Instruction string `json:"instruction"`
}

// Nutrient 單一營養素
type Nutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// NormalizeList 清洗字串清單：去空白、轉小寫、去重；排序交由呼叫端
func NormalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
