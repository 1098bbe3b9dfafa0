package intent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"recipe-discovery/internal/pkg/common"
)

// ---------------- 寬鬆版中繼結構：逐欄位吸收模型輸出的型別雜訊 ----------------

type looseIntent struct {
	Query                 any             `json:"query"`
	PrimaryIngredients    any             `json:"primary_ingredients"`
	SupportingIngredients any             `json:"supporting_ingredients"`
	Cuisine               looseCuisine    `json:"cuisine"`
	MealType              any             `json:"meal_type"`
	MaxCookingTimeMinutes any             `json:"max_cooking_time_minutes"`
	TimeHint              any             `json:"time_hint"`
	Nutrition             *looseNutrition `json:"nutrition"`
	Allergies             any             `json:"allergies"`
	Intolerances          any             `json:"intolerances"`
	Diets                 any             `json:"diets"`
	ExcludeIngredients    any             `json:"exclude_ingredients"`
	PreferredCuisines     any             `json:"preferred_cuisines"`
	Goals                 any             `json:"goals"`
	SkillLevel            any             `json:"skill_level"`
	ServingSize           any             `json:"serving_size"`
}

type looseCuisine struct {
	Requested    any `json:"requested"`
	Alternatives any `json:"alternatives"`
}

type looseNutrition struct {
	MaxCalories any `json:"max_calories"`
	MinProtein  any `json:"min_protein"`
	MaxCarbs    any `json:"max_carbs"`
}

// parseIntent 解析模型輸出成強型別 Intent。
// 單一欄位壞掉只丟棄該欄位補預設值，不讓整次解析失敗。
func parseIntent(content string) (*common.Intent, error) {
	text := common.ExtractJSONObject(content)
	text = common.QuoteJSONKeys(text)

	var loose looseIntent
	if err := common.ParseJSON(text, &loose); err != nil {
		return nil, fmt.Errorf("failed to parse intent JSON: %w", err)
	}

	it := &common.Intent{
		Query:                 asString(loose.Query),
		PrimaryIngredients:    asStringList(loose.PrimaryIngredients),
		SupportingIngredients: asStringList(loose.SupportingIngredients),
		Cuisine: common.CuisinePreference{
			Requested:    asString(loose.Cuisine.Requested),
			Alternatives: asStringList(loose.Cuisine.Alternatives),
		},
		MealType:              asString(loose.MealType),
		MaxCookingTimeMinutes: asIntPtr(loose.MaxCookingTimeMinutes),
		TimeHint:              asString(loose.TimeHint),
		Filters: common.TieredFilters{
			Allergies:          asStringList(loose.Allergies),
			Intolerances:       asStringList(loose.Intolerances),
			Diets:              asStringList(loose.Diets),
			ExcludeIngredients: asStringList(loose.ExcludeIngredients),
			PreferredCuisines:  asStringList(loose.PreferredCuisines),
			Goals:              asStringList(loose.Goals),
			SkillLevel:         asString(loose.SkillLevel),
			ServingSize:        asString(loose.ServingSize),
		},
	}

	if loose.Nutrition != nil {
		targets := common.NutritionTargets{
			MaxCalories: asIntPtr(loose.Nutrition.MaxCalories),
			MinProtein:  asIntPtr(loose.Nutrition.MinProtein),
			MaxCarbs:    asIntPtr(loose.Nutrition.MaxCarbs),
		}
		if targets.MaxCalories != nil || targets.MinProtein != nil || targets.MaxCarbs != nil {
			it.Nutrition = &targets
		}
	}

	return it, nil
}

// asString 把任意值強制成字串；null 與數字以外的型別回空字串
func asString(v any) string {
	switch s := v.(type) {
	case string:
		if strings.EqualFold(s, "null") {
			return ""
		}
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	default:
		return ""
	}
}

// asStringList 把任意值強制成字串清單；單一字串視為一筆
func asStringList(v any) []string {
	switch list := v.(type) {
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := asString(list); s != "" {
			return []string{s}
		}
		return nil
	default:
		return nil
	}
}

// asIntPtr 把任意值強制成整數指標；換算不了就省略該欄位
func asIntPtr(v any) *int {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil && i > 0 {
			val := int(i)
			return &val
		}
		if f, err := n.Float64(); err == nil && f > 0 {
			val := int(f)
			return &val
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil && i > 0 {
			return &i
		}
	}
	return nil
}
