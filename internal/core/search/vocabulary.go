package search

import "strings"

// 靜態詞彙表：把使用者口語轉成目錄 API 的受控詞彙。
// 查不到的詞一律原樣通過，不做猜測。

// ingredientSimplifications 料理名稱收斂成基底食材，擴大目錄召回
var ingredientSimplifications = map[string]string{
	"fried rice":      "rice",
	"sticky rice":     "rice",
	"jasmine rice":    "rice",
	"risotto":         "rice",
	"ramen noodles":   "noodles",
	"rice noodles":    "noodles",
	"udon":            "noodles",
	"soba":            "noodles",
	"spaghetti":       "pasta",
	"penne":           "pasta",
	"fettuccine":      "pasta",
	"chicken breast":  "chicken",
	"chicken thigh":   "chicken",
	"chicken wings":   "chicken",
	"ground beef":     "beef",
	"beef steak":      "beef",
	"pork belly":      "pork",
	"pork chop":       "pork",
	"salmon fillet":   "salmon",
	"shrimp tempura":  "shrimp",
	"firm tofu":       "tofu",
	"silken tofu":     "tofu",
	"mashed potatoes": "potato",
	"sweet potato":    "potato",
}

// dietNormalizations 飲食法口語對應目錄受控詞彙
var dietNormalizations = map[string]string{
	"keto":        "ketogenic",
	"low carb":    "ketogenic",
	"veggie":      "vegetarian",
	"plant based": "vegan",
	"plant-based": "vegan",
	"pesco":       "pescetarian",
	"pescatarian": "pescetarian",
	"gluten free": "gluten free",
	"gluten-free": "gluten free",
	"whole 30":    "whole30",
	"primal diet": "primal",
}

// allergyNormalizations 過敏原／不耐口語對應目錄受控詞彙
var allergyNormalizations = map[string]string{
	"lactose":    "dairy",
	"milk":       "dairy",
	"peanuts":    "peanut",
	"tree nuts":  "tree nut",
	"nuts":       "tree nut",
	"shellfish":  "shellfish",
	"prawns":     "shellfish",
	"shrimps":    "shellfish",
	"eggs":       "egg",
	"glutenfree": "gluten",
	"wheat":      "wheat",
	"soya":       "soy",
	"sesame oil": "sesame",
}

// SimplifyIngredient 套用食材簡化表；查不到原樣回傳
func SimplifyIngredient(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if simplified, ok := ingredientSimplifications[key]; ok {
		return simplified
	}
	return key
}

// NormalizeDiet 套用飲食法正規化表
func NormalizeDiet(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if normalized, ok := dietNormalizations[key]; ok {
		return normalized
	}
	return key
}

// NormalizeAllergy 套用過敏原正規化表
func NormalizeAllergy(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if normalized, ok := allergyNormalizations[key]; ok {
		return normalized
	}
	return key
}
