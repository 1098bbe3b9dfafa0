package intent

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"recipe-discovery/internal/pkg/common"
)

// Fingerprint 意圖的 canonical 指紋：清單欄位排序後取 JSON 的 SHA-256。
// 等價意圖（同邏輯值、不同欄位插入順序）必得相同指紋。
func Fingerprint(it *common.Intent) string {
	if it == nil {
		return ""
	}

	canonical := *it
	canonical.PrimaryIngredients = sortedCopy(it.PrimaryIngredients)
	canonical.SupportingIngredients = sortedCopy(it.SupportingIngredients)
	canonical.Cuisine.Alternatives = sortedCopy(it.Cuisine.Alternatives)
	canonical.Filters.Allergies = sortedCopy(it.Filters.Allergies)
	canonical.Filters.Intolerances = sortedCopy(it.Filters.Intolerances)
	canonical.Filters.Diets = sortedCopy(it.Filters.Diets)
	canonical.Filters.ExcludeIngredients = sortedCopy(it.Filters.ExcludeIngredients)
	canonical.Filters.PreferredCuisines = sortedCopy(it.Filters.PreferredCuisines)
	canonical.Filters.Goals = sortedCopy(it.Filters.Goals)

	data, err := json.Marshal(canonical)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func sortedCopy(values []string) []string {
	out := common.NormalizeList(values)
	sort.Strings(out)
	return out
}
