package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"recipe-discovery/internal/core/search"
	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client 食譜目錄 API 客戶端
type Client struct {
	client *resty.Client
	config *config.CatalogConfig
}

// NewClient 創建目錄客戶端
func NewClient(cfg *config.CatalogConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetQueryParam("apiKey", cfg.APIKey)

	return &Client{
		client: client,
		config: cfg,
	}
}

// searchResponse 目錄搜尋回應
type searchResponse struct {
	Results []struct {
		ID             int    `json:"id"`
		Title          string `json:"title"`
		Image          string `json:"image"`
		ReadyInMinutes int    `json:"readyInMinutes"`
		Servings       int    `json:"servings"`
	} `json:"results"`
	Offset       int `json:"offset"`
	Number       int `json:"number"`
	TotalResults int `json:"totalResults"`
}

// Search 以扁平參數表查詢目錄。
// 零筆符合回傳空清單不是錯誤；非 2xx 與網路失敗才是。
func (c *Client) Search(ctx context.Context, p search.Params) (*search.Result, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(buildQuery(p)).
		Get("/recipes/complexSearch")

	if err != nil {
		return nil, fmt.Errorf("failed to call catalog search: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("目錄搜尋回傳錯誤狀態",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("response", resp.String()),
		)
		return nil, fmt.Errorf("catalog search returned status %d", resp.StatusCode())
	}

	var parsed searchResponse
	if err := common.ParseJSONBytes(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog response: %w", err)
	}

	result := &search.Result{
		Recipes: make([]common.RecipeSummary, 0, len(parsed.Results)),
		Total:   parsed.TotalResults,
	}
	for _, r := range parsed.Results {
		result.Recipes = append(result.Recipes, common.RecipeSummary{
			ID:             r.ID,
			Title:          r.Title,
			Image:          r.Image,
			ReadyInMinutes: r.ReadyInMinutes,
			Servings:       r.Servings,
		})
	}
	return result, nil
}

// buildQuery 把 canonical Params 轉成目錄的扁平查詢參數
func buildQuery(p search.Params) map[string]string {
	q := map[string]string{
		"offset": strconv.Itoa(p.Offset),
		"number": strconv.Itoa(p.Number),
	}
	if p.Query != "" {
		q["query"] = p.Query
	}
	if len(p.IncludeIngredients) > 0 {
		q["includeIngredients"] = strings.Join(p.IncludeIngredients, ",")
	}
	if len(p.ExcludeIngredients) > 0 {
		q["excludeIngredients"] = strings.Join(p.ExcludeIngredients, ",")
	}
	if p.Cuisine != "" {
		q["cuisine"] = p.Cuisine
	}
	if len(p.Diets) > 0 {
		q["diet"] = strings.Join(p.Diets, ",")
	}
	if len(p.Intolerances) > 0 {
		q["intolerances"] = strings.Join(p.Intolerances, ",")
	}
	if p.MealType != "" {
		q["type"] = p.MealType
	}
	if p.MaxReadyTime != nil {
		q["maxReadyTime"] = strconv.Itoa(*p.MaxReadyTime)
	}
	if p.MaxCalories != nil {
		q["maxCalories"] = strconv.Itoa(*p.MaxCalories)
	}
	if p.MinProtein != nil {
		q["minProtein"] = strconv.Itoa(*p.MinProtein)
	}
	if p.MaxCarbs != nil {
		q["maxCarbs"] = strconv.Itoa(*p.MaxCarbs)
	}
	if p.Sort != "" {
		q["sort"] = p.Sort
	}
	return q
}

// detailResponse 目錄詳情回應
type detailResponse struct {
	ID                  int      `json:"id"`
	Title               string   `json:"title"`
	Image               string   `json:"image"`
	Summary             string   `json:"summary"`
	ReadyInMinutes      int      `json:"readyInMinutes"`
	Servings            int      `json:"servings"`
	Cuisines            []string `json:"cuisines"`
	Diets               []string `json:"diets"`
	ExtendedIngredients []struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
		Unit   string  `json:"unit"`
	} `json:"extendedIngredients"`
	AnalyzedInstructions []struct {
		Steps []struct {
			Number int    `json:"number"`
			Step   string `json:"step"`
		} `json:"steps"`
	} `json:"analyzedInstructions"`
	Nutrition struct {
		Nutrients []struct {
			Name   string  `json:"name"`
			Amount float64 `json:"amount"`
			Unit   string  `json:"unit"`
		} `json:"nutrients"`
	} `json:"nutrition"`
}

// GetRecipe 取單一食譜的完整內容
func (c *Client) GetRecipe(ctx context.Context, id int) (*common.RecipeDetail, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("includeNutrition", "true").
		Get(fmt.Sprintf("/recipes/%d/information", id))

	if err != nil {
		return nil, fmt.Errorf("failed to call catalog detail: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, common.ErrNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogError("目錄詳情回傳錯誤狀態",
			zap.Int("status_code", resp.StatusCode()),
			zap.Int("recipe_id", id),
		)
		return nil, fmt.Errorf("catalog detail returned status %d", resp.StatusCode())
	}

	var parsed detailResponse
	if err := common.ParseJSONBytes(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog detail: %w", err)
	}

	detail := &common.RecipeDetail{
		ID:             parsed.ID,
		Title:          parsed.Title,
		Image:          parsed.Image,
		Summary:        parsed.Summary,
		ReadyInMinutes: parsed.ReadyInMinutes,
		Servings:       parsed.Servings,
		Cuisines:       parsed.Cuisines,
		Diets:          parsed.Diets,
	}
	for _, ing := range parsed.ExtendedIngredients {
		detail.Ingredients = append(detail.Ingredients, common.DetailIngredient{
			Name:   ing.Name,
			Amount: ing.Amount,
			Unit:   ing.Unit,
		})
	}
	for _, instr := range parsed.AnalyzedInstructions {
		for _, step := range instr.Steps {
			detail.Steps = append(detail.Steps, common.DetailStep{
				Number:      step.Number,
				Instruction: step.Step,
			})
		}
	}
	for _, n := range parsed.Nutrition.Nutrients {
		detail.Nutrition = append(detail.Nutrition, common.Nutrient{
			Name:   n.Name,
			Amount: n.Amount,
			Unit:   n.Unit,
		})
	}
	return detail, nil
}
