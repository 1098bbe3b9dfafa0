package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-discovery/internal/core/image"
	"recipe-discovery/internal/pkg/common"

	"go.uber.org/zap"
)

// AIClient 意圖分析使用的模型黑盒
type AIClient interface {
	GenerateResponse(ctx context.Context, prompt string, imageData string) (string, error)
}

// Preferences 帳號層級的偏好，分析時併入對應的過濾層
type Preferences struct {
	Allergies          []string `json:"allergies"`
	Intolerances       []string `json:"intolerances"`
	Diets              []string `json:"diets"`
	ExcludeIngredients []string `json:"exclude_ingredients"`
	PreferredCuisines  []string `json:"preferred_cuisines"`
	Goals              []string `json:"goals"`
	SkillLevel         string   `json:"skill_level"`
	ServingSize        string   `json:"serving_size"`
}

// Analyzer 把自由文字（可附圖）變成分層 Intent
type Analyzer struct {
	ai       AIClient
	imageSvc *image.Service
}

// NewAnalyzer 創建意圖分析器
func NewAnalyzer(ai AIClient, imageSvc *image.Service) *Analyzer {
	return &Analyzer{
		ai:       ai,
		imageSvc: imageSvc,
	}
}

// Analyze 呼叫模型抽取意圖。
// 模型輸出視為不可信任的外部資料：以寬鬆中繼結構解析、逐欄位補安全預設值；
// 完全解析不了就回退到低信心 Intent——降級搜尋永遠好過沒有搜尋。
// 帳號偏好無論解析成敗都會併入，安全層不因解析失敗而流失。
func (a *Analyzer) Analyze(ctx context.Context, text string, imageData string, prefs *Preferences) (*common.Intent, error) {
	var processedImage string
	if imageData != "" && a.imageSvc != nil {
		var err error
		processedImage, err = a.imageSvc.Prepare(imageData)
		if err != nil {
			common.LogWarn("圖片前處理失敗，改用純文字分析", zap.Error(err))
			processedImage = ""
		}
	}

	prompt := buildAnalysisPrompt(text)

	start := time.Now()
	content, err := a.ai.GenerateResponse(ctx, prompt, processedImage)
	common.LogAICall(prompt, time.Since(start), err, "")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		common.LogWarn("意圖分析呼叫失敗，使用回退意圖", zap.Error(err))
		return mergePreferences(common.FallbackIntent(), prefs), nil
	}

	parsed, err := parseIntent(content)
	if err != nil {
		common.LogWarn("意圖分析內容無法解析，使用回退意圖",
			zap.Error(fmt.Errorf("%w: %v", common.ErrAnalysisParse, err)),
			zap.Int("content_length", len(content)),
		)
		parsed = common.FallbackIntent()
	}

	if strings.TrimSpace(parsed.Query) == "" {
		parsed.Query = strings.TrimSpace(text)
	}

	return mergePreferences(parsed, prefs), nil
}

// buildAnalysisPrompt 組裝意圖抽取 prompt
func buildAnalysisPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("你是食譜搜尋的意圖分析器。請從使用者輸入抽取結構化意圖，只回傳單一 JSON 物件，不要其他文字或程式碼區塊標記。\n")
	sb.WriteString(fmt.Sprintf("使用者輸入：%s\n", text))
	sb.WriteString("JSON 格式：\n")
	sb.WriteString(`{
  "query": "簡短英文搜尋描述",
  "primary_ingredients": [],
  "supporting_ingredients": [],
  "cuisine": {"requested": null, "alternatives": []},
  "meal_type": null,
  "max_cooking_time_minutes": null,
  "time_hint": null,
  "nutrition": {"max_calories": null, "min_protein": null, "max_carbs": null},
  "allergies": [],
  "intolerances": [],
  "diets": [],
  "exclude_ingredients": [],
  "preferred_cuisines": [],
  "goals": [],
  "skill_level": null,
  "serving_size": null
}` + "\n")
	sb.WriteString("規則：\n")
	sb.WriteString("- max_cooking_time_minutes 與 nutrition 只有使用者給出明確數字才填，模糊字詞（quick、moderate、elaborate）放 time_hint，不要自己換算。\n")
	sb.WriteString("- 過敏與不耐是安全資訊，寧可多抓不可漏抓。\n")
	sb.WriteString("- 不確定的欄位一律填 null 或空陣列，不要猜。\n")
	return sb.String()
}

// mergePreferences 把帳號偏好併入意圖的過濾層
func mergePreferences(it *common.Intent, prefs *Preferences) *common.Intent {
	if prefs == nil {
		return it
	}

	it.Filters.Allergies = append(it.Filters.Allergies, prefs.Allergies...)
	it.Filters.Intolerances = append(it.Filters.Intolerances, prefs.Intolerances...)
	it.Filters.Diets = append(it.Filters.Diets, prefs.Diets...)
	it.Filters.ExcludeIngredients = append(it.Filters.ExcludeIngredients, prefs.ExcludeIngredients...)
	it.Filters.PreferredCuisines = append(it.Filters.PreferredCuisines, prefs.PreferredCuisines...)
	it.Filters.Goals = append(it.Filters.Goals, prefs.Goals...)
	if it.Filters.SkillLevel == "" {
		it.Filters.SkillLevel = prefs.SkillLevel
	}
	if it.Filters.ServingSize == "" {
		it.Filters.ServingSize = prefs.ServingSize
	}
	return it
}
