package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAI struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeAI) GenerateResponse(ctx context.Context, prompt string, imageData string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func TestAnalyzeParsesResponse(t *testing.T) {
	ai := &fakeAI{response: `{"query": "thai curry", "allergies": ["peanut"]}`}
	analyzer := NewAnalyzer(ai, nil)

	it, err := analyzer.Analyze(context.Background(), "I want thai curry", "", nil)

	require.NoError(t, err)
	assert.Equal(t, "thai curry", it.Query)
	assert.Equal(t, []string{"peanut"}, it.Filters.Allergies)
	require.Len(t, ai.prompts, 1)
	assert.Contains(t, ai.prompts[0], "I want thai curry")
}

func TestAnalyzeFallsBackOnCallFailure(t *testing.T) {
	ai := &fakeAI{err: errors.New("upstream down")}
	analyzer := NewAnalyzer(ai, nil)

	it, err := analyzer.Analyze(context.Background(), "something tasty", "", nil)

	// 分析失敗不是致命錯誤：回退意圖讓搜尋照走
	require.NoError(t, err)
	assert.NotEmpty(t, it.Query)
}

func TestAnalyzeFallsBackOnGarbageResponse(t *testing.T) {
	ai := &fakeAI{response: "sorry, no JSON for you"}
	analyzer := NewAnalyzer(ai, nil)

	it, err := analyzer.Analyze(context.Background(), "noodle soup", "", nil)

	require.NoError(t, err)
	assert.Equal(t, "popular recipes", it.Query)
}

func TestAnalyzePreservesPreferencesOnFailure(t *testing.T) {
	// 安全偏好不因解析失敗而流失
	ai := &fakeAI{response: "not parsable at all"}
	analyzer := NewAnalyzer(ai, nil)

	prefs := &Preferences{
		Allergies: []string{"shellfish"},
		Diets:     []string{"vegetarian"},
	}

	it, err := analyzer.Analyze(context.Background(), "dinner ideas", "", prefs)

	require.NoError(t, err)
	assert.Equal(t, []string{"shellfish"}, it.Filters.Allergies)
	assert.Equal(t, []string{"vegetarian"}, it.Filters.Diets)
}

func TestAnalyzeContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ai := &fakeAI{err: context.Canceled}
	analyzer := NewAnalyzer(ai, nil)

	_, err := analyzer.Analyze(ctx, "anything", "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMergePreferences(t *testing.T) {
	ai := &fakeAI{response: `{"query": "curry", "allergies": ["peanut"], "skill_level": "advanced"}`}
	analyzer := NewAnalyzer(ai, nil)

	prefs := &Preferences{
		Allergies:  []string{"dairy"},
		SkillLevel: "beginner",
	}

	it, err := analyzer.Analyze(context.Background(), "curry", "", prefs)

	require.NoError(t, err)
	// 請求內的過敏與帳號偏好合併
	assert.ElementsMatch(t, []string{"peanut", "dairy"}, it.Filters.Allergies)
	// 請求內已有的欄位不被偏好覆蓋
	assert.Equal(t, "advanced", it.Filters.SkillLevel)
}
