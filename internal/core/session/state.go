package session

import (
	"recipe-discovery/internal/pkg/common"
)

// State 一個結果畫面生命週期內的重生狀態。
// 以顯式值在每次呼叫間傳遞，不藏在模組層級，
// 不同工作階段的去重集合互不污染。
type State struct {
	ShownIDs        map[int]bool   `json:"shown_ids"`         // 已顯示的結果識別碼；同一階段內只增不減
	Count           int            `json:"count"`             // 重生次數；只在明確 regenerate 時遞增
	LastFingerprint string         `json:"last_fingerprint"`  // 上次意圖的指紋
	Intent          *common.Intent `json:"intent"`            // 上次分析出的意圖，重生時重用
	SourceText      string         `json:"source_text"`       // 原始查詢文字，週期性重分析時使用
}

// NewState 以分析出的意圖建立新狀態
func NewState(intent *common.Intent, sourceText string) *State {
	return &State{
		ShownIDs:   make(map[int]bool),
		Intent:     intent,
		SourceText: sourceText,
	}
}

// MarkShown 把新回傳的結果識別碼併入已顯示集合
func (s *State) MarkShown(results []common.RecipeSummary) {
	if s.ShownIDs == nil {
		s.ShownIDs = make(map[int]bool)
	}
	for _, r := range results {
		s.ShownIDs[r.ID] = true
	}
}
