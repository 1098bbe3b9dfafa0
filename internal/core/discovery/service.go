package discovery

import (
	"context"

	"recipe-discovery/internal/core/intent"
	"recipe-discovery/internal/core/search"
	"recipe-discovery/internal/core/session"
	"recipe-discovery/internal/pkg/common"

	"go.uber.org/zap"
)

// reanalyzeEvery 每第幾次重生才重跑意圖分析，控制外部呼叫成本
const reanalyzeEvery = 3

// Service 食譜探索服務：意圖分析 → 參數映射 → 快取 → 放寬解析 → 去重
type Service struct {
	analyzer *intent.Analyzer
	resolver *search.Resolver
	cache    *search.Cache
	sessions session.Store
	pageSize int
}

// NewService 創建探索服務
func NewService(analyzer *intent.Analyzer, resolver *search.Resolver, cache *search.Cache, sessions session.Store, pageSize int) *Service {
	return &Service{
		analyzer: analyzer,
		resolver: resolver,
		cache:    cache,
		sessions: sessions,
		pageSize: pageSize,
	}
}

// SearchRequest 一次初始探索請求
type SearchRequest struct {
	Text        string
	ImageData   string
	Preferences *intent.Preferences
	ForceRandom bool
}

// SearchResult 探索結果
type SearchResult struct {
	SessionID         string
	Recipes           []common.RecipeSummary
	Total             int
	StrategyUsed      string
	Variation         string
	CacheHit          bool
	RegenerationCount int
}

// Discover 執行初始搜尋並開啟新的工作階段
func (s *Service) Discover(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	it, err := s.analyzer.Analyze(ctx, req.Text, req.ImageData, req.Preferences)
	if err != nil {
		return nil, err
	}

	params := search.BuildParams(it, search.MapOptions{
		PageSize:    s.pageSize,
		ForceRandom: req.ForceRandom,
	})

	recipes, total, strategyUsed, cacheHit, err := s.resolveWithCache(ctx, params)
	if err != nil {
		return nil, err
	}

	state := session.NewState(it, req.Text)
	state.LastFingerprint = intent.Fingerprint(it)
	state.MarkShown(recipes)

	sessionID := common.GenerateUUID()
	if err := s.sessions.Put(ctx, sessionID, state); err != nil {
		common.LogWarn("工作階段寫入失敗，去重將不可用", zap.Error(err))
	}

	return &SearchResult{
		SessionID:    sessionID,
		Recipes:      recipes,
		Total:        total,
		StrategyUsed: strategyUsed,
		CacheHit:     cacheHit,
	}, nil
}

// Regenerate 在既有工作階段上要求一組不同的結果。
// 變化策略輪替決定搜什麼，放寬階梯決定搜多嚴；
// 新結果會先過已顯示集合再回傳。
func (s *Service) Regenerate(ctx context.Context, sessionID string) (*SearchResult, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	it := state.Intent
	if it == nil {
		it = common.FallbackIntent()
	}

	// 每第三次重生才重跑分析，其餘沿用前次意圖
	if (state.Count+1)%reanalyzeEvery == 0 && state.SourceText != "" {
		fresh, err := s.analyzer.Analyze(ctx, state.SourceText, "", nil)
		if err == nil && fresh != nil {
			it = fresh
			state.Intent = fresh
		}
	}

	variation := search.NextVariation(state.Count)
	common.LogInfo("重生變化策略",
		zap.String("變化", variation.Name),
		zap.Int("重生次數", state.Count),
	)

	params := search.BuildParams(it, search.MapOptions{PageSize: s.pageSize})
	params = variation.Apply(params, it)

	recipes, total, strategyUsed, cacheHit, err := s.resolveWithCache(ctx, params)
	if err != nil {
		return nil, err
	}

	fresh := search.FilterShown(recipes, state.ShownIDs)

	state.MarkShown(fresh)
	state.Count++
	state.LastFingerprint = intent.Fingerprint(it)
	if err := s.sessions.Put(ctx, sessionID, state); err != nil {
		common.LogWarn("工作階段更新失敗", zap.Error(err))
	}

	return &SearchResult{
		SessionID:         sessionID,
		Recipes:           fresh,
		Total:             total,
		StrategyUsed:      strategyUsed,
		Variation:         variation.Name,
		CacheHit:          cacheHit,
		RegenerationCount: state.Count,
	}, nil
}

// resolveWithCache 先查快取，未命中才跑放寬階梯；取消時不寫入快取
func (s *Service) resolveWithCache(ctx context.Context, params search.Params) ([]common.RecipeSummary, int, string, bool, error) {
	if entry, ok := s.cache.Get(params); ok {
		return entry.Recipes, entry.Total, entry.StrategyUsed, true, nil
	}

	resolution, err := s.resolver.Resolve(ctx, params)
	if err != nil {
		return nil, 0, "", false, err
	}

	if len(resolution.Recipes) > 0 {
		s.cache.Put(params, resolution.Recipes, resolution.Total, resolution.StrategyUsed)
	}

	return resolution.Recipes, resolution.Total, resolution.StrategyUsed, false, nil
}
