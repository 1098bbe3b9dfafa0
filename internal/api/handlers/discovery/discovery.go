package discovery

import (
	"errors"
	"net/http"
	"strconv"

	"recipe-discovery/internal/core/catalog"
	discoveryService "recipe-discovery/internal/core/discovery"
	"recipe-discovery/internal/core/intent"
	"recipe-discovery/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SearchRequest 以自由文字（可附圖）搜尋食譜
type SearchRequest struct {
	Text        string              `json:"text" binding:"required"` // 使用者輸入的需求描述
	Image       string              `json:"image,omitempty"`         // base64 圖片，可省略
	Preferences *intent.Preferences `json:"preferences,omitempty"`   // 帳號層級偏好
	Surprise    bool                `json:"surprise,omitempty"`      // 驚喜模式：強制隨機排序
}

// RegenerateRequest 要求同一工作階段的另一組結果
type RegenerateRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// SearchResponse 搜尋或重生的回應
type SearchResponse struct {
	SessionID         string                 `json:"session_id"`
	Recipes           []common.RecipeSummary `json:"recipes"`
	Total             int                    `json:"total"`
	StrategyUsed      string                 `json:"strategy_used"`
	Variation         string                 `json:"variation,omitempty"`
	CacheHit          bool                   `json:"cache_hit"`
	RegenerationCount int                    `json:"regeneration_count"`
	Message           string                 `json:"message,omitempty"`
}

// Handler 探索處理程序
type Handler struct {
	service *discoveryService.Service
	catalog *catalog.Client
}

// NewHandler 創建探索處理程序
func NewHandler(service *discoveryService.Service, catalogClient *catalog.Client) *Handler {
	return &Handler{
		service: service,
		catalog: catalogClient,
	}
}

// HandleSearch 執行初始搜尋
func (h *Handler) HandleSearch(c *gin.Context) {
	requestID := requestid.Get(c)

	common.LogInfo("開始處理探索搜尋請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
	)

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.service.Discover(c.Request.Context(), discoveryService.SearchRequest{
		Text:        req.Text,
		ImageData:   req.Image,
		Preferences: req.Preferences,
		ForceRandom: req.Surprise,
	})
	if err != nil {
		h.writeResolveError(c, requestID, err)
		return
	}

	common.LogInfo("探索搜尋完成",
		zap.String("request_id", requestID),
		zap.String("session_id", result.SessionID),
		zap.String("strategy", result.StrategyUsed),
		zap.Int("results", len(result.Recipes)),
		zap.Bool("cache_hit", result.CacheHit),
	)

	c.JSON(http.StatusOK, buildResponse(result))
}

// HandleRegenerate 在既有工作階段上換一批結果
func (h *Handler) HandleRegenerate(c *gin.Context) {
	requestID := requestid.Get(c)

	var req RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	common.LogInfo("開始處理重生請求",
		zap.String("request_id", requestID),
		zap.String("session_id", req.SessionID),
	)

	result, err := h.service.Regenerate(c.Request.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, common.ErrSessionNotFound) {
			common.LogWarn("工作階段不存在或已過期",
				zap.String("request_id", requestID),
				zap.String("session_id", req.SessionID),
			)
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Session not found or expired",
				"code":  "SESSION_NOT_FOUND",
			})
			return
		}
		h.writeResolveError(c, requestID, err)
		return
	}

	common.LogInfo("重生完成",
		zap.String("request_id", requestID),
		zap.String("session_id", result.SessionID),
		zap.String("variation", result.Variation),
		zap.String("strategy", result.StrategyUsed),
		zap.Int("results", len(result.Recipes)),
	)

	c.JSON(http.StatusOK, buildResponse(result))
}

// HandleRecipeDetail 取單一食譜完整內容
func (h *Handler) HandleRecipeDetail(c *gin.Context) {
	requestID := requestid.Get(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	detail, err := h.catalog.GetRecipe(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		common.LogError("食譜詳情取得失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.Int("recipe_id", id),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch recipe detail"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// writeResolveError 解析失敗的統一回應
func (h *Handler) writeResolveError(c *gin.Context, requestID string, err error) {
	if errors.Is(err, common.ErrCatalogUnavailable) {
		common.LogError("目錄完全不可用",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Recipe catalog is temporarily unavailable",
			"code":  "CATALOG_UNAVAILABLE",
		})
		return
	}

	common.LogError("探索處理失敗",
		zap.Error(err),
		zap.String("request_id", requestID),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Discovery failed"})
}

// buildResponse 組裝回應；空結果帶說明訊息而非錯誤
func buildResponse(result *discoveryService.SearchResult) SearchResponse {
	resp := SearchResponse{
		SessionID:         result.SessionID,
		Recipes:           result.Recipes,
		Total:             result.Total,
		StrategyUsed:      result.StrategyUsed,
		Variation:         result.Variation,
		CacheHit:          result.CacheHit,
		RegenerationCount: result.RegenerationCount,
	}
	if resp.Recipes == nil {
		resp.Recipes = []common.RecipeSummary{}
	}
	if len(resp.Recipes) == 0 {
		resp.Message = "找不到符合條件的食譜，請換個描述再試一次"
	}
	return resp
}
