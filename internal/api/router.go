package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	discoveryHandler "recipe-discovery/internal/api/handlers/discovery"
	"recipe-discovery/internal/api/handlers/health"
	"recipe-discovery/internal/api/middleware"
	"recipe-discovery/internal/core/ai"
	"recipe-discovery/internal/core/catalog"
	discoveryService "recipe-discovery/internal/core/discovery"
	"recipe-discovery/internal/core/image"
	"recipe-discovery/internal/core/intent"
	"recipe-discovery/internal/core/search"
	"recipe-discovery/internal/core/session"
	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 超時設置：意圖分析 + 最多八次目錄呼叫要留足裕度
const timeoutDuration = 90 * time.Second

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, searchCache *search.Cache, sessionStore session.Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制：base64 圖片膨脹約 4/3，再加 JSON 包裝
	maxBodySize := cfg.Image.MaxSizeBytes * 2
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 去重與限流
	router.Use(middleware.Deduplication(cfg))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("model", cfg.OpenRouter.Model),
		zap.String("catalog_base_url", cfg.Catalog.BaseURL),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化目錄客戶端
	catalogClient := catalog.NewClient(&cfg.Catalog)
	if catalogClient == nil {
		return nil, fmt.Errorf("failed to initialize catalog client")
	}

	// 初始化意圖分析
	aiClient := ai.NewClient(cfg)
	imageService := image.NewService(cfg.Image.MaxSizeBytes)
	analyzer := intent.NewAnalyzer(aiClient, imageService)

	// 初始化探索服務
	resolver := search.NewResolver(catalogClient)
	service := discoveryService.NewService(analyzer, resolver, searchCache, sessionStore, cfg.Catalog.PageSize)
	if service == nil {
		return nil, fmt.Errorf("failed to initialize discovery service")
	}

	// 全局中間件：設置超時和配置
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		// 設置配置
		c.Set("config", cfg)

		// 處理請求
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck(searchCache))
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		handler := discoveryHandler.NewHandler(service, catalogClient)

		// 探索相關路由
		discoveryGroup := api.Group("/discovery")
		{
			// 以自由文字（可附圖）搜尋
			discoveryGroup.POST("/search", handler.HandleSearch)

			// 同一階段換一批結果
			discoveryGroup.POST("/regenerate", handler.HandleRegenerate)
		}

		// 單一食譜詳情
		api.GET("/recipes/:id", handler.HandleRecipeDetail)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
