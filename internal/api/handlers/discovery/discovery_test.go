package discovery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recipe-discovery/internal/core/catalog"
	discoveryService "recipe-discovery/internal/core/discovery"
	"recipe-discovery/internal/core/intent"
	"recipe-discovery/internal/core/search"
	"recipe-discovery/internal/core/session"
	"recipe-discovery/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAI struct {
	response string
}

func (f *fakeAI) GenerateResponse(ctx context.Context, prompt string, imageData string) (string, error) {
	return f.response, nil
}

// newTestRouter 組一個最小路由：假 AI、httptest 目錄、記憶體工作階段
func newTestRouter(t *testing.T, aiResponse string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalogServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/information") {
			w.Write([]byte(`{"id": 101, "title": "Pad Thai", "readyInMinutes": 25, "servings": 2}`))
			return
		}
		w.Write([]byte(`{
			"results": [
				{"id": 101, "title": "Pad Thai", "readyInMinutes": 25, "servings": 2},
				{"id": 102, "title": "Green Curry", "readyInMinutes": 40, "servings": 4}
			],
			"totalResults": 2
		}`))
	}))
	t.Cleanup(catalogServer.Close)

	catalogClient := catalog.NewClient(&config.CatalogConfig{
		BaseURL:  catalogServer.URL,
		APIKey:   "test-key",
		Timeout:  5 * time.Second,
		PageSize: 12,
	})

	analyzer := intent.NewAnalyzer(&fakeAI{response: aiResponse}, nil)
	resolver := search.NewResolver(catalogClient)
	sessions := session.NewMemoryStore(time.Hour)
	service := discoveryService.NewService(analyzer, resolver, nil, sessions, 12)

	handler := NewHandler(service, catalogClient)

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/discovery/search", handler.HandleSearch)
	api.POST("/discovery/regenerate", handler.HandleRegenerate)
	api.GET("/recipes/:id", handler.HandleRecipeDetail)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleSearch(t *testing.T) {
	router := newTestRouter(t, `{"query": "thai curry", "allergies": ["peanut"]}`)

	w := doJSON(router, http.MethodPost, "/api/v1/discovery/search", `{"text": "thai curry without peanuts"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Len(t, resp.Recipes, 2)
	assert.Equal(t, search.StrategyFull, resp.StrategyUsed)
	assert.Equal(t, "Pad Thai", resp.Recipes[0].Title)
}

func TestHandleSearchMissingText(t *testing.T) {
	router := newTestRouter(t, `{}`)

	w := doJSON(router, http.MethodPost, "/api/v1/discovery/search", `{"image": "abc"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRegenerate(t *testing.T) {
	router := newTestRouter(t, `{"query": "thai curry"}`)

	w := doJSON(router, http.MethodPost, "/api/v1/discovery/search", `{"text": "thai curry"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var first SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = doJSON(router, http.MethodPost, "/api/v1/discovery/regenerate", `{"session_id": "`+first.SessionID+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var second SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, search.VariationSimilar, second.Variation)
	assert.Equal(t, 1, second.RegenerationCount)
}

func TestHandleRegenerateUnknownSession(t *testing.T) {
	router := newTestRouter(t, `{}`)

	w := doJSON(router, http.MethodPost, "/api/v1/discovery/regenerate", `{"session_id": "nope"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_NOT_FOUND")
}

func TestHandleRecipeDetail(t *testing.T) {
	router := newTestRouter(t, `{}`)

	w := doJSON(router, http.MethodGet, "/api/v1/recipes/101", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pad Thai")
}

func TestHandleRecipeDetailBadID(t *testing.T) {
	router := newTestRouter(t, `{}`)

	w := doJSON(router, http.MethodGet, "/api/v1/recipes/abc", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
