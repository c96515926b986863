package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/xiebiao/mtgkiosk/internal/infrastructure/config"
)

func corsEngine(cfg config.CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/cards", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"items": []string{}}) })
	r.PUT("/kiosk/:card_id", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func serve(r *gin.Engine, method, target, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	cfg := config.CORSConfig{
		Enabled:       true,
		AllowOrigins:  []string{"http://localhost:3000"},
		AllowMethods:  []string{"GET", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Authorization"},
		ExposeHeaders: []string{"X-Cache"},
		MaxAge:        600,
	}
	r := corsEngine(cfg)

	t.Run("允许的来源", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/cards", "http://localhost:3000")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "X-Cache", w.Header().Get("Access-Control-Expose-Headers"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("预检请求", func(t *testing.T) {
		w := serve(r, http.MethodOptions, "/kiosk/bolt", "http://localhost:3000")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "GET, PUT, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("不允许的来源", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/cards", "http://evil.example")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"origin not allowed"}`, w.Body.String())
	})

	t.Run("无Origin直接放行", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/cards", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORS_Wildcard(t *testing.T) {
	w := serve(corsEngine(config.CORSConfig{Enabled: true, AllowOrigins: []string{"*"}}), http.MethodGet, "/cards", "http://a.example")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	// 携带凭证时不能返回*
	w = serve(corsEngine(config.CORSConfig{Enabled: true, AllowOrigins: []string{"*"}, AllowCredentials: true}), http.MethodGet, "/cards", "http://a.example")
	assert.Equal(t, "http://a.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_Disabled(t *testing.T) {
	w := serve(corsEngine(config.CORSConfig{Enabled: false}), http.MethodGet, "/cards", "http://evil.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
