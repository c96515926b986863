package middleware

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/mtgkiosk/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/mtgkiosk/pkg/cachekey"
)

// CacheHeader 命中情况响应头(HIT | MISS | BYPASS)
const CacheHeader = "X-Cache"

// EndpointFunc 计算缓存key的端点名(路径参数是端点名的一部分)
type EndpointFunc func(c *gin.Context) string

// Endpoint 固定端点名
func Endpoint(name string) EndpointFunc {
	return func(*gin.Context) string { return name }
}

// BucketEndpoint {bucket}{suffix},如collection_sets
func BucketEndpoint(suffix string) EndpointFunc {
	return func(c *gin.Context) string {
		return GetBucket(c).String() + suffix
	}
}

// ParamEndpoint 端点名 + 路径参数,如collection_set_cards:neo
func ParamEndpoint(fn EndpointFunc, param string) EndpointFunc {
	return func(c *gin.Context) string {
		return fn(c) + ":" + strings.ToLower(strings.TrimSpace(c.Param(param)))
	}
}

// ResponseCache 响应缓存中间件
// 1. key = 端点名 + 规范化查询串(refresh不参与)
// 2. refresh=true跳过读取,新结果仍然写回
// 3. 只缓存200响应
func ResponseCache(cache redis.Cache, ttl time.Duration, endpoint EndpointFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		query := c.Request.URL.Query()
		key := cachekey.Query(endpoint(c), query)

		if query.Get(cachekey.RefreshParam) == "true" {
			c.Header(CacheHeader, "BYPASS")
		} else if body, ok := cache.Get(ctx, key); ok {
			c.Header(CacheHeader, "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		} else {
			c.Header(CacheHeader, "MISS")
		}

		writer := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		if writer.Status() == http.StatusOK && writer.body.Len() > 0 {
			cache.Set(ctx, key, writer.body.Bytes(), ttl)
		}
	}
}

// bodyRecorder 同时写出并记录响应体
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
