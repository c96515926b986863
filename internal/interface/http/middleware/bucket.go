package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
)

const bucketKey = "bucket"

// Bucket 把路由组对应的库存桶写入Context
// /collection与/kiosk共用同一组Handler
func Bucket(b inventory.Bucket) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(bucketKey, b)
		c.Next()
	}
}

// GetBucket 读取当前库存桶,未设置时返回空
func GetBucket(c *gin.Context) inventory.Bucket {
	if v, ok := c.Get(bucketKey); ok {
		if b, ok := v.(inventory.Bucket); ok {
			return b
		}
	}
	return ""
}
