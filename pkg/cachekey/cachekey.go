// Package cachekey 响应缓存的key约定(不含全局前缀,前缀由缓存存储统一添加)
//
//	cards:colors=R&page=1       列表类:端点名 + 规范化查询串
//	collection_set_cards:neo:.. 路径参数是端点名的一部分
//	card:{id}                   单卡(/cards/{id}与/cards/bulk共用)
//	collection_stats            桶统计
//	meta:hits / meta:misses     命中统计
package cachekey

import (
	"net/url"
	"sort"
)

// 不参与缓存key的查询参数
const RefreshParam = "refresh"

// 元数据key
const (
	Hits   = "meta:hits"
	Misses = "meta:misses"
)

// Query 端点名 + 规范化查询串
// 参数按key排序、每个key的多个值排序、去掉refresh,值做URL编码
func Query(endpoint string, q url.Values) string {
	normalized := url.Values{}
	for k, vs := range q {
		if k == RefreshParam {
			continue
		}
		sorted := append([]string(nil), vs...)
		sort.Strings(sorted)
		normalized[k] = sorted
	}
	return endpoint + ":" + normalized.Encode()
}

// Card 单卡key
func Card(id string) string {
	return "card:" + id
}

// Stats 桶统计key
func Stats(bucket string) string {
	return bucket + "_stats"
}

// BucketPatterns 桶数据变更后需要删除的key模式
// 桶下的全部缓存 + 所有卡牌列表(列表中带库存计数)
func BucketPatterns(bucket string) []string {
	patterns := []string{
		bucket + "*",
		"cards:*",
		"card_search:*",
		"v2_cards:*",
		"set_cards:*",
	}
	if bucket == "collection" {
		// /all-sets展示收藏数量
		patterns = append(patterns, "all_sets:*")
	}
	return patterns
}

// AggregatePatterns 依赖系列收藏数量聚合表的缓存
// 聚合表只记录收藏桶,系列进度出现在/all-sets、收藏系列列表、系列卡牌列表和v2列表中
func AggregatePatterns() []string {
	return []string{
		"all_sets:*",
		"collection_sets*",
		"collection_set_cards:*",
		"set_cards:*",
		"v2_cards:*",
	}
}

// AllCards 所有单卡key
const AllCards = "card:*"
