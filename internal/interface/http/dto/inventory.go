package dto

// UpdateQuantityRequest 设置某张卡在桶中的绝对数量
// 使用指针区分"未传"与0
type UpdateQuantityRequest struct {
	QuantityRegular *int `json:"quantity_regular" binding:"required,min=0" example:"1"`
	QuantityFoil    *int `json:"quantity_foil" binding:"required,min=0" example:"0"`
}

// InventoryResponse 更新后的库存
type InventoryResponse struct {
	CardID          string `json:"card_id" example:"e3285e6b-3e79-4d7c-bf96-d920f973b122"`
	Bucket          string `json:"bucket" example:"collection"`
	QuantityRegular int    `json:"quantity_regular" example:"1"`
	QuantityFoil    int    `json:"quantity_foil" example:"0"`
}

// StatsResponse 桶统计
type StatsResponse struct {
	TotalCards  int     `json:"total_cards" example:"1532"`
	UniqueCards int     `json:"unique_cards" example:"987"`
	TotalValue  float64 `json:"total_value" example:"2345.67"`
}

// ImportRowError 导入行错误
type ImportRowError struct {
	Row        int    `json:"row" example:"7"`
	ScryfallID string `json:"scryfall_id" example:"not-a-card"`
	Error      string `json:"error" example:"card not found"`
}

// ImportResponse CSV导入结果
type ImportResponse struct {
	Message  string           `json:"message" example:"Import completed: 41 imported, 1 skipped"`
	Imported int              `json:"imported" example:"41"`
	Skipped  int              `json:"skipped" example:"1"`
	Errors   []ImportRowError `json:"errors"`
}

// CacheStatsResponse 缓存命中统计
type CacheStatsResponse struct {
	TotalCalls int64  `json:"total_calls" example:"200"`
	Hits       int64  `json:"hits" example:"150"`
	Misses     int64  `json:"misses" example:"50"`
	HitRate    string `json:"hit_rate" example:"75.00%"`
}

// RefreshCountsResponse 聚合刷新结果
type RefreshCountsResponse struct {
	SetsRefreshed int64 `json:"sets_refreshed" example:"312"`
}
