package inventory

import (
	"context"
	"time"
)

// 事件路由键
const (
	EventInventoryChanged = "inventory.changed"
	EventImportCompleted  = "import.completed"
)

// ChangedEvent 手动修改库存后发布
type ChangedEvent struct {
	Bucket          Bucket    `json:"bucket"`
	CardID          string    `json:"card_id"`
	QuantityRegular int       `json:"quantity_regular"`
	QuantityFoil    int       `json:"quantity_foil"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// ImportCompletedEvent CSV导入完成后发布
type ImportCompletedEvent struct {
	Bucket     Bucket    `json:"bucket"`
	Imported   int       `json:"imported"`
	Skipped    int       `json:"skipped"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher 事件发布接口
// 发布失败只记录日志,不影响请求结果
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
}
