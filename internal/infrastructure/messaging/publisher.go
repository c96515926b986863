package messaging

import (
	"context"

	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/config"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
	"github.com/xiebiao/mtgkiosk/pkg/mq"
)

// Publisher 事件发布(RabbitMQ实现)
type Publisher struct {
	mq *mq.Publisher
}

// NewPublisher 根据配置创建事件发布者
// mq.enabled=false时返回NoopPublisher,close为空操作
func NewPublisher(cfg config.MQConfig) (inventory.EventPublisher, func() error, error) {
	if !cfg.Enabled {
		return NoopPublisher{}, func() error { return nil }, nil
	}

	p, err := mq.NewPublisher(cfg.URL, cfg.Exchange, mq.ExchangeTopic)
	if err != nil {
		return nil, nil, err
	}
	return &Publisher{mq: p}, p.Close, nil
}

// Publish 发布事件
func (p *Publisher) Publish(ctx context.Context, routingKey string, event interface{}) error {
	return p.mq.Publish(ctx, routingKey, event)
}

// NoopPublisher 只记录调试日志
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, routingKey string, _ interface{}) error {
	logger.Ctx(ctx).Debug().Str("routing_key", routingKey).Msg("事件发布未启用,跳过")
	return nil
}

// PublishSafe 发布失败只记录日志
func PublishSafe(ctx context.Context, pub inventory.EventPublisher, routingKey string, event interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, routingKey, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("routing_key", routingKey).Msg("事件发布失败")
	}
}
