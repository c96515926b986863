package mocks

import (
	"context"
	"sync"
)

// Event 已发布的事件
type Event struct {
	RoutingKey string
	Payload    interface{}
}

// Publisher 记录发布的事件,实现inventory.EventPublisher
type Publisher struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

func (p *Publisher) Publish(_ context.Context, routingKey string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, Event{RoutingKey: routingKey, Payload: event})
	return nil
}

// Keys 已发布事件的路由键
func (p *Publisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, len(p.Events))
	for i, e := range p.Events {
		keys[i] = e.RoutingKey
	}
	return keys
}
