package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/internal/infrastructure/config"
	"github.com/xiebiao/techhaven/pkg/circuitbreaker"
	"github.com/xiebiao/techhaven/pkg/metrics"
	"github.com/xiebiao/techhaven/pkg/mq"
)

// RoutingPattern 订阅全部订单事件
const RoutingPattern = "order.#"

type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// MQPublisher 将订单事件发布到topic exchange，路由键为事件类型
type MQPublisher struct {
	pub     messagePublisher
	breaker *circuitbreaker.Breaker
	metrics *metrics.Metrics
	log     *zap.Logger
}

func newMQPublisher(pub messagePublisher, m *metrics.Metrics, log *zap.Logger) *MQPublisher {
	return &MQPublisher{
		pub: pub,
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:    "order-events",
			Timeout: 10 * time.Second,
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				log.Warn("熔断器状态变化", zap.String("name", name), zap.Stringer("from", from), zap.Stringer("to", to))
				m.SetBreakerState(name, int(to))
			},
		}),
		metrics: m,
		log:     log,
	}
}

// Publish 实现 order.EventPublisher
func (p *MQPublisher) Publish(ctx context.Context, evt order.Event) error {
	err := p.breaker.Execute(func() error {
		return p.pub.Publish(ctx, string(evt.Type), evt)
	})
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.metrics.EventsPublished.WithLabelValues(string(evt.Type), result).Inc()
	return err
}

// localPublisher 未启用MQ时直接推送给本实例的Hub
type localPublisher struct {
	hub     *Hub
	metrics *metrics.Metrics
}

func (p localPublisher) Publish(ctx context.Context, evt order.Event) error {
	err := p.hub.Publish(ctx, evt)
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.metrics.EventsPublished.WithLabelValues(string(evt.Type), result).Inc()
	return err
}

// NewPublisher 按配置选择事件通道：启用MQ时发布到RabbitMQ，由各实例的Relay转发给Hub
func NewPublisher(cfg *config.Config, hub *Hub, m *metrics.Metrics, log *zap.Logger) (order.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return localPublisher{hub: hub, metrics: m}, func() {}, nil
	}
	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := pub.Close(); err != nil {
			log.Warn("关闭消息发布者失败", zap.Error(err))
		}
	}
	return newMQPublisher(pub, m, log), cleanup, nil
}
