package events

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/internal/infrastructure/config"
	"github.com/xiebiao/techhaven/pkg/mq"
)

type messageConsumer interface {
	Consume(ctx context.Context, handler mq.Handler) error
}

// Relay 消费RabbitMQ中的订单事件并推送给本实例的Hub
// 每个实例使用排他队列，各自收到全部事件
type Relay struct {
	consumer messageConsumer
	hub      *Hub
	log      *zap.Logger
}

// NewRelay 未启用MQ时返回空转的Relay
func NewRelay(cfg *config.Config, hub *Hub, log *zap.Logger) (*Relay, func(), error) {
	if !cfg.MQ.Enabled {
		return &Relay{hub: hub, log: log}, func() {}, nil
	}
	consumer, err := mq.NewConsumer(mq.ConsumerOptions{
		URL:         cfg.MQ.URL,
		Exchange:    cfg.MQ.Exchange,
		RoutingKeys: []string{RoutingPattern},
	}, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := consumer.Close(); err != nil {
			log.Warn("关闭消息消费者失败", zap.Error(err))
		}
	}
	return &Relay{consumer: consumer, hub: hub, log: log}, cleanup, nil
}

// Run 阻塞到ctx取消
func (r *Relay) Run(ctx context.Context) error {
	if r.consumer == nil {
		<-ctx.Done()
		return nil
	}
	return r.consumer.Consume(ctx, r.handle)
}

// handle 无法解析的消息直接丢弃，重新入队也无法处理
func (r *Relay) handle(ctx context.Context, routingKey string, body []byte) error {
	var evt order.Event
	if err := json.Unmarshal(body, &evt); err != nil {
		r.log.Warn("丢弃无法解析的订单事件", zap.String("routing_key", routingKey), zap.Error(err))
		return nil
	}
	return r.hub.Publish(ctx, evt)
}
