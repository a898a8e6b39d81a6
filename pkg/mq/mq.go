// Package mq RabbitMQ 发布/订阅封装（topic exchange，JSON消息体）
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrClosed 连接已关闭
var ErrClosed = errors.New("mq: 连接已关闭")

// Handler 消息处理函数，返回error时消息重新入队
type Handler func(ctx context.Context, routingKey string, body []byte) error

// Publisher 消息发布者
// amqp.Channel 不是并发安全的，发布时加锁
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *zap.Logger

	mu     sync.Mutex
	closed bool
}

// NewPublisher 连接RabbitMQ并声明持久化的topic exchange
func NewPublisher(url, exchange string, log *zap.Logger) (*Publisher, error) {
	conn, ch, err := dial(url, exchange)
	if err != nil {
		return nil, err
	}
	log.Info("消息发布者已创建", zap.String("exchange", exchange))
	return &Publisher{conn: conn, channel: ch, exchange: exchange, log: log}, nil
}

func dial(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("创建Channel失败: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("声明Exchange失败: %w", err)
	}
	return conn, ch, nil
}

// Publish 发布JSON消息
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	msg, err := newPublishing(message, time.Now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}
	p.log.Debug("消息已发布", zap.String("routing_key", routingKey), zap.Int("bytes", len(msg.Body)))
	return nil
}

func newPublishing(message interface{}, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("消息序列化失败: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Body:         body,
	}, nil
}

// Close 关闭Channel与连接
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return errors.Join(p.channel.Close(), p.conn.Close())
}

// Consumer 消息消费者
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *zap.Logger
}

// ConsumerOptions 队列参数
// Queue 为空时由服务端生成排他队列，每个实例各自收到全部消息（广播）
type ConsumerOptions struct {
	URL         string
	Exchange    string
	Queue       string
	RoutingKeys []string
}

// NewConsumer 声明队列并绑定路由键
func NewConsumer(opts ConsumerOptions, log *zap.Logger) (*Consumer, error) {
	conn, ch, err := dial(opts.URL, opts.Exchange)
	if err != nil {
		return nil, err
	}

	broadcast := opts.Queue == ""
	q, err := ch.QueueDeclare(opts.Queue, !broadcast, broadcast, broadcast, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("声明Queue失败: %w", err)
	}
	for _, key := range opts.RoutingKeys {
		if err := ch.QueueBind(q.Name, key, opts.Exchange, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("绑定Queue失败: %w", err)
		}
	}

	log.Info("消息消费者已创建", zap.String("queue", q.Name), zap.Strings("routing_keys", opts.RoutingKeys))
	return &Consumer{conn: conn, channel: ch, queue: q.Name, log: log}, nil
}

// Consume 阻塞消费直到ctx取消
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(10, 0, false); err != nil {
		return fmt.Errorf("设置Qos失败: %w", err)
	}
	deliveries, err := c.channel.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("开始消费失败: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("消息Channel已关闭")
			}
			dispatch(ctx, d, handler, c.log)
		}
	}
}

// dispatch 处理单条消息并确认；handler panic 视为失败
func dispatch(ctx context.Context, d amqp.Delivery, handler Handler, log *zap.Logger) {
	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("handler panic: %v", p)
			}
		}()
		return handler(ctx, d.RoutingKey, d.Body)
	}()

	if err != nil {
		// 重投过的消息不再入队，避免毒消息循环
		requeue := !d.Redelivered
		log.Warn("消息处理失败", zap.String("routing_key", d.RoutingKey), zap.Bool("requeue", requeue), zap.Error(err))
		_ = d.Nack(false, requeue)
		return
	}
	_ = d.Ack(false)
}

// Close 关闭Channel与连接
func (c *Consumer) Close() error {
	return errors.Join(c.channel.Close(), c.conn.Close())
}
