package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/internal/infrastructure/config"
	"github.com/xiebiao/techhaven/pkg/circuitbreaker"
	"github.com/xiebiao/techhaven/pkg/mq"
)

type fakeBroker struct {
	fail     error
	calls    int
	keys     []string
	messages []interface{}
}

func (b *fakeBroker) Publish(_ context.Context, routingKey string, message interface{}) error {
	b.calls++
	if b.fail != nil {
		return b.fail
	}
	b.keys = append(b.keys, routingKey)
	b.messages = append(b.messages, message)
	return nil
}

func TestMQPublisherRoutesByEventType(t *testing.T) {
	m := newTestMetrics()
	broker := &fakeBroker{}
	p := newMQPublisher(broker, m, zap.NewNop())

	evt := order.Event{Type: order.EventStatusChanged, OrderID: 3, Status: order.StatusShipped}
	require.NoError(t, p.Publish(context.Background(), evt))
	assert.Equal(t, []string{"order.status_changed"}, broker.keys)
	assert.Equal(t, evt, broker.messages[0])
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsPublished.WithLabelValues("order.status_changed", "ok")))
}

func TestMQPublisherTripsBreaker(t *testing.T) {
	m := newTestMetrics()
	broker := &fakeBroker{fail: errors.New("connection reset")}
	p := newMQPublisher(broker, m, zap.NewNop())

	evt := order.Event{Type: order.EventCreated}
	for i := 0; i < 5; i++ {
		assert.Error(t, p.Publish(context.Background(), evt))
	}
	err := p.Publish(context.Background(), evt)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
	assert.Equal(t, 5, broker.calls, "熔断后不再访问MQ")
	assert.Equal(t, float64(6), testutil.ToFloat64(m.EventsPublished.WithLabelValues("order.created", "error")))
}

func TestNewPublisherWithoutMQ(t *testing.T) {
	m := newTestMetrics()
	hub := NewHub(m, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	pub, cleanup, err := NewPublisher(&config.Config{}, hub, m, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, pub.Publish(ctx, order.Event{Type: order.EventDeleted}))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsPublished.WithLabelValues("order.deleted", "ok")))
}

type fakeConsumer struct {
	bodies [][]byte
	errs   []error
}

func (c *fakeConsumer) Consume(ctx context.Context, handler mq.Handler) error {
	for _, body := range c.bodies {
		c.errs = append(c.errs, handler(ctx, "order.created", body))
	}
	return nil
}

func TestRelayForwardsToHub(t *testing.T) {
	m := newTestMetrics()
	hub := NewHub(m, zap.NewNop())

	good, err := json.Marshal(order.Event{Type: order.EventCreated, OrderID: 9})
	require.NoError(t, err)
	consumer := &fakeConsumer{bodies: [][]byte{[]byte("{not json"), good}}
	relay := &Relay{consumer: consumer, hub: hub, log: zap.NewNop()}

	require.NoError(t, relay.Run(context.Background()))
	assert.Equal(t, []error{nil, nil}, consumer.errs, "无法解析的消息被丢弃而不是重新入队")

	select {
	case msg := <-hub.broadcast:
		var evt order.Event
		require.NoError(t, json.Unmarshal(msg, &evt))
		assert.Equal(t, uint(9), evt.OrderID)
	default:
		t.Fatal("事件应转发给Hub")
	}
}

func TestRelayWithoutMQBlocksUntilCancel(t *testing.T) {
	relay, cleanup, err := NewRelay(&config.Config{}, NewHub(newTestMetrics(), zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, relay.Run(ctx))
}
