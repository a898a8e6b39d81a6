package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/pkg/metrics"
)

func newTestMetrics() *metrics.Metrics {
	reg := prometheus.NewRegistry()
	return metrics.New(reg, reg)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) order.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var evt order.Event
	require.NoError(t, json.Unmarshal(data, &evt))
	return evt
}

func TestHubFanOut(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := newTestMetrics()
	hub := NewHub(m, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn)
	}))
	defer srv.Close()

	first := dial(t, srv)
	second := dial(t, srv)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.WSConnections) == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(ctx, order.Event{Type: order.EventCreated, OrderID: 7, OrderNo: "TH-1"}))
	for _, conn := range []*websocket.Conn{first, second} {
		evt := readEvent(t, conn)
		assert.Equal(t, order.EventCreated, evt.Type)
		assert.Equal(t, uint(7), evt.OrderID)
	}

	require.NoError(t, first.Close())
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.WSConnections) == 1
	}, 2*time.Second, 10*time.Millisecond, "断开的连接应被移除")

	cancel()
	<-stopped

	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := second.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "Hub停止时通知客户端关闭: %v", err)
	_ = second.Close()

	assert.NoError(t, hub.Publish(context.Background(), order.Event{Type: order.EventUpdated}), "Hub停止后发布直接返回")
}
