// Package events 订单事件的分发：本地WebSocket推送与RabbitMQ跨实例广播
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub 管理后台的WebSocket连接集合
// 连接集合只在 Run 所在的goroutine中读写
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}

	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewHub 创建Hub，需启动 Run 后才会分发消息
func NewHub(m *metrics.Metrics, log *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		metrics:    m,
		log:        log,
	}
}

// Run 事件循环，ctx取消后关闭全部连接并返回
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*client]struct{})
	defer func() {
		for c := range clients {
			close(c.send)
		}
		h.metrics.WSConnections.Set(0)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			clients[c] = struct{}{}
			h.metrics.WSConnections.Set(float64(len(clients)))
		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.send)
				h.metrics.WSConnections.Set(float64(len(clients)))
			}
		case msg := <-h.broadcast:
			for c := range clients {
				select {
				case c.send <- msg:
				default:
					// 消费过慢的连接直接断开
					delete(clients, c)
					close(c.send)
					h.log.Warn("WebSocket客户端积压过多，已断开", zap.String("remote", c.conn.RemoteAddr().String()))
				}
			}
			h.metrics.WSConnections.Set(float64(len(clients)))
		}
	}
}

// Publish 实现 order.EventPublisher，推送给本实例的全部连接
func (h *Hub) Publish(ctx context.Context, evt order.Event) error {
	msg, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Serve 接管已升级的连接，阻塞到连接断开
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

// readPump 只处理pong和关闭，客户端发来的消息忽略
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("WebSocket连接异常断开", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
