package order

import (
	"context"
	"time"
)

// EventType 订单事件类型，同时作为MQ路由键
type EventType string

const (
	EventCreated       EventType = "order.created"
	EventStatusChanged EventType = "order.status_changed"
	EventUpdated       EventType = "order.updated"
	EventDeleted       EventType = "order.deleted"
)

// Event 订单事件，推送给管理后台
type Event struct {
	Type           EventType `json:"type"`
	OrderID        uint      `json:"orderId"`
	OrderNo        string    `json:"orderNo"`
	UserID         uint      `json:"userId"`
	Status         Status    `json:"status"`
	PreviousStatus Status    `json:"previousStatus,omitempty"`
	TotalPrice     int64     `json:"totalPrice"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// NewEvent 根据订单当前状态构造事件
func NewEvent(t EventType, o *Order, previous Status) Event {
	return Event{
		Type:           t,
		OrderID:        o.ID,
		OrderNo:        o.OrderNo,
		UserID:         o.UserID,
		Status:         o.Status,
		PreviousStatus: previous,
		TotalPrice:     o.Totals.TotalPrice,
		OccurredAt:     time.Now(),
	}
}

// EventPublisher 订单事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

// NopPublisher 丢弃全部事件
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
