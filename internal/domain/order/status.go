package order

import (
	"strings"
)

// Status 订单状态
// 正向流转：pending → processing → shipped → delivered，允许跳过中间状态；
// cancelled 只能由 pending/processing 进入；delivered、cancelled 为终态。
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Statuses 全部状态
var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// 正向流转的先后顺序
var forwardRank = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

// ParseStatus 解析状态，不在枚举内返回ErrInvalidStatus
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// IsValid 是否为合法状态
func (s Status) IsValid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := forwardRank[s]
	return ok
}

// IsTerminal 是否终态
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Cancellable 是否允许取消
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

// Effects 状态变更附带的副作用
type Effects struct {
	// NoOp 目标状态与当前相同，不做任何修改
	NoOp bool
	// Restock 回补每个订单项的库存
	Restock bool
	// MarkDelivered 写入签收标记与签收时间
	MarkDelivered bool
}

// Transition 状态机转换函数，对任意输入都有确定结果
func Transition(from, to Status) (Effects, error) {
	if !from.IsValid() || !to.IsValid() {
		return Effects{}, ErrInvalidStatus
	}
	if from == to {
		return Effects{NoOp: true}, nil
	}
	if from.IsTerminal() {
		return Effects{}, ErrInvalidTransition
	}
	if to == StatusCancelled {
		if !from.Cancellable() {
			return Effects{}, ErrInvalidTransition
		}
		return Effects{Restock: true}, nil
	}
	if forwardRank[to] <= forwardRank[from] {
		return Effects{}, ErrInvalidTransition
	}
	return Effects{MarkDelivered: to == StatusDelivered}, nil
}
