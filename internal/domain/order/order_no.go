package order

import (
	"github.com/oklog/ulid/v2"
)

// GenerateOrderNo 生成订单号：ORD + ULID
// ULID 按时间有序且不可预测，适合作为对外展示的业务单号
func GenerateOrderNo() string {
	return "ORD" + ulid.Make().String()
}

// GenerateTrackingNumber 未指定物流单号时生成内部追踪号
func GenerateTrackingNumber() string {
	return "TH" + ulid.Make().String()
}
