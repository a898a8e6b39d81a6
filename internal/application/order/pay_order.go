package order

import (
	"context"
	"strings"
	"time"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/internal/domain/shared"
	"github.com/xiebiao/techhaven/pkg/metrics"
)

// PayOrderUseCase 标记订单已支付（支付网关回调或管理员确认）
type PayOrderUseCase struct {
	lc lifecycle
}

// NewPayOrderUseCase 创建支付用例
func NewPayOrderUseCase(
	orderRepo order.Repository,
	laptopRepo laptop.Repository,
	txManager shared.TxManager,
	publisher order.EventPublisher,
	cache laptop.Cache,
	m *metrics.Metrics,
) *PayOrderUseCase {
	return &PayOrderUseCase{lc: lifecycle{
		orderRepo:  orderRepo,
		laptopRepo: laptopRepo,
		txManager:  txManager,
		publisher:  publisher,
		cache:      cache,
		metrics:    m,
	}}
}

// PayOrderRequest 支付结果
type PayOrderRequest struct {
	OrderID      uint
	PaymentID    string
	Status       string
	UpdateTime   string
	EmailAddress string
}

// Execute 已取消或已支付的订单拒绝；pending订单支付后进入processing
func (uc *PayOrderUseCase) Execute(ctx context.Context, req PayOrderRequest) (*order.Order, error) {
	var result *order.PaymentResult
	if req.PaymentID != "" || req.Status != "" {
		result = &order.PaymentResult{
			ID:           strings.TrimSpace(req.PaymentID),
			Status:       strings.TrimSpace(req.Status),
			UpdateTime:   strings.TrimSpace(req.UpdateTime),
			EmailAddress: strings.TrimSpace(req.EmailAddress),
		}
	}
	return uc.lc.apply(ctx, req.OrderID, nil, func(o *order.Order, now time.Time) (order.Effects, error) {
		return o.MarkPaid(result, now)
	})
}

// UpdateShippingUseCase 写入物流信息
type UpdateShippingUseCase struct {
	lc lifecycle
}

// NewUpdateShippingUseCase 创建物流用例
func NewUpdateShippingUseCase(
	orderRepo order.Repository,
	laptopRepo laptop.Repository,
	txManager shared.TxManager,
	publisher order.EventPublisher,
	cache laptop.Cache,
	m *metrics.Metrics,
) *UpdateShippingUseCase {
	return &UpdateShippingUseCase{lc: lifecycle{
		orderRepo:  orderRepo,
		laptopRepo: laptopRepo,
		txManager:  txManager,
		publisher:  publisher,
		cache:      cache,
		metrics:    m,
	}}
}

// UpdateShippingRequest 物流信息，TrackingNumber 为空时生成内部追踪号
type UpdateShippingRequest struct {
	OrderID           uint
	TrackingNumber    string
	EstimatedDelivery *time.Time
}

// Execute 已取消、已签收的订单拒绝；未发货订单进入shipped
func (uc *UpdateShippingUseCase) Execute(ctx context.Context, req UpdateShippingRequest) (*order.Order, error) {
	tracking := strings.TrimSpace(req.TrackingNumber)
	if tracking == "" {
		tracking = order.GenerateTrackingNumber()
	}
	return uc.lc.apply(ctx, req.OrderID, nil, func(o *order.Order, now time.Time) (order.Effects, error) {
		return o.SetShipping(tracking, req.EstimatedDelivery, now)
	})
}
