package order

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/internal/domain/shared"
	"github.com/xiebiao/techhaven/pkg/metrics"
	"github.com/xiebiao/techhaven/pkg/tracing"
)

// UpdateOrderStatusUseCase 管理员修改订单状态
// 取消会回补库存，签收会写入签收时间，其余流转见 order.Transition
type UpdateOrderStatusUseCase struct {
	lc lifecycle
}

// NewUpdateOrderStatusUseCase 创建订单状态用例
func NewUpdateOrderStatusUseCase(
	orderRepo order.Repository,
	laptopRepo laptop.Repository,
	txManager shared.TxManager,
	publisher order.EventPublisher,
	cache laptop.Cache,
	m *metrics.Metrics,
) *UpdateOrderStatusUseCase {
	return &UpdateOrderStatusUseCase{lc: lifecycle{
		orderRepo:  orderRepo,
		laptopRepo: laptopRepo,
		txManager:  txManager,
		publisher:  publisher,
		cache:      cache,
		metrics:    m,
	}}
}

// Execute 执行状态变更，status 不在枚举内返回ErrInvalidOrderStatus
func (uc *UpdateOrderStatusUseCase) Execute(ctx context.Context, orderID uint, status string) (_ *order.Order, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "order.update_status",
		attribute.Int64("order.id", int64(orderID)),
		attribute.String("order.status", status),
	)
	defer func() { tracing.End(span, err) }()

	to, err := order.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return uc.lc.apply(ctx, orderID, nil, func(o *order.Order, now time.Time) (order.Effects, error) {
		return o.ApplyStatus(to, now)
	})
}

// CancelOrderUseCase 取消订单，仅订单所有者或管理员可操作
type CancelOrderUseCase struct {
	lc lifecycle
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(
	orderRepo order.Repository,
	laptopRepo laptop.Repository,
	txManager shared.TxManager,
	publisher order.EventPublisher,
	cache laptop.Cache,
	m *metrics.Metrics,
) *CancelOrderUseCase {
	return &CancelOrderUseCase{lc: lifecycle{
		orderRepo:  orderRepo,
		laptopRepo: laptopRepo,
		txManager:  txManager,
		publisher:  publisher,
		cache:      cache,
		metrics:    m,
	}}
}

// Execute 已发货、已签收的订单不能取消；重复取消为空操作
func (uc *CancelOrderUseCase) Execute(ctx context.Context, orderID uint, requester Requester) (_ *order.Order, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "order.cancel",
		attribute.Int64("order.id", int64(orderID)),
		attribute.Int64("user.id", int64(requester.UserID)),
	)
	defer func() { tracing.End(span, err) }()

	return uc.lc.apply(ctx, orderID, &requester, func(o *order.Order, now time.Time) (order.Effects, error) {
		return o.ApplyStatus(order.StatusCancelled, now)
	})
}
