package order

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/cart"
	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/internal/domain/shared"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
	"github.com/xiebiao/techhaven/pkg/logger"
	"github.com/xiebiao/techhaven/pkg/metrics"
	"github.com/xiebiao/techhaven/pkg/tracing"
)

const tracerName = "techhaven/application/order"

// CreateOrderUseCase 下单用例
// 整个下单流程在一个事务内完成：
//  1. 按商品ID升序逐个 SELECT ... FOR UPDATE 锁定商品行（固定加锁顺序避免死锁）
//  2. 校验下单价格与当前售价一致
//  3. 条件扣减库存 UPDATE ... WHERE stock >= ?，影响行数为0即库存不足
//  4. 服务端重新计算金额并写入订单
//  5. 清空购物车
//
// 任一步失败整体回滚，不会出现部分扣减或半截订单。
type CreateOrderUseCase struct {
	orderRepo  order.Repository
	laptopRepo laptop.Repository
	cartRepo   cart.Repository
	txManager  shared.TxManager
	pricing    order.Pricing
	publisher  order.EventPublisher
	cache      laptop.Cache
	metrics    *metrics.Metrics
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	orderRepo order.Repository,
	laptopRepo laptop.Repository,
	cartRepo cart.Repository,
	txManager shared.TxManager,
	pricing order.Pricing,
	publisher order.EventPublisher,
	cache laptop.Cache,
	m *metrics.Metrics,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo:  orderRepo,
		laptopRepo: laptopRepo,
		cartRepo:   cartRepo,
		txManager:  txManager,
		pricing:    pricing,
		publisher:  publisher,
		cache:      cache,
		metrics:    m,
	}
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	UserID          uint
	Items           []CreateOrderItem
	ShippingAddress order.ShippingAddress
	PaymentMethod   string

	// ClientTotals 前端计算的金额，仅用于比对，不落库
	ClientTotals *order.Totals
}

// CreateOrderItem 下单商品，Price 为用户看到的单价（分）
type CreateOrderItem struct {
	LaptopID uint
	Quantity int
	Price    int64
}

// Execute 执行下单
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (_ *order.Order, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "order.create",
		attribute.Int64("user.id", int64(req.UserID)),
		attribute.Int("order.items", len(req.Items)),
	)
	defer func() { tracing.End(span, err) }()

	start := time.Now()
	defer func() {
		if err != nil {
			uc.metrics.CheckoutFailures.WithLabelValues(failureReason(err)).Inc()
		}
	}()

	// 1. 事务外的参数校验
	if len(req.Items) == 0 {
		return nil, order.ErrEmptyItems
	}
	pm, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if err := req.ShippingAddress.Validate(); err != nil {
		return nil, err
	}
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return nil, order.ErrInvalidQuantity
		}
	}

	items := make([]CreateOrderItem, len(req.Items))
	copy(items, req.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].LaptopID < items[j].LaptopID })

	// 2. 事务内锁行、扣库存、建单、清空购物车
	var created *order.Order
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		lines := make([]order.Item, 0, len(items))
		for _, it := range items {
			l, err := uc.laptopRepo.LockByID(txCtx, it.LaptopID)
			if err != nil {
				return err
			}
			if it.Price != l.Price {
				return apperrors.ErrPriceMismatch.WithMessage("商品 " + l.Name + " 价格已变动，请刷新后重新下单")
			}
			if err := uc.laptopRepo.DecrStock(txCtx, l.ID, it.Quantity); err != nil {
				if errors.Is(err, apperrors.ErrInsufficientStock) {
					return apperrors.ErrInsufficientStock.WithMessage("商品 " + l.Name + " 库存不足")
				}
				return err
			}
			lines = append(lines, order.Item{
				LaptopID: l.ID,
				Name:     l.Name,
				Price:    l.Price,
				Image:    firstImage(l),
				Quantity: it.Quantity,
			})
		}

		totals := uc.pricing.Compute(lines)
		if req.ClientTotals != nil && *req.ClientTotals != totals {
			logger.FromContext(txCtx).Warn("客户端订单金额与服务端计算不一致",
				zap.Uint("user_id", req.UserID),
				zap.Int64("client_total", req.ClientTotals.TotalPrice),
				zap.Int64("server_total", totals.TotalPrice),
			)
		}

		o, err := order.NewOrder(order.GenerateOrderNo(), req.UserID, lines, req.ShippingAddress, pm, totals)
		if err != nil {
			return err
		}
		if err := uc.orderRepo.Create(txCtx, o); err != nil {
			return err
		}
		if err := uc.cartRepo.Clear(txCtx, req.UserID); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 3. 提交后的副作用：指标、缓存失效、事件
	uc.metrics.OrdersCreated.Inc()
	uc.metrics.CheckoutDuration.Observe(time.Since(start).Seconds())
	uc.cache.Invalidate(ctx, itemLaptopIDs(created)...)
	publish(ctx, uc.publisher, order.NewEvent(order.EventCreated, created, ""))

	logger.FromContext(ctx).Info("订单创建成功",
		zap.String("order_no", created.OrderNo),
		zap.Uint("user_id", created.UserID),
		zap.Int64("total_price", created.Totals.TotalPrice),
	)
	return created, nil
}

func firstImage(l *laptop.Laptop) string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}

// failureReason 下单失败原因，作为指标标签
func failureReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, apperrors.ErrPriceMismatch):
		return "price_mismatch"
	case errors.Is(err, apperrors.ErrLaptopNotFound):
		return "not_found"
	case apperrors.HasCode(err, apperrors.ErrCodeInvalidParams), errors.Is(err, apperrors.ErrEmptyOrder):
		return "invalid"
	default:
		return "error"
	}
}
