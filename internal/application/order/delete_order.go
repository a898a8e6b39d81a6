package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/internal/domain/shared"
	"github.com/xiebiao/techhaven/pkg/logger"
	"github.com/xiebiao/techhaven/pkg/metrics"
)

// DeleteOrderUseCase 管理员物理删除订单
// 订单仍占用库存（pending/processing）时先回补库存再删除
type DeleteOrderUseCase struct {
	orderRepo  order.Repository
	laptopRepo laptop.Repository
	txManager  shared.TxManager
	publisher  order.EventPublisher
	cache      laptop.Cache
	metrics    *metrics.Metrics
}

// NewDeleteOrderUseCase 创建删除订单用例
func NewDeleteOrderUseCase(
	orderRepo order.Repository,
	laptopRepo laptop.Repository,
	txManager shared.TxManager,
	publisher order.EventPublisher,
	cache laptop.Cache,
	m *metrics.Metrics,
) *DeleteOrderUseCase {
	return &DeleteOrderUseCase{
		orderRepo:  orderRepo,
		laptopRepo: laptopRepo,
		txManager:  txManager,
		publisher:  publisher,
		cache:      cache,
		metrics:    m,
	}
}

// Execute 执行删除
func (uc *DeleteOrderUseCase) Execute(ctx context.Context, orderID uint) error {
	var (
		deleted   *order.Order
		restocked bool
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.LockByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if o.HoldsStock() {
			if err := restock(txCtx, uc.laptopRepo, o); err != nil {
				return err
			}
			restocked = true
		}
		deleted = o
		return uc.orderRepo.Delete(txCtx, o.ID)
	})
	if err != nil {
		return err
	}

	if restocked {
		uc.metrics.StockRestoredUnits.Add(float64(totalQuantity(deleted)))
		uc.cache.Invalidate(ctx, itemLaptopIDs(deleted)...)
	}
	publish(ctx, uc.publisher, order.NewEvent(order.EventDeleted, deleted, deleted.Status))
	logger.FromContext(ctx).Info("订单已删除",
		zap.String("order_no", deleted.OrderNo),
		zap.Bool("restocked", restocked),
	)
	return nil
}
