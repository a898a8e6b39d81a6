package order

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/internal/domain/shared"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
	"github.com/xiebiao/techhaven/pkg/logger"
	"github.com/xiebiao/techhaven/pkg/metrics"
)

// Requester 发起操作的用户
type Requester struct {
	UserID  uint
	IsAdmin bool
}

// CanAccess 订单所有者或管理员
func (r Requester) CanAccess(o *order.Order) bool {
	return r.IsAdmin || o.IsOwnedBy(r.UserID)
}

// lifecycle 订单状态变更的公共流程，由状态、取消、支付、物流用例共用
type lifecycle struct {
	orderRepo  order.Repository
	laptopRepo laptop.Repository
	txManager  shared.TxManager
	publisher  order.EventPublisher
	cache      laptop.Cache
	metrics    *metrics.Metrics
}

type mutation func(o *order.Order, now time.Time) (order.Effects, error)

// apply 在事务内锁定订单、校验权限、执行变更并落实副作用
// 同状态写入为空操作：不落库、不回补库存、不发事件
func (lc *lifecycle) apply(ctx context.Context, orderID uint, requester *Requester, mutate mutation) (*order.Order, error) {
	var (
		target   *order.Order
		previous order.Status
		effects  order.Effects
	)

	err := lc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := lc.orderRepo.LockByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if requester != nil && !requester.CanAccess(o) {
			return apperrors.ErrNotOwner
		}

		previous = o.Status
		effects, err = mutate(o, time.Now())
		if err != nil {
			return err
		}
		target = o
		if effects.NoOp {
			return nil
		}

		if effects.Restock {
			if err := restock(txCtx, lc.laptopRepo, o); err != nil {
				return err
			}
		}
		return lc.orderRepo.Update(txCtx, o)
	})
	if err != nil {
		return nil, err
	}
	if effects.NoOp {
		return target, nil
	}

	evtType := order.EventUpdated
	if previous != target.Status {
		evtType = order.EventStatusChanged
		lc.metrics.ObserveTransition(string(previous), string(target.Status))
		logger.FromContext(ctx).Info("订单状态变更",
			zap.String("order_no", target.OrderNo),
			zap.String("from", string(previous)),
			zap.String("to", string(target.Status)),
		)
	}
	if effects.Restock {
		lc.metrics.StockRestoredUnits.Add(float64(totalQuantity(target)))
		lc.cache.Invalidate(ctx, itemLaptopIDs(target)...)
	}
	publish(ctx, lc.publisher, order.NewEvent(evtType, target, previous))
	return target, nil
}

// restock 回补订单占用的库存
// 商品已被软删除时同样回补，避免恢复上架后库存偏少
func restock(ctx context.Context, repo laptop.Repository, o *order.Order) error {
	for _, it := range o.Items {
		if err := repo.IncrStock(ctx, it.LaptopID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func totalQuantity(o *order.Order) int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

func itemLaptopIDs(o *order.Order) []uint {
	ids := make([]uint, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.LaptopID)
	}
	return ids
}

// publish 事件发布失败只记录日志，订单已提交不回滚
func publish(ctx context.Context, p order.EventPublisher, evt order.Event) {
	if err := p.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn("发布订单事件失败",
			zap.String("type", string(evt.Type)),
			zap.String("order_no", evt.OrderNo),
			zap.Error(err),
		)
	}
}
