package order

import (
	"context"
)

// ListFilter 订单列表过滤条件，UserID 为 nil 表示全部用户
type ListFilter struct {
	UserID   *uint
	Status   *Status
	Page     int
	PageSize int
}

// Repository 订单仓储接口
// 订单与订单项在同一事务中写入，事务通过context传递
type Repository interface {
	Create(ctx context.Context, order *Order) error

	// FindByID 包含订单项，不存在返回errors.ErrOrderNotFound
	FindByID(ctx context.Context, id uint) (*Order, error)

	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// LockByID 悲观锁查询，需在事务中调用
	LockByID(ctx context.Context, id uint) (*Order, error)

	// Update 更新订单头（状态、支付、物流字段），不修改订单项
	Update(ctx context.Context, order *Order) error

	// Delete 物理删除订单及订单项
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filter ListFilter) ([]*Order, int64, error)

	// HasDeliveredItem 用户是否有已签收且包含该商品的订单
	HasDeliveredItem(ctx context.Context, userID, laptopID uint) (bool, error)
}
