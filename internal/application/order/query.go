package order

import (
	"context"

	"github.com/xiebiao/techhaven/internal/domain/order"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

// GetOrderUseCase 查询订单详情
type GetOrderUseCase struct {
	orderRepo order.Repository
}

// NewGetOrderUseCase 创建订单详情用例
func NewGetOrderUseCase(orderRepo order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

// Execute 非所有者且非管理员返回ErrNotOwner
func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID uint, requester Requester) (*order.Order, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !requester.CanAccess(o) {
		return nil, apperrors.ErrNotOwner
	}
	return o, nil
}

// ListOrdersUseCase 订单列表
type ListOrdersUseCase struct {
	orderRepo order.Repository
}

// NewListOrdersUseCase 创建订单列表用例
func NewListOrdersUseCase(orderRepo order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

// ListOrdersRequest 列表条件，Status 为空表示不过滤
type ListOrdersRequest struct {
	Status   string
	Page     int
	PageSize int
}

// ListMine 当前用户的订单，按下单时间倒序
func (uc *ListOrdersUseCase) ListMine(ctx context.Context, userID uint, req ListOrdersRequest) ([]*order.Order, int64, error) {
	filter, err := buildFilter(req)
	if err != nil {
		return nil, 0, err
	}
	filter.UserID = &userID
	return uc.orderRepo.List(ctx, filter)
}

// ListAll 全部订单（管理员）
func (uc *ListOrdersUseCase) ListAll(ctx context.Context, req ListOrdersRequest) ([]*order.Order, int64, error) {
	filter, err := buildFilter(req)
	if err != nil {
		return nil, 0, err
	}
	return uc.orderRepo.List(ctx, filter)
}

func buildFilter(req ListOrdersRequest) (order.ListFilter, error) {
	filter := order.ListFilter{Page: req.Page, PageSize: req.PageSize}
	if req.Status != "" {
		st, err := order.ParseStatus(req.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &st
	}
	return filter, nil
}
