package order

import (
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

// 订单领域错误定义
var (
	ErrInvalidStatus       = apperrors.ErrInvalidOrderStatus
	ErrInvalidTransition   = apperrors.ErrInvalidOrderState
	ErrEmptyItems          = apperrors.ErrEmptyOrder
	ErrInvalidQuantity     = apperrors.ErrInvalidParams.WithMessage("购买数量必须大于0")
	ErrInvalidPrice        = apperrors.ErrInvalidParams.WithMessage("商品价格不能为负数")
	ErrInvalidAddress      = apperrors.ErrInvalidParams.WithMessage("收货地址信息不完整")
	ErrInvalidPayment      = apperrors.ErrInvalidParams.WithMessage("不支持的支付方式")
	ErrInvalidTracking     = apperrors.ErrInvalidParams.WithMessage("物流单号不能为空")
	ErrAlreadyPaid         = apperrors.ErrOrderAlreadyPaid
	ErrCancelledNotPayable = apperrors.ErrInvalidOrderState.WithMessage("已取消的订单不能支付")
)
