package laptop

import (
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

// 商品领域错误定义
var (
	ErrInvalidName        = apperrors.ErrInvalidParams.WithMessage("商品名称不能为空且不超过200个字符")
	ErrInvalidBrand       = apperrors.ErrInvalidParams.WithMessage("不支持的品牌")
	ErrInvalidType        = apperrors.ErrInvalidParams.WithMessage("不支持的机型分类")
	ErrInvalidSpecs       = apperrors.ErrInvalidParams.WithMessage("处理器、内存、硬盘、屏幕规格为必填项")
	ErrInvalidDescription = apperrors.ErrInvalidParams.WithMessage("商品描述不能为空")
	ErrInvalidPrice       = apperrors.ErrInvalidParams.WithMessage("价格不能为负数")
	ErrInvalidStock       = apperrors.ErrInvalidParams.WithMessage("库存不能为负数")
	ErrInvalidQuantity    = apperrors.ErrInvalidParams.WithMessage("数量必须大于0")
	ErrImagesRequired     = apperrors.ErrInvalidParams.WithMessage("至少需要一张商品图片")
	ErrFeaturesRequired   = apperrors.ErrInvalidParams.WithMessage("至少需要一条商品卖点")
)
