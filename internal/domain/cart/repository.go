package cart

import (
	"context"
)

// Repository 购物车仓储接口
type Repository interface {
	// FindByUserID 用户还没有购物车时返回未持久化的空购物车
	FindByUserID(ctx context.Context, userID uint) (*Cart, error)

	// Save 保存购物车及全部条目（条目整体替换），写回生成的ID
	Save(ctx context.Context, c *Cart) error

	// Clear 清空用户购物车条目
	Clear(ctx context.Context, userID uint) error
}
