package shared

import (
	"context"
)

// TxManager 事务管理器接口
// fn 内部使用传入的ctx访问仓储，即可复用同一事务；fn返回错误时整体回滚
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
