package laptop

import (
	"context"
)

// Cache 商品详情缓存
// 缓存故障不影响主流程，因此方法都不返回错误
type Cache interface {
	Get(ctx context.Context, id uint) (*Laptop, bool)
	Set(ctx context.Context, l *Laptop)
	Invalidate(ctx context.Context, ids ...uint)
}

// NopCache 未启用缓存时使用
type NopCache struct{}

func (NopCache) Get(context.Context, uint) (*Laptop, bool) { return nil, false }
func (NopCache) Set(context.Context, *Laptop)              {}
func (NopCache) Invalidate(context.Context, ...uint)       {}
