package laptop

import (
	"context"
	"net/url"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
)

// ListLaptopsUseCase 商品列表查询
// 过滤、投影、排序、分页规则见 laptop.ParseListQuery；
// 领域服务在返回前修复 is_available 与库存不一致的记录
type ListLaptopsUseCase struct {
	laptopService laptop.Service
}

// NewListLaptopsUseCase 创建列表用例
func NewListLaptopsUseCase(laptopService laptop.Service) *ListLaptopsUseCase {
	return &ListLaptopsUseCase{laptopService: laptopService}
}

// ListResult 列表结果，Query 为解析后的查询条件（页码、字段投影）
type ListResult struct {
	Laptops []*laptop.Laptop
	Total   int64
	Query   laptop.ListQuery
}

// Execute 解析查询字符串并执行查询
func (uc *ListLaptopsUseCase) Execute(ctx context.Context, values url.Values) (*ListResult, error) {
	q, err := laptop.ParseListQuery(values)
	if err != nil {
		return nil, err
	}
	laptops, total, err := uc.laptopService.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &ListResult{Laptops: laptops, Total: total, Query: q}, nil
}

// GetLaptopUseCase 商品详情，优先读缓存
type GetLaptopUseCase struct {
	laptopService laptop.Service
	cache         laptop.Cache
}

// NewGetLaptopUseCase 创建详情用例
func NewGetLaptopUseCase(laptopService laptop.Service, cache laptop.Cache) *GetLaptopUseCase {
	return &GetLaptopUseCase{laptopService: laptopService, cache: cache}
}

// Execute 缓存未命中时查库并回填
func (uc *GetLaptopUseCase) Execute(ctx context.Context, id uint) (*laptop.Laptop, error) {
	if l, ok := uc.cache.Get(ctx, id); ok {
		return l, nil
	}
	l, err := uc.laptopService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.cache.Set(ctx, l)
	return l, nil
}
