package laptop

import (
	"context"
)

// Repository 商品仓储接口
type Repository interface {
	Create(ctx context.Context, laptop *Laptop) error

	// FindByID 不存在（含已软删除）返回errors.ErrLaptopNotFound
	FindByID(ctx context.Context, id uint) (*Laptop, error)

	// FindByIDs 批量查询，不存在的ID直接忽略
	FindByIDs(ctx context.Context, ids []uint) ([]*Laptop, error)

	Update(ctx context.Context, laptop *Laptop) error

	// Delete 软删除
	Delete(ctx context.Context, id uint) error

	// List 按条件分页查询，返回本页数据与总数
	List(ctx context.Context, q ListQuery) ([]*Laptop, int64, error)

	// ListAll 全量查询（导出使用）
	ListAll(ctx context.Context) ([]*Laptop, error)

	// LockByID 悲观锁查询（SELECT ... FOR UPDATE），需在事务中调用
	LockByID(ctx context.Context, id uint) (*Laptop, error)

	// DecrStock 条件扣减库存：stock >= qty 时扣减并同步可售状态，否则返回ErrInsufficientStock
	DecrStock(ctx context.Context, id uint, qty int) error

	// IncrStock 回补库存并标记为可售
	IncrStock(ctx context.Context, id uint, qty int) error

	// SetStock 直接设置库存（管理员调整）
	SetStock(ctx context.Context, id uint, stock int) error

	// SyncAvailability 持久化修正后的可售状态
	SyncAvailability(ctx context.Context, id uint, available bool) error

	// UpdateRating 写入评价聚合结果
	UpdateRating(ctx context.Context, id uint, average float64, count int) error

	// DetachCategory 分类删除时将其商品移出分类
	DetachCategory(ctx context.Context, categoryID uint) error
}
