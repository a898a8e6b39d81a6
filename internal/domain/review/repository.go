package review

import (
	"context"
)

// Repository 评价仓储接口
type Repository interface {
	// Create 同一用户重复评价同一商品时返回errors.ErrReviewDuplicate
	Create(ctx context.Context, r *Review) error
	FindByID(ctx context.Context, id uint) (*Review, error)
	Update(ctx context.Context, r *Review) error

	// Delete 物理删除
	Delete(ctx context.Context, id uint) error

	ListByLaptop(ctx context.Context, laptopID uint, page, pageSize int) ([]*Review, int64, error)
	ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*Review, int64, error)

	// Summarize 数据库侧聚合 AVG(rating)、COUNT(*)
	Summarize(ctx context.Context, laptopID uint) (Summary, error)
}
