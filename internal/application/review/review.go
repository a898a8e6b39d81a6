package review

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/internal/domain/review"
	"github.com/xiebiao/techhaven/internal/domain/shared"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
	"github.com/xiebiao/techhaven/pkg/logger"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// CreateReviewRequest 发表评价请求
type CreateReviewRequest struct {
	UserID   uint
	LaptopID uint
	Rating   int
	Title    string
	Comment  string
}

// UpdateReviewRequest 修改评价请求，nil 字段保持不变
type UpdateReviewRequest struct {
	Rating  *int
	Title   *string
	Comment *string
}

// Author 评价操作者
type Author struct {
	UserID  uint
	IsAdmin bool
}

// ReviewUseCase 评价用例
// 每次写评价都在同一事务内重新聚合商品的平均分与评价数
type ReviewUseCase struct {
	reviewRepo review.Repository
	laptopRepo laptop.Repository
	orderRepo  order.Repository
	txManager  shared.TxManager
	cache      laptop.Cache
}

// NewReviewUseCase 创建评价用例
func NewReviewUseCase(
	reviewRepo review.Repository,
	laptopRepo laptop.Repository,
	orderRepo order.Repository,
	txManager shared.TxManager,
	cache laptop.Cache,
) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo: reviewRepo,
		laptopRepo: laptopRepo,
		orderRepo:  orderRepo,
		txManager:  txManager,
		cache:      cache,
	}
}

// Create 发表评价；签收过该商品的用户标记为已购
func (uc *ReviewUseCase) Create(ctx context.Context, req CreateReviewRequest) (*review.Review, error) {
	r, err := review.NewReview(req.UserID, req.LaptopID, req.Rating, req.Title, req.Comment)
	if err != nil {
		return nil, err
	}

	err = uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		if _, err := uc.laptopRepo.FindByID(ctx, req.LaptopID); err != nil {
			return err
		}
		verified, err := uc.orderRepo.HasDeliveredItem(ctx, req.UserID, req.LaptopID)
		if err != nil {
			return err
		}
		r.IsVerifiedPurchase = verified
		if err := uc.reviewRepo.Create(ctx, r); err != nil {
			return err
		}
		return uc.refreshRating(ctx, req.LaptopID)
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, req.LaptopID)

	created, err := uc.reviewRepo.FindByID(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update 只能修改自己的评价
func (uc *ReviewUseCase) Update(ctx context.Context, id uint, author Author, req UpdateReviewRequest) (*review.Review, error) {
	var updated *review.Review
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		r, err := uc.reviewRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !r.IsOwnedBy(author.UserID) {
			return apperrors.ErrNotOwner
		}
		if err := r.Edit(req.Rating, req.Title, req.Comment); err != nil {
			return err
		}
		if err := uc.reviewRepo.Update(ctx, r); err != nil {
			return err
		}
		updated = r
		return uc.refreshRating(ctx, r.LaptopID)
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, updated.LaptopID)
	return updated, nil
}

// Delete 作者或管理员可删除
func (uc *ReviewUseCase) Delete(ctx context.Context, id uint, author Author) error {
	var laptopID uint
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		r, err := uc.reviewRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !author.IsAdmin && !r.IsOwnedBy(author.UserID) {
			return apperrors.ErrNotOwner
		}
		if err := uc.reviewRepo.Delete(ctx, id); err != nil {
			return err
		}
		laptopID = r.LaptopID
		return uc.refreshRating(ctx, laptopID)
	})
	if err != nil {
		return err
	}
	uc.cache.Invalidate(ctx, laptopID)
	logger.FromContext(ctx).Info("评价已删除",
		zap.Uint("review_id", id),
		zap.Uint("operator", author.UserID),
	)
	return nil
}

// Page 评价分页结果
type Page struct {
	Reviews  []*review.Review
	Total    int64
	Page     int
	PageSize int
}

// ListByLaptop 商品的评价，按时间倒序
func (uc *ReviewUseCase) ListByLaptop(ctx context.Context, laptopID uint, page, pageSize int) (*Page, error) {
	if _, err := uc.laptopRepo.FindByID(ctx, laptopID); err != nil {
		return nil, err
	}
	page, pageSize = normalizePage(page, pageSize)
	list, total, err := uc.reviewRepo.ListByLaptop(ctx, laptopID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &Page{Reviews: list, Total: total, Page: page, PageSize: pageSize}, nil
}

// ListMine 当前用户发表的评价
func (uc *ReviewUseCase) ListMine(ctx context.Context, userID uint, page, pageSize int) (*Page, error) {
	page, pageSize = normalizePage(page, pageSize)
	list, total, err := uc.reviewRepo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &Page{Reviews: list, Total: total, Page: page, PageSize: pageSize}, nil
}

func (uc *ReviewUseCase) refreshRating(ctx context.Context, laptopID uint) error {
	s, err := uc.reviewRepo.Summarize(ctx, laptopID)
	if err != nil {
		return err
	}
	return uc.laptopRepo.UpdateRating(ctx, laptopID, s.Average, s.Count)
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
