package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/techhaven/internal/domain/review"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{db: db}
}

// withUser 关联用户表带出评价人名称
func withUser(db *gorm.DB) *gorm.DB {
	return db.Model(&ReviewModel{}).
		Select("reviews.*, users.name AS user_name").
		Joins("LEFT JOIN users ON users.id = reviews.user_id")
}

func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := toReviewModel(rv)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrReviewDuplicate
		}
		return apperrors.Wrap(err, "创建评价失败")
	}
	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	rv.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	var model ReviewModel
	if err := withUser(dbFrom(ctx, r.db)).Where("reviews.id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReviewNotFound
		}
		return nil, apperrors.Wrap(err, "查询评价失败")
	}
	return toReviewEntity(&model), nil
}

func (r *reviewRepository) Update(ctx context.Context, rv *review.Review) error {
	result := dbFrom(ctx, r.db).Model(&ReviewModel{ID: rv.ID}).Updates(map[string]interface{}{
		"rating":     rv.Rating,
		"title":      rv.Title,
		"comment":    rv.Comment,
		"updated_at": rv.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新评价失败")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&ReviewModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除评价失败")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) ListByLaptop(ctx context.Context, laptopID uint, page, pageSize int) ([]*review.Review, int64, error) {
	return r.list(ctx, "reviews.laptop_id = ?", laptopID, page, pageSize)
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*review.Review, int64, error) {
	return r.list(ctx, "reviews.user_id = ?", userID, page, pageSize)
}

func (r *reviewRepository) list(ctx context.Context, cond string, arg uint, page, pageSize int) ([]*review.Review, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	var total int64
	if err := dbFrom(ctx, r.db).Model(&ReviewModel{}).Where(cond, arg).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计评价失败")
	}

	var models []ReviewModel
	err := withUser(dbFrom(ctx, r.db)).Where(cond, arg).
		Order("reviews.created_at DESC").Order("reviews.id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询评价列表失败")
	}

	list := make([]*review.Review, 0, len(models))
	for i := range models {
		list = append(list, toReviewEntity(&models[i]))
	}
	return list, total, nil
}

// Summarize 算术平均分与条数，没有评价时为0
func (r *reviewRepository) Summarize(ctx context.Context, laptopID uint) (review.Summary, error) {
	var row struct {
		Average float64
		Count   int
	}
	err := dbFrom(ctx, r.db).Model(&ReviewModel{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("laptop_id = ?", laptopID).
		Scan(&row).Error
	if err != nil {
		return review.Summary{}, apperrors.Wrap(err, "统计评分失败")
	}
	return review.Summary{
		Average: row.Average,
		Count:   row.Count,
	}, nil
}

func toReviewModel(rv *review.Review) *ReviewModel {
	return &ReviewModel{
		ID:                 rv.ID,
		UserID:             rv.UserID,
		LaptopID:           rv.LaptopID,
		Rating:             rv.Rating,
		Title:              rv.Title,
		Comment:            rv.Comment,
		IsVerifiedPurchase: rv.IsVerifiedPurchase,
		CreatedAt:          rv.CreatedAt,
		UpdatedAt:          rv.UpdatedAt,
	}
}

func toReviewEntity(m *ReviewModel) *review.Review {
	return &review.Review{
		ID:                 m.ID,
		UserID:             m.UserID,
		UserName:           m.UserName,
		LaptopID:           m.LaptopID,
		Rating:             m.Rating,
		Title:              m.Title,
		Comment:            m.Comment,
		IsVerifiedPurchase: m.IsVerifiedPurchase,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
