package dto

import (
	"time"

	"github.com/xiebiao/techhaven/internal/domain/review"
)

// CreateReviewRequest 发表评价
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5" example:"5"`
	Title   string `json:"title" binding:"required,max=100" example:"非常满意"`
	Comment string `json:"comment" binding:"required,max=2000" example:"屏幕细腻，续航出色"`
}

// UpdateReviewRequest 修改评价，缺省字段保持不变
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5" example:"4"`
	Title   *string `json:"title" binding:"omitempty,max=100"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}

// ListReviewsRequest 评价分页
type ListReviewsRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1" example:"10"`
}

// ReviewResponse 评价
type ReviewResponse struct {
	ID                 uint      `json:"id"`
	UserID             uint      `json:"userId"`
	UserName           string    `json:"userName"`
	LaptopID           uint      `json:"laptopId"`
	Rating             int       `json:"rating"`
	Title              string    `json:"title"`
	Comment            string    `json:"comment"`
	IsVerifiedPurchase bool      `json:"isVerifiedPurchase"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// NewReviewResponse 领域实体 → 响应
func NewReviewResponse(r *review.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:                 r.ID,
		UserID:             r.UserID,
		UserName:           r.UserName,
		LaptopID:           r.LaptopID,
		Rating:             r.Rating,
		Title:              r.Title,
		Comment:            r.Comment,
		IsVerifiedPurchase: r.IsVerifiedPurchase,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// NewReviewList 批量转换
func NewReviewList(reviews []*review.Review) []*ReviewResponse {
	list := make([]*ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		list = append(list, NewReviewResponse(r))
	}
	return list
}
