package dto

import (
	"time"

	"github.com/xiebiao/techhaven/internal/domain/category"
	"github.com/xiebiao/techhaven/internal/domain/laptop"
)

// CreateCategoryRequest 创建分类
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100" example:"Gaming Laptops"`
	Description string `json:"description" binding:"max=1000" example:"游戏本"`
	ParentID    *uint  `json:"parentId" example:"1"`
}

// UpdateCategoryRequest 更新分类，parentId 为0表示改为根分类
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	ParentID    *uint   `json:"parentId"`
}

// CategoryResponse 分类，children 仅在树形或详情中返回
type CategoryResponse struct {
	ID          uint                `json:"id"`
	Name        string              `json:"name"`
	Slug        string              `json:"slug"`
	Description string              `json:"description"`
	ParentID    *uint               `json:"parentId"`
	Children    []*CategoryResponse `json:"children,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// CategoryDetailResponse 分类详情
type CategoryDetailResponse struct {
	*CategoryResponse
	Laptops []*LaptopResponse `json:"laptops"`
}

// NewCategoryResponse 递归转换子分类
func NewCategoryResponse(c *category.Category) *CategoryResponse {
	resp := &CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ParentID:    c.ParentID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	for _, child := range c.Children {
		resp.Children = append(resp.Children, NewCategoryResponse(child))
	}
	return resp
}

// NewCategoryList 批量转换
func NewCategoryList(categories []*category.Category) []*CategoryResponse {
	list := make([]*CategoryResponse, 0, len(categories))
	for _, c := range categories {
		list = append(list, NewCategoryResponse(c))
	}
	return list
}

// NewCategoryDetail 详情：子分类与商品
func NewCategoryDetail(c *category.Category, laptops []*laptop.Laptop) *CategoryDetailResponse {
	items := make([]*LaptopResponse, 0, len(laptops))
	for _, l := range laptops {
		items = append(items, NewLaptopResponse(l))
	}
	return &CategoryDetailResponse{CategoryResponse: NewCategoryResponse(c), Laptops: items}
}

// UploadResponse 上传结果
type UploadResponse struct {
	URL string `json:"url" example:"/uploads/laptops/4f9c....jpg"`
}

// HealthResponse 健康检查
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"up"`
	Redis    string `json:"redis" example:"up"`
	Uptime   string `json:"uptime" example:"1h2m3s"`
}
