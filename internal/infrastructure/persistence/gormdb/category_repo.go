package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/techhaven/internal/domain/category"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) category.Repository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *category.Category) error {
	model := toCategoryModel(c)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrCategoryDuplicate
		}
		return apperrors.Wrap(err, "创建分类失败")
	}
	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*category.Category, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*category.Category, error) {
	return r.findOne(ctx, "slug = ?", slug)
}

func (r *categoryRepository) findOne(ctx context.Context, query string, arg interface{}) (*category.Category, error) {
	var model CategoryModel
	if err := dbFrom(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(err, "查询分类失败")
	}
	return toCategoryEntity(&model), nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*category.Category, error) {
	var models []CategoryModel
	if err := dbFrom(ctx, r.db).Order("name ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询分类列表失败")
	}
	list := make([]*category.Category, 0, len(models))
	for i := range models {
		list = append(list, toCategoryEntity(&models[i]))
	}
	return list, nil
}

func (r *categoryRepository) Update(ctx context.Context, c *category.Category) error {
	result := dbFrom(ctx, r.db).Model(&CategoryModel{ID: c.ID}).Updates(map[string]interface{}{
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
		"parent_id":   c.ParentID,
		"updated_at":  c.UpdatedAt,
	})
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return apperrors.ErrCategoryDuplicate
		}
		return apperrors.Wrap(result.Error, "更新分类失败")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&CategoryModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除分类失败")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) CountChildren(ctx context.Context, id uint) (int64, error) {
	var n int64
	if err := dbFrom(ctx, r.db).Model(&CategoryModel{}).Where("parent_id = ?", id).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计子分类失败")
	}
	return n, nil
}

func toCategoryModel(c *category.Category) *CategoryModel {
	return &CategoryModel{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ParentID:    c.ParentID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toCategoryEntity(m *CategoryModel) *category.Category {
	return &category.Category{
		ID:          m.ID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		ParentID:    m.ParentID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
